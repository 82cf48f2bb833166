package memory

import (
	"context"
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// TokenRepository keys refresh tokens by their value. Revoke runs under
// the store's write lock, which makes it a compare-and-set.
type TokenRepository struct{ s *Store }

func copyToken(t *domain.RefreshToken) *domain.RefreshToken {
	c := *t
	if t.RevokedAt != nil {
		at := *t.RevokedAt
		c.RevokedAt = &at
	}
	return &c
}

func (r *TokenRepository) Create(_ context.Context, t *domain.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[t.Token] = copyToken(t)
	return nil
}

func (r *TokenRepository) FindByToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, domain.ErrRefreshTokenNotFound
	}
	return copyToken(t), nil
}

func (r *TokenRepository) Revoke(_ context.Context, token, ip, replacedBy string, at time.Time) (*domain.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, domain.ErrRefreshTokenNotFound
	}
	if t.IsRevoked {
		return nil, domain.ErrRefreshTokenRevoked
	}
	t.IsRevoked = true
	t.RevokedAt = &at
	t.RevokedByIP = ip
	if replacedBy != "" {
		t.ReplacedByToken = replacedBy
	}
	return copyToken(t), nil
}

func (r *TokenRepository) RevokeAllForUser(_ context.Context, userID, ip string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.tokens {
		if t.UserID == userID && !t.IsRevoked && t.Expires.After(at) {
			t.IsRevoked = true
			t.RevokedAt = &at
			t.RevokedByIP = ip
			n++
		}
	}
	return n, nil
}

func (r *TokenRepository) FindByReplacement(_ context.Context, token string) (*domain.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.tokens {
		if t.ReplacedByToken == token {
			return copyToken(t), nil
		}
	}
	return nil, domain.ErrRefreshTokenNotFound
}
