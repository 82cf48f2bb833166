package ports

import (
	"context"
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// TokenRepository persists refresh-token records. Records are never deleted.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)

	// Revoke marks token revoked only if it is still unrevoked and returns
	// the record after the update. replacedBy may be empty.
	// Returns domain.ErrRefreshTokenRevoked when the token was already
	// revoked, so two concurrent redemptions cannot both succeed.
	Revoke(ctx context.Context, token, ip, replacedBy string, at time.Time) (*domain.RefreshToken, error)

	// RevokeAllForUser revokes every active (unrevoked, unexpired) token of
	// userID and returns how many records changed. Expired tokens keep their
	// original state.
	RevokeAllForUser(ctx context.Context, userID, ip string, at time.Time) (int64, error)

	// FindByReplacement returns the token whose ReplacedByToken is token.
	FindByReplacement(ctx context.Context, token string) (*domain.RefreshToken, error)
}
