package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

// maxFamilyWalk bounds how many rotation links are followed when a whole
// token family is revoked.
const maxFamilyWalk = 1000

// AuthOptions tunes the refresh-token protocol.
type AuthOptions struct {
	RefreshTTL time.Duration
	// RevokeFamilyOnReuse revokes every token of a rotation chain when a
	// revoked token is presented again. Off by default: only the presented
	// token is rejected.
	RevokeFamilyOnReuse bool
	Now                 func() time.Time
}

// AuthService implements registration, login and refresh-token rotation.
type AuthService struct {
	users      ports.UserRepository
	tokens     ports.TokenRepository
	companies  ports.CompanyRepository
	industries ports.IndustryRepository
	issuer     *TokenIssuer
	events     ports.AuthEventSink
	log        zerolog.Logger

	refreshTTL          time.Duration
	revokeFamilyOnReuse bool
	now                 func() time.Time
}

type nopEventSink struct{}

func (nopEventSink) Enqueue(domain.AuthEvent) {}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenRepository,
	companies ports.CompanyRepository,
	industries ports.IndustryRepository,
	issuer *TokenIssuer,
	events ports.AuthEventSink,
	log zerolog.Logger,
	opts AuthOptions,
) *AuthService {
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = DefaultRefreshTokenTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if events == nil {
		events = nopEventSink{}
	}
	return &AuthService{
		users:               users,
		tokens:              tokens,
		companies:           companies,
		industries:          industries,
		issuer:              issuer,
		events:              events,
		log:                 log,
		refreshTTL:          opts.RefreshTTL,
		revokeFamilyOnReuse: opts.RevokeFamilyOnReuse,
		now:                 opts.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.TokenPair, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = username
	}

	role, companyID := domain.RoleMember, ""
	if strings.TrimSpace(in.CompanyName) != "" {
		company, err := s.createCompany(ctx, in, now)
		if err != nil {
			return nil, err
		}
		role, companyID = domain.RoleOwner, company.ID
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CompanyID:    companyID,
		IsActive:     true,
		LastLogin:    &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, user, in.IP)
	if err != nil {
		return nil, err
	}
	s.emit(domain.AuthEventRegister, user.ID, in.IP, "")
	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return pair, nil
}

// createCompany opens a new tenant for a self-registering owner. The id is
// generated here; existing tenants are never joined through registration.
func (s *AuthService) createCompany(ctx context.Context, in ports.RegisterInput, now time.Time) (*domain.Company, error) {
	if in.IndustryID != "" {
		if _, err := s.industries.FindByID(ctx, in.IndustryID); err != nil {
			return nil, err
		}
	}
	company := &domain.Company{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(in.CompanyName),
		IndustryID: in.IndustryID,
		IsActive:   true,
		CreatedAt:  now,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("register: create company: %w", err)
	}
	return company, nil
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.TokenPair, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}
	user.LastLogin = &now

	pair, err := s.issuePair(ctx, user, in.IP)
	if err != nil {
		return nil, err
	}
	s.emit(domain.AuthEventLogin, user.ID, in.IP, "")
	return pair, nil
}

// IssueRefreshToken persists a new refresh token for user and returns the
// raw token value.
func (s *AuthService) IssueRefreshToken(ctx context.Context, user *domain.User, ip string) (string, error) {
	value, err := newRefreshTokenValue()
	if err != nil {
		return "", err
	}
	if err := s.storeRefreshToken(ctx, user.ID, value, ip, s.now().UTC()); err != nil {
		return "", err
	}
	return value, nil
}

func (s *AuthService) storeRefreshToken(ctx context.Context, userID, value, ip string, now time.Time) error {
	rec := &domain.RefreshToken{
		ID:          uuid.NewString(),
		Token:       value,
		UserID:      userID,
		Created:     now,
		Expires:     now.Add(s.refreshTTL),
		CreatedByIP: ip,
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Refresh redeems oldToken for a new access and refresh token pair. The old
// token is revoked and linked to its successor. A token can be redeemed at
// most once.
func (s *AuthService) Refresh(ctx context.Context, oldToken, ip string) (*domain.TokenPair, error) {
	if oldToken == "" {
		return nil, domain.ErrRefreshTokenNotFound
	}

	rec, err := s.tokens.FindByToken(ctx, oldToken)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("refresh: find token: %w", err)
	}

	now := s.now().UTC()
	if rec.IsExpired(now) {
		if !rec.IsRevoked {
			if _, err := s.tokens.Revoke(ctx, oldToken, ip, "", now); err != nil && !errors.Is(err, domain.ErrRefreshTokenRevoked) {
				s.log.Warn().Err(err).Str("user_id", rec.UserID).Msg("failed to revoke expired refresh token")
			}
		}
		return nil, domain.ErrRefreshTokenExpired
	}
	if rec.IsRevoked {
		s.onReuse(ctx, rec, ip, now)
		return nil, domain.ErrRefreshTokenRevoked
	}

	user, err := s.users.FindByID(ctx, rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	next, err := newRefreshTokenValue()
	if err != nil {
		return nil, err
	}

	// Conditional revoke: only one concurrent redemption can win.
	if _, err := s.tokens.Revoke(ctx, oldToken, ip, next, now); err != nil {
		if errors.Is(err, domain.ErrRefreshTokenRevoked) {
			s.log.Debug().Str("user_id", rec.UserID).Msg("refresh lost rotation race")
			return nil, err
		}
		return nil, fmt.Errorf("refresh: revoke token: %w", err)
	}
	if err := s.storeRefreshToken(ctx, user.ID, next, ip, now); err != nil {
		s.log.Error().Err(err).
			Str("token_id", rec.ID).
			Str("user_id", user.ID).
			Msg("refresh token revoked but successor not stored, rotation chain broken")
		return nil, fmt.Errorf("refresh: %w", err)
	}

	access, exp, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	s.emit(domain.AuthEventRefresh, user.ID, ip, "")
	return &domain.TokenPair{
		AccessToken:     access,
		AccessExpiresAt: exp,
		RefreshToken:    next,
		User:            user,
	}, nil
}

// onReuse handles a revoked token being presented again, which indicates
// the token was copied.
func (s *AuthService) onReuse(ctx context.Context, rec *domain.RefreshToken, ip string, now time.Time) {
	s.log.Warn().
		Str("user_id", rec.UserID).
		Str("token_id", rec.ID).
		Str("ip", ip).
		Bool("revoke_family", s.revokeFamilyOnReuse).
		Msg("revoked refresh token presented")
	s.emit(domain.AuthEventReuseDetected, rec.UserID, ip, rec.ID)

	if s.revokeFamilyOnReuse {
		n := s.revokeFamily(ctx, rec, ip, now)
		s.log.Warn().Str("user_id", rec.UserID).Int("revoked", n).Msg("refresh token family revoked")
	}
}

// revokeFamily walks the rotation chain in both directions from rec and
// revokes every token that is still active.
func (s *AuthService) revokeFamily(ctx context.Context, rec *domain.RefreshToken, ip string, now time.Time) int {
	revoked := 0

	next := rec.ReplacedByToken
	for i := 0; next != "" && i < maxFamilyWalk; i++ {
		cur, err := s.tokens.FindByToken(ctx, next)
		if err != nil {
			break
		}
		if !cur.IsRevoked {
			if _, err := s.tokens.Revoke(ctx, cur.Token, ip, "", now); err == nil {
				revoked++
			}
		}
		next = cur.ReplacedByToken
	}

	prev := rec.Token
	for i := 0; i < maxFamilyWalk; i++ {
		cur, err := s.tokens.FindByReplacement(ctx, prev)
		if err != nil {
			break
		}
		if !cur.IsRevoked {
			if _, err := s.tokens.Revoke(ctx, cur.Token, ip, "", now); err == nil {
				revoked++
			}
		}
		prev = cur.Token
	}
	return revoked
}

// RevokeAllForUser revokes every active refresh token of userID.
func (s *AuthService) RevokeAllForUser(ctx context.Context, userID, ip string) (int64, error) {
	n, err := s.tokens.RevokeAllForUser(ctx, userID, ip, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("revoke all: %w", err)
	}
	return n, nil
}

// RevokeRefreshToken revokes a single token without issuing a successor.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, token, ip string) (*domain.RefreshToken, error) {
	if token == "" {
		return nil, domain.ErrRefreshTokenNotFound
	}
	return s.tokens.Revoke(ctx, token, ip, "", s.now().UTC())
}

// Logout revokes server-side session state. With a known user every token
// of that user is revoked, otherwise only refreshToken.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken, ip string) error {
	if userID == "" && refreshToken != "" {
		rec, err := s.RevokeRefreshToken(ctx, refreshToken, ip)
		switch {
		case err == nil:
			userID = rec.UserID
		case errors.Is(err, domain.ErrRefreshTokenRevoked), errors.Is(err, domain.ErrRefreshTokenNotFound):
		default:
			return fmt.Errorf("logout: %w", err)
		}
	} else if userID != "" {
		if _, err := s.RevokeAllForUser(ctx, userID, ip); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}

	if userID != "" {
		s.emit(domain.AuthEventLogout, userID, ip, "")
	}
	return nil
}

// Authenticate verifies accessToken and loads its active user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.issuer.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}
	return user, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *domain.User, ip string) (*domain.TokenPair, error) {
	access, exp, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(ctx, user, ip)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:     access,
		AccessExpiresAt: exp,
		RefreshToken:    refresh,
		User:            user,
	}, nil
}

func (s *AuthService) emit(t domain.AuthEventType, userID, ip, detail string) {
	s.events.Enqueue(domain.AuthEvent{
		Type:      t,
		UserID:    userID,
		IP:        ip,
		Detail:    detail,
		Timestamp: s.now().UTC(),
	})
}
