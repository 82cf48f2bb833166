package ports

import (
	"context"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// RegisterInput carries the fields needed to create an account. A
// non-empty CompanyName opens a new company owned by the registrant, in
// IndustryID when set. Registration never joins an existing company.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Name        string
	CompanyName string
	IndustryID  string
	IP          string
}

// LoginInput carries credentials. Identifier is an email or a username.
type LoginInput struct {
	Identifier string
	Password   string
	IP         string
}

// AuthService implements login, registration and the refresh-token
// rotation protocol.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.TokenPair, error)
	Login(ctx context.Context, in LoginInput) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken, ip string) (*domain.TokenPair, error)
	Logout(ctx context.Context, userID, refreshToken, ip string) error
	RevokeAllForUser(ctx context.Context, userID, ip string) (int64, error)
	RevokeRefreshToken(ctx context.Context, token, ip string) (*domain.RefreshToken, error)
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// TokenVerifier validates access tokens. Used by the auth middleware.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*domain.AccessClaims, error)
}

// AuthEventSink receives audit events. Enqueue must not block the caller
// for long.
type AuthEventSink interface {
	Enqueue(event domain.AuthEvent)
}

// AuthEventPublisher delivers audit events to an external broker.
type AuthEventPublisher interface {
	Publish(ctx context.Context, event domain.AuthEvent) error
}
