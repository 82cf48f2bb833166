package session

import (
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// Status is the position of a session in its lifecycle.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticating
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// SessionState is a snapshot of the client's session. Values returned by
// Manager.State are copies.
type SessionState struct {
	Status           Status
	User             *domain.User
	AccessToken      string
	ExpiresAt        time.Time
	RefreshToken     string
	LastLoginSuccess time.Time
}

// needsRefresh reports whether the access token is absent or expires
// within threshold of now.
func (s SessionState) needsRefresh(now time.Time, threshold time.Duration) bool {
	if s.AccessToken == "" || s.ExpiresAt.IsZero() {
		return true
	}
	return !now.Add(threshold).Before(s.ExpiresAt)
}
