package domain

import "time"

// RefreshToken is one issued refresh credential. Records are revoked or
// replaced, never deleted, so the rotation chain stays auditable.
type RefreshToken struct {
	ID              string     `json:"id"`
	Token           string     `json:"-"`
	UserID          string     `json:"userId"`
	Expires         time.Time  `json:"expires"`
	Created         time.Time  `json:"created"`
	CreatedByIP     string     `json:"createdByIp"`
	IsRevoked       bool       `json:"isRevoked"`
	RevokedAt       *time.Time `json:"revokedAt,omitempty"`
	RevokedByIP     string     `json:"revokedByIp,omitempty"`
	ReplacedByToken string     `json:"replacedByToken,omitempty"`
}

// IsExpired reports whether the token's expiry has passed at now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.Expires)
}

// IsActive reports whether the token can still authorize a refresh.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked && !t.IsExpired(now)
}

// AccessClaims is the verified payload of an access token.
type AccessClaims struct {
	Subject   string
	Role      string
	Email     string
	Name      string
	CompanyID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is the result of login, registration or a refresh.
type TokenPair struct {
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
	User            *User
}

// AuthEventType names a security-relevant session transition.
type AuthEventType string

const (
	AuthEventLogin         AuthEventType = "login"
	AuthEventRegister      AuthEventType = "register"
	AuthEventRefresh       AuthEventType = "refresh"
	AuthEventLogout        AuthEventType = "logout"
	AuthEventReuseDetected AuthEventType = "token.reuse_detected"
)

// AuthEvent is emitted by the auth service for auditing.
type AuthEvent struct {
	Type      AuthEventType `json:"type"`
	UserID    string        `json:"userId"`
	IP        string        `json:"ip,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
