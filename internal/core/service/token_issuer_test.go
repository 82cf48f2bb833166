package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	issuer := NewTokenIssuer("secret", 15*time.Minute, clock.Now)
	user := &domain.User{ID: "u1", Role: domain.RoleOwner, Email: "a@b.com", Name: "Ann", CompanyID: "c1"}

	token, exp, err := issuer.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if want := clock.Now().Add(15 * time.Minute); !exp.Equal(want) {
		t.Fatalf("expiry = %v, want %v", exp, want)
	}

	claims, err := issuer.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != domain.RoleOwner || claims.Email != "a@b.com" ||
		claims.Name != "Ann" || claims.CompanyID != "c1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Fatalf("claims expiry = %v, want %v", claims.ExpiresAt, exp)
	}
}

func TestTokenIssuer_Expiry(t *testing.T) {
	clock := newFakeClock()
	issuer := NewTokenIssuer("secret", 15*time.Minute, clock.Now)
	token, _, err := issuer.IssueAccessToken(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	clock.Advance(14*time.Minute + 59*time.Second)
	if _, err := issuer.VerifyAccessToken(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	clock.Advance(2 * time.Second)
	if _, err := issuer.VerifyAccessToken(token); !errors.Is(err, domain.ErrAccessTokenExpired) {
		t.Fatalf("expected ErrAccessTokenExpired, got %v", err)
	}
}

func TestTokenIssuer_RejectsForeignTokens(t *testing.T) {
	clock := newFakeClock()
	issuer := NewTokenIssuer("secret", time.Minute, clock.Now)
	other := NewTokenIssuer("other-secret", time.Minute, clock.Now)

	foreign, _, err := other.IssueAccessToken(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"}).
		SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	valid, _, _ := issuer.IssueAccessToken(&domain.User{ID: "u1"})
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	cases := map[string]string{
		"wrong secret":   foreign,
		"alg none":       none,
		"missing expiry": noExp,
		"tampered":       tampered,
		"garbage":        "not-a-token",
		"empty":          "",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := issuer.VerifyAccessToken(tok); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewRefreshTokenValue(t *testing.T) {
	a, err := newRefreshTokenValue()
	if err != nil {
		t.Fatalf("newRefreshTokenValue: %v", err)
	}
	b, _ := newRefreshTokenValue()
	if len(a) != refreshTokenBytes*2 {
		t.Fatalf("token length = %d, want %d", len(a), refreshTokenBytes*2)
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
}
