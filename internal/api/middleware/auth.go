package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

// Context keys populated from verified access claims.
const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxEmail     = "email"
	CtxCompanyID = "company_id"
)

// Auth validates the bearer access token and injects its claims into the
// request context. Requests without a valid token are rejected with 401.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := BearerToken(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				if errors.Is(err, domain.ErrAccessTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "access token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			setClaims(c, claims)
			return next(c)
		}
	}
}

// OptionalAuth injects claims when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, err := BearerToken(c.Request()); err == nil {
				if claims, err := verifier.VerifyAccessToken(token); err == nil {
					setClaims(c, claims)
				}
			}
			return next(c)
		}
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func setClaims(c echo.Context, claims *domain.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxCompanyID, claims.CompanyID)
}
