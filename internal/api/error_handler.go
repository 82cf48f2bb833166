package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Auth
// routes additionally carry success=false.
type errorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		resp := errorResponse{Error: msg}
		if strings.HasPrefix(c.Request().URL.Path, "/api/auth/") {
			f := false
			resp.Success = &f
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	// auth
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, domain.ErrAccessTokenExpired):
		return http.StatusUnauthorized, "access token expired"
	case errors.Is(err, domain.ErrRefreshTokenNotFound):
		return http.StatusUnauthorized, "refresh token not found"
	case errors.Is(err, domain.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, "refresh token expired"
	case errors.Is(err, domain.ErrRefreshTokenRevoked):
		return http.StatusUnauthorized, "refresh token revoked"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "account is deactivated"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"

	// prompts and tenants
	case errors.Is(err, domain.ErrPromptNotFound):
		return http.StatusNotFound, "system prompt not found"
	case errors.Is(err, domain.ErrCorePromptExists):
		return http.StatusConflict, "a core prompt already exists"
	case errors.Is(err, domain.ErrInvalidPrompt),
		errors.Is(err, domain.ErrPromptTypeImmutable),
		errors.Is(err, domain.ErrInvalidIndustry),
		errors.Is(err, domain.ErrInvalidQuote),
		errors.Is(err, domain.ErrInvalidQuoteStatus):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrIndustryNotFound),
		errors.Is(err, domain.ErrCompanyNotFound),
		errors.Is(err, domain.ErrClientNotFound),
		errors.Is(err, domain.ErrQuoteNotFound):
		return http.StatusNotFound, err.Error()

	// upstream
	case errors.Is(err, domain.ErrCompletionUnavailable):
		log.Error().Err(err).Str("path", c.Path()).Msg("completion provider failed")
		return http.StatusBadGateway, "AI provider unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
