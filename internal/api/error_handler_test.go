package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("refresh: %w", domain.ErrRefreshTokenRevoked), http.StatusUnauthorized},
		{domain.ErrRefreshTokenExpired, http.StatusUnauthorized},
		{domain.ErrUserInactive, http.StatusForbidden},
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrCorePromptExists, http.StatusConflict},
		{domain.ErrPromptTypeImmutable, http.StatusBadRequest},
		{domain.ErrClientNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: timeout", domain.ErrCompletionUnavailable), http.StatusBadGateway},
		{echo.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot},
		{errors.New("mongo exploded"), http.StatusInternalServerError},
	}

	e := echo.New()
	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/quotes", nil)
		rec := httptest.NewRecorder()
		h(tt.err, e.NewContext(req, rec))
		if rec.Code != tt.code {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.code, rec.Code)
		}
	}
}

func TestHTTPErrorHandler_HidesInternalDetails(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	rec := httptest.NewRecorder()
	NewHTTPErrorHandler(zerolog.Nop())(errors.New("dial tcp 10.0.0.3:27017"), e.NewContext(req, rec))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("leaked error message: %v", body["error"])
	}
	if body["success"] != false {
		t.Fatalf("auth routes must carry success=false, got %v", body["success"])
	}
}
