package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quotecraft/quoting-system/internal/api/metrics"
	"github.com/quotecraft/quoting-system/internal/api/middleware"
	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

const (
	refreshCookieName = "refreshToken"
	refreshCookiePath = "/api/auth"
)

// AuthOptions configures token lifetimes reported to clients and the
// refresh cookie.
type AuthOptions struct {
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	CookieSecure bool
}

type AuthHandler struct {
	authService ports.AuthService
	opts        AuthOptions
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, opts AuthOptions, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, opts: opts, log: log}
}

// Register creates a new user account and opens a session.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		CompanyName: req.CompanyName,
		IndustryID:  req.IndustryID,
		IP:          c.RealIP(),
	})
	metrics.AuthAttemptsTotal.WithLabelValues("register", authResult(err)).Inc()
	if err != nil {
		return err
	}

	return h.writeSession(c, http.StatusCreated, pair)
}

// Login authenticates a user by email or username.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.identifier() == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "identifier, email or username is required")
	}

	pair, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Identifier: req.identifier(),
		Password:   req.Password,
		IP:         c.RealIP(),
	})
	metrics.AuthAttemptsTotal.WithLabelValues("login", authResult(err)).Inc()
	if err != nil {
		return err
	}

	return h.writeSession(c, http.StatusOK, pair)
}

// Refresh rotates the refresh token. The HTTP-only cookie is read first and
// the request body is the fallback.
//
// @Summary      Refresh the session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when cookies are unavailable"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := h.refreshTokenFrom(c)
	if token == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", "missing").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token required")
	}

	pair, err := h.authService.Refresh(c.Request().Context(), token, c.RealIP())
	metrics.AuthAttemptsTotal.WithLabelValues("refresh", authResult(err)).Inc()
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenRevoked) {
			metrics.RefreshReuseTotal.Inc()
		}
		h.clearCookie(c)
		if errors.Is(err, domain.ErrUserInactive) || errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found or inactive")
		}
		return err
	}

	return h.writeSession(c, http.StatusOK, pair)
}

// Logout revokes the caller's refresh tokens. It always succeeds from the
// client's point of view.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when cookies are unavailable"
// @Success      200   {object}  logoutResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	token := h.refreshTokenFrom(c)
	userID, _ := c.Get(middleware.CtxUserID).(string)

	var err error
	if userID != "" || token != "" {
		err = h.authService.Logout(ctx, userID, token, c.RealIP())
	}
	metrics.AuthAttemptsTotal.WithLabelValues("logout", authResult(err)).Inc()
	if err != nil {
		h.log.Debug().Err(err).Str("user_id", userID).Msg("logout revocation failed")
	}

	h.clearCookie(c)
	return c.JSON(http.StatusOK, logoutResponse{Success: true})
}

// Status reports whether the bearer token identifies an active user.
//
// @Summary      Session status
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  statusResponse
// @Router       /auth/status [get]
func (h *AuthHandler) Status(c echo.Context) error {
	token, err := middleware.BearerToken(c.Request())
	if err != nil {
		return c.JSON(http.StatusOK, statusResponse{Authenticated: false})
	}

	user, err := h.authService.Authenticate(c.Request().Context(), token)
	if err != nil {
		return c.JSON(http.StatusOK, statusResponse{Authenticated: false})
	}
	return c.JSON(http.StatusOK, statusResponse{Authenticated: true, User: user})
}

func (h *AuthHandler) writeSession(c echo.Context, status int, pair *domain.TokenPair) error {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		MaxAge:   int(h.opts.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(status, authResponse{
		Success:      true,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    h.opts.AccessTTL.Milliseconds(),
		User:         pair.User,
	})
}

func (h *AuthHandler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) refreshTokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

// authResult turns an auth error into a low-cardinality metric label.
func authResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUserInactive):
		return "inactive"
	case errors.Is(err, domain.ErrUserExists):
		return "exists"
	case errors.Is(err, domain.ErrRefreshTokenNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRefreshTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrRefreshTokenRevoked):
		return "revoked"
	default:
		return "error"
	}
}
