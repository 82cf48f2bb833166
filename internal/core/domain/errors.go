package domain

import "errors"

// Authentication and user errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrForbidden          = errors.New("access forbidden")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// Token errors. Verification failures are returned, never panicked, and
// callers treat them as an anonymous request.
var (
	ErrInvalidToken         = errors.New("invalid token signature")
	ErrAccessTokenExpired   = errors.New("access token expired")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRefreshTokenRevoked  = errors.New("refresh token revoked")
)

// Prompt errors.
var (
	ErrPromptNotFound        = errors.New("system prompt not found")
	ErrCorePromptExists      = errors.New("a core prompt already exists")
	ErrInvalidPrompt         = errors.New("invalid system prompt")
	ErrPromptTypeImmutable   = errors.New("prompt type cannot be changed")
	ErrIndustryNotFound      = errors.New("industry not found")
	ErrInvalidIndustry       = errors.New("invalid industry")
	ErrCompanyNotFound       = errors.New("company not found")
	ErrClientNotFound        = errors.New("client not found")
	ErrQuoteNotFound         = errors.New("quote not found")
	ErrInvalidQuote          = errors.New("invalid quote")
	ErrInvalidQuoteStatus    = errors.New("invalid quote status")
	ErrCompletionUnavailable = errors.New("completion provider unavailable")
)
