package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// ErrUnauthorized matches any 401 response from the server.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Envelope is the token envelope returned by login, register and refresh.
// ExpiresIn is in milliseconds.
type Envelope struct {
	Success      bool         `json:"success"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         *domain.User `json:"user"`
}

// StatusResult is the body of GET /api/auth/status.
type StatusResult struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

// RegisterRequest is the registration payload. CompanyName opens a new
// company owned by the registrant.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	IndustryID  string `json:"industryId,omitempty"`
}

// API is the auth surface of the quoting server.
type API interface {
	Login(ctx context.Context, identifier, password string) (*Envelope, error)
	Register(ctx context.Context, req RegisterRequest) (*Envelope, error)
	Refresh(ctx context.Context, refreshToken string) (*Envelope, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Status(ctx context.Context, accessToken string) (*StatusResult, error)
}

// Doer executes authenticated requests built by callers.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient implements API over HTTP. Its cookie jar carries the
// HTTP-only refresh cookie; the body copy of the refresh token is sent as
// a fallback.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

// BaseURL returns the server URL without a trailing slash.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// Do sends req with the client's cookie jar.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}

func (c *HTTPClient) Login(ctx context.Context, identifier, password string) (*Envelope, error) {
	var env Envelope
	body := map[string]string{"identifier": identifier, "password": password}
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", "", body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*Envelope, error) {
	var env Envelope
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", "", req, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*Envelope, error) {
	var env Envelope
	body := map[string]string{}
	if refreshToken != "" {
		body["refreshToken"] = refreshToken
	}
	if err := c.call(ctx, http.MethodPost, "/api/auth/refresh", "", body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *HTTPClient) Logout(ctx context.Context, accessToken, refreshToken string) error {
	body := map[string]string{}
	if refreshToken != "" {
		body["refreshToken"] = refreshToken
	}
	return c.call(ctx, http.MethodPost, "/api/auth/logout", accessToken, body, nil)
}

func (c *HTTPClient) Status(ctx context.Context, accessToken string) (*StatusResult, error) {
	var res StatusResult
	if err := c.call(ctx, http.MethodGet, "/api/auth/status", accessToken, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) call(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
