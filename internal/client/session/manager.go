// Package session keeps an authenticated session alive on the client side.
// It caches the access token, refreshes it shortly before expiry, attaches
// bearer headers and sends the user back to the login page when the
// session ends on a protected view.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

var (
	// ErrLoginTimeout is returned when login or registration does not
	// answer within the configured timeout. Server-side work is not
	// cancelled.
	ErrLoginTimeout = errors.New("request timed out")
	// ErrSessionExpired is returned when the server rejected the session or
	// the session was ended locally while a request was in flight.
	ErrSessionExpired = errors.New("session expired")
)

const (
	DefaultRefreshThreshold = 60 * time.Second
	DefaultLoginTimeout     = 15 * time.Second
	DefaultRefreshTimeout   = 15 * time.Second
	DefaultAntiThrashWindow = 5 * time.Second
	DefaultLoginPath        = "/login"
)

// RetryPolicy bounds retries of idempotent GET requests. Mutations are
// never retried.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy makes up to three attempts one second apart.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: time.Second}

func (p RetryPolicy) backoff() retry.Backoff {
	delay := p.Delay
	if delay <= 0 {
		delay = time.Millisecond
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(delay))
}

// Config wires a Manager. API and Storage are required.
type Config struct {
	API       API
	Storage   Storage
	Doer      Doer
	Navigator Navigator

	RefreshThreshold time.Duration
	LoginTimeout     time.Duration
	RefreshTimeout   time.Duration
	AntiThrashWindow time.Duration
	LoginPath        string
	Retry            RetryPolicy

	Now func() time.Time
	Log zerolog.Logger
}

// Manager owns one client session. It is safe for concurrent use;
// concurrent refreshes are coalesced into one call.
type Manager struct {
	cfg Config

	mu    sync.RWMutex
	state SessionState
	// epoch changes whenever the session is cleared. Responses to requests
	// started under an older epoch are discarded.
	epoch uint64

	refreshes singleflight.Group
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.API == nil {
		return nil, errors.New("session: API is required")
	}
	if cfg.Storage == nil {
		return nil, errors.New("session: Storage is required")
	}
	if cfg.RefreshThreshold <= 0 {
		cfg.RefreshThreshold = DefaultRefreshThreshold
	}
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = DefaultLoginTimeout
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultRefreshTimeout
	}
	if cfg.AntiThrashWindow <= 0 {
		cfg.AntiThrashWindow = DefaultAntiThrashWindow
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Doer == nil {
		cfg.Doer = http.DefaultClient
	}
	return &Manager{cfg: cfg}, nil
}

// State returns a copy of the current session.
func (m *Manager) State() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Init restores the session from storage and renews it silently when the
// access token is missing or about to expire.
func (m *Manager) Init(ctx context.Context) error {
	restored, err := m.restore()
	if err != nil {
		return err
	}
	if restored.AccessToken == "" && restored.RefreshToken == "" {
		m.setStatus(StatusUnauthenticated)
		return nil
	}

	m.mu.Lock()
	m.state = restored
	m.state.Status = StatusAuthenticating
	m.mu.Unlock()

	if _, err := m.CheckStatus(ctx); err != nil && !errors.Is(err, ErrSessionExpired) {
		m.cfg.Log.Warn().Err(err).Msg("session status check failed during init")
	}
	return nil
}

// Teardown clears the session locally without contacting the server.
func (m *Manager) Teardown() error {
	return m.clear()
}

// AuthHeaders returns the Authorization header for an authenticated call,
// refreshing the access token first when it is absent or expires within the
// refresh threshold.
func (m *Manager) AuthHeaders(ctx context.Context) (http.Header, error) {
	token, err := m.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h, nil
}

func (m *Manager) accessToken(ctx context.Context) (string, error) {
	s := m.State()
	if !s.needsRefresh(m.cfg.Now(), m.cfg.RefreshThreshold) {
		return s.AccessToken, nil
	}

	v, err, _ := m.refreshes.Do("refresh", func() (any, error) {
		// A caller that queued behind a finished refresh sees the new token.
		if s := m.State(); !s.needsRefresh(m.cfg.Now(), m.cfg.RefreshThreshold) {
			return s.AccessToken, nil
		}
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refresh rotates the refresh token. It runs on behalf of every waiting
// caller, so it is detached from the caller that started it. Only a
// verified rejection ends the session.
func (m *Manager) refresh(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.RefreshTimeout)
	defer cancel()

	s, epoch := m.snapshot()
	env, err := m.cfg.API.Refresh(ctx, s.RefreshToken)
	if err != nil {
		if !errors.Is(err, ErrUnauthorized) {
			m.cfg.Log.Warn().Err(err).Msg("session refresh failed, keeping session")
			return "", fmt.Errorf("refresh session: %w", err)
		}
		m.cfg.Log.Info().Err(err).Msg("session refresh rejected")
		if m.currentEpoch() == epoch {
			m.endSession()
		}
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	if err := m.store(env, s.LastLoginSuccess, epoch); err != nil {
		if errors.Is(err, errStaleSession) {
			m.discard(ctx, env)
			return "", ErrSessionExpired
		}
		return "", err
	}
	m.cfg.Log.Debug().Msg("access token refreshed")
	return env.AccessToken, nil
}

// discard revokes tokens issued for a session that ended while the request
// was in flight.
func (m *Manager) discard(ctx context.Context, env *Envelope) {
	m.cfg.Log.Info().Msg("session ended during refresh, revoking rotated tokens")
	if err := m.cfg.API.Logout(ctx, env.AccessToken, env.RefreshToken); err != nil {
		m.cfg.Log.Warn().Err(err).Msg("failed to revoke discarded tokens")
	}
}

// Login authenticates with an email or username.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*domain.User, error) {
	return m.authenticate(ctx, func(ctx context.Context) (*Envelope, error) {
		return m.cfg.API.Login(ctx, identifier, password)
	})
}

// Register creates an account and opens a session for it.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return m.authenticate(ctx, func(ctx context.Context) (*Envelope, error) {
		return m.cfg.API.Register(ctx, req)
	})
}

func (m *Manager) authenticate(ctx context.Context, call func(context.Context) (*Envelope, error)) (*domain.User, error) {
	m.setStatus(StatusAuthenticating)
	epoch := m.currentEpoch()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.LoginTimeout)
	defer cancel()

	env, err := call(ctx)
	if err != nil {
		m.setStatus(StatusUnauthenticated)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrLoginTimeout
		}
		return nil, err
	}

	if err := m.store(env, m.cfg.Now(), epoch); err != nil {
		if errors.Is(err, errStaleSession) {
			m.discard(ctx, env)
			return nil, ErrSessionExpired
		}
		m.setStatus(StatusUnauthenticated)
		return nil, err
	}

	m.redirectAfterLogin()
	return m.State().User, nil
}

// CheckStatus verifies the session with the server. Within the anti-thrash
// window after a successful login the cached state is returned unchecked.
// A verified rejection ends the session; network failures leave it intact.
func (m *Manager) CheckStatus(ctx context.Context) (SessionState, error) {
	s := m.State()
	now := m.cfg.Now()
	if s.Status == StatusAuthenticated && !s.LastLoginSuccess.IsZero() &&
		now.Sub(s.LastLoginSuccess) < m.cfg.AntiThrashWindow {
		return s, nil
	}

	token, err := m.accessToken(ctx)
	if err != nil {
		return m.State(), err
	}
	epoch := m.currentEpoch()

	var res *StatusResult
	err = retry.Do(ctx, m.cfg.Retry.backoff(), func(ctx context.Context) error {
		r, err := m.cfg.API.Status(ctx, token)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return err
			}
			return retry.RetryableError(err)
		}
		res = r
		return nil
	})
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return m.State(), err
	}
	if err != nil || !res.Authenticated {
		if m.currentEpoch() == epoch {
			m.endSession()
		}
		return m.State(), ErrSessionExpired
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return m.State(), ErrSessionExpired
	}
	m.state.Status = StatusAuthenticated
	m.state.User = res.User
	m.mu.Unlock()
	return m.State(), nil
}

// Logout clears the local session before telling the server, so the caller
// sees the logged-out state immediately. Server errors are only logged.
func (m *Manager) Logout(ctx context.Context) error {
	s := m.State()
	if err := m.clear(); err != nil {
		m.cfg.Log.Warn().Err(err).Msg("failed to clear session storage")
	}
	if m.cfg.Navigator != nil {
		m.cfg.Navigator.Redirect(m.cfg.LoginPath)
	}

	if err := m.cfg.API.Logout(ctx, s.AccessToken, s.RefreshToken); err != nil {
		m.cfg.Log.Warn().Err(err).Msg("server logout failed")
	}
	return nil
}

// Do sends req with a fresh bearer token. GET requests are retried on
// transport errors and 5xx responses according to the retry policy. A 401
// ends the session.
func (m *Manager) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	headers, err := m.AuthHeaders(ctx)
	if err != nil {
		return nil, err
	}

	send := func(ctx context.Context) (*http.Response, error) {
		r := req.Clone(ctx)
		r.Header.Set("Authorization", headers.Get("Authorization"))
		return m.cfg.Doer.Do(r)
	}

	var resp *http.Response
	if req.Method == http.MethodGet {
		err = retry.Do(ctx, m.cfg.Retry.backoff(), func(ctx context.Context) error {
			r, err := send(ctx)
			if err != nil {
				return retry.RetryableError(err)
			}
			if r.StatusCode >= http.StatusInternalServerError {
				r.Body.Close()
				return retry.RetryableError(fmt.Errorf("server error: %s", r.Status))
			}
			resp = r
			return nil
		})
	} else {
		resp, err = send(ctx)
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		m.endSession()
		return nil, ErrSessionExpired
	}
	return resp, nil
}

// endSession clears state and, when the current view is protected, sends
// the user to the login page with the view preserved as the return target.
func (m *Manager) endSession() {
	if err := m.clear(); err != nil {
		m.cfg.Log.Warn().Err(err).Msg("failed to clear session storage")
	}

	nav := m.cfg.Navigator
	if nav == nil {
		return
	}
	path := nav.CurrentPath()
	if !nav.RequiresAuth(path) {
		return
	}
	if err := m.cfg.Storage.SetMany(map[string]string{KeyRedirectAfterLogin: path}); err != nil {
		m.cfg.Log.Warn().Err(err).Msg("failed to store redirect target")
	}
	nav.Redirect(LoginURL(m.cfg.LoginPath, path))
}

func (m *Manager) redirectAfterLogin() {
	target, ok, err := m.cfg.Storage.Get(KeyRedirectAfterLogin)
	if err != nil || !ok || target == "" {
		return
	}
	if err := m.cfg.Storage.Delete(KeyRedirectAfterLogin); err != nil {
		m.cfg.Log.Warn().Err(err).Msg("failed to clear redirect target")
	}
	if m.cfg.Navigator != nil {
		m.cfg.Navigator.Redirect(target)
	}
}

var errStaleSession = errors.New("session changed during request")

// store applies a token envelope to memory and storage in one write. It
// returns errStaleSession when the session was cleared after epoch was read.
func (m *Manager) store(env *Envelope, lastLogin time.Time, epoch uint64) error {
	now := m.cfg.Now()
	expiresAt := now.Add(time.Duration(env.ExpiresIn) * time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return errStaleSession
	}

	refreshToken := env.RefreshToken
	if refreshToken == "" {
		refreshToken = m.state.RefreshToken
	}
	user := env.User
	if user == nil {
		user = m.state.User
	}
	m.state = SessionState{
		Status:           StatusAuthenticated,
		User:             user,
		AccessToken:      env.AccessToken,
		ExpiresAt:        expiresAt,
		RefreshToken:     refreshToken,
		LastLoginSuccess: lastLogin,
	}

	values := map[string]string{
		KeyAccessToken:  env.AccessToken,
		KeyRefreshToken: refreshToken,
		KeyExpiresAt:    expiresAt.UTC().Format(time.RFC3339Nano),
	}
	if !lastLogin.IsZero() {
		values[KeyLastLoginSuccess] = lastLogin.UTC().Format(time.RFC3339Nano)
	}
	if err := m.cfg.Storage.SetMany(values); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (m *Manager) restore() (SessionState, error) {
	var s SessionState
	var err error
	get := func(key string) string {
		if err != nil {
			return ""
		}
		var v string
		v, _, err = m.cfg.Storage.Get(key)
		return v
	}

	s.AccessToken = get(KeyAccessToken)
	s.RefreshToken = get(KeyRefreshToken)
	expires := get(KeyExpiresAt)
	lastLogin := get(KeyLastLoginSuccess)
	if err != nil {
		return SessionState{}, fmt.Errorf("restore session: %w", err)
	}

	// Unparseable timestamps fall back to zero, which forces a refresh.
	s.ExpiresAt, _ = time.Parse(time.RFC3339Nano, expires)
	s.LastLoginSuccess, _ = time.Parse(time.RFC3339Nano, lastLogin)
	return s, nil
}

func (m *Manager) clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.state = SessionState{Status: StatusUnauthenticated}
	return m.cfg.Storage.Delete(allKeys...)
}

func (m *Manager) currentEpoch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

// snapshot returns the session and its epoch read under one lock.
func (m *Manager) snapshot() (SessionState, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.epoch
}

func (m *Manager) setStatus(st Status) {
	m.mu.Lock()
	m.state.Status = st
	m.mu.Unlock()
}
