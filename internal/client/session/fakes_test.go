package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeAPI issues sequential tokens and records calls.
type fakeAPI struct {
	mu sync.Mutex

	loginFn   func(ctx context.Context) error
	refreshFn func(ctx context.Context, token string) error
	statusFn  func(ctx context.Context, token string) (*StatusResult, error)
	logoutFn  func(ctx context.Context, access, refresh string) error

	seq           int
	refreshCalls  int
	statusCalls   int
	logoutCalls   int
	refreshTokens []string
	logoutTokens  []string
}

func (f *fakeAPI) envelope() *Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return &Envelope{
		Success:      true,
		AccessToken:  fmt.Sprintf("access-%d", f.seq),
		RefreshToken: fmt.Sprintf("refresh-%d", f.seq),
		ExpiresIn:    (15 * time.Minute).Milliseconds(),
		User:         &domain.User{ID: "user-1", Username: "alice"},
	}
}

func (f *fakeAPI) Login(ctx context.Context, identifier, password string) (*Envelope, error) {
	if f.loginFn != nil {
		if err := f.loginFn(ctx); err != nil {
			return nil, err
		}
	}
	if password != "password123" {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	return f.envelope(), nil
}

func (f *fakeAPI) Register(ctx context.Context, req RegisterRequest) (*Envelope, error) {
	return f.envelope(), nil
}

func (f *fakeAPI) Refresh(ctx context.Context, token string) (*Envelope, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.refreshTokens = append(f.refreshTokens, token)
	fn := f.refreshFn
	f.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, token); err != nil {
			return nil, err
		}
	}
	return f.envelope(), nil
}

func (f *fakeAPI) Logout(ctx context.Context, access, refresh string) error {
	f.mu.Lock()
	f.logoutCalls++
	f.logoutTokens = append(f.logoutTokens, refresh)
	f.mu.Unlock()
	if f.logoutFn != nil {
		return f.logoutFn(ctx, access, refresh)
	}
	return nil
}

func (f *fakeAPI) Status(ctx context.Context, token string) (*StatusResult, error) {
	f.mu.Lock()
	f.statusCalls++
	f.mu.Unlock()
	if f.statusFn != nil {
		return f.statusFn(ctx, token)
	}
	return &StatusResult{Authenticated: true, User: &domain.User{ID: "user-1", Username: "alice"}}, nil
}

func (f *fakeAPI) counts() (refresh, status, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, f.statusCalls, f.logoutCalls
}

type fakeNavigator struct {
	mu        sync.Mutex
	path      string
	protected map[string]bool
	redirects []string
}

func (n *fakeNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *fakeNavigator) RequiresAuth(path string) bool { return n.protected[path] }

func (n *fakeNavigator) Redirect(to string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirects = append(n.redirects, to)
}

func (n *fakeNavigator) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.redirects) == 0 {
		return ""
	}
	return n.redirects[len(n.redirects)-1]
}

// countingStorage counts SetMany calls.
type countingStorage struct {
	*MemoryStorage
	mu       sync.Mutex
	setCalls int
}

func (s *countingStorage) SetMany(values map[string]string) error {
	s.mu.Lock()
	s.setCalls++
	s.mu.Unlock()
	return s.MemoryStorage.SetMany(values)
}

// scriptedDoer returns the queued status codes in order.
type scriptedDoer struct {
	mu       sync.Mutex
	codes    []int
	requests []*http.Request
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
	if len(d.codes) == 0 {
		return nil, errors.New("no scripted response")
	}
	code := d.codes[0]
	d.codes = d.codes[1:]
	return &http.Response{
		StatusCode: code,
		Status:     http.StatusText(code),
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     http.Header{},
	}, nil
}
