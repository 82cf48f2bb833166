package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quotecraft/quoting-system/internal/api"
	"github.com/quotecraft/quoting-system/internal/api/handler"
	"github.com/quotecraft/quoting-system/internal/core/service"
	"github.com/quotecraft/quoting-system/internal/infrastructure/ai"
	"github.com/quotecraft/quoting-system/internal/infrastructure/db/memory"
)

// newQuotingServer runs the real router on a memory store. Server and client
// share clock so token expiry can be driven by the test.
func newQuotingServer(t *testing.T, clock *fakeClock) *httptest.Server {
	t.Helper()

	log := zerolog.Nop()
	store := memory.NewStore()
	issuer := service.NewTokenIssuer("e2e-secret", 15*time.Minute, clock.Now)
	authSvc := service.NewAuthService(store.Users(), store.Tokens(), store.Companies(), store.Industries(), issuer, nil, log, service.AuthOptions{
		RefreshTTL: 7 * 24 * time.Hour,
		Now:        clock.Now,
	})
	composer := service.NewPromptComposer(store.Prompts(), store.Companies(), store.Industries(), store.Clients(), store.Quotes(), log)

	e := api.NewRouter(api.Deps{
		Auth:       authSvc,
		Verifier:   issuer,
		Prompts:    service.NewPromptService(store.Prompts(), nil, log),
		Composer:   composer,
		Generator:  service.NewGenerationService(composer, ai.Disabled{}, log),
		Quotes:     service.NewQuoteService(store.Quotes(), store.Clients(), log),
		Industries: service.NewIndustryService(store.Industries()),
		AuthOptions: handler.AuthOptions{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Log:        log,
		Registerer: prometheus.NewRegistry(),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEnd_RefreshBeforeExpiry(t *testing.T) {
	clock := newFakeClock()
	srv := newQuotingServer(t, clock)

	client, err := NewHTTPClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	nav := &fakeNavigator{path: "/quotes", protected: map[string]bool{"/quotes": true}}
	m, err := NewManager(Config{
		API:       client,
		Storage:   NewMemoryStorage(),
		Doer:      client,
		Navigator: nav,
		Now:       clock.Now,
		Log:       zerolog.Nop(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	user, err := m.Register(ctx, RegisterRequest{
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "password123",
		CompanyName: "Acme Roofing",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	first := m.State()
	require.Equal(t, StatusAuthenticated, first.Status)
	require.Equal(t, clock.Now().Add(15*time.Minute), first.ExpiresAt)

	// 59s of validity left: the next authenticated call rotates first.
	clock.Advance(14*time.Minute + time.Second)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/quotes", nil)
	require.NoError(t, err)
	resp, err := m.Do(ctx, req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	second := m.State()
	require.NotEqual(t, first.AccessToken, second.AccessToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, clock.Now().Add(15*time.Minute), second.ExpiresAt)

	// the rotated-out token is single use; a fresh client has no cookie to
	// fall back on
	replay, err := NewHTTPClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	_, err = replay.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	clock.Advance(DefaultAntiThrashWindow)
	s, err := m.CheckStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, StatusAuthenticated, s.Status)
	require.Equal(t, user.ID, s.User.ID)

	require.NoError(t, m.Logout(ctx))
	require.Equal(t, StatusUnauthenticated, m.State().Status)
	_, err = replay.Refresh(ctx, second.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestEndToEnd_LoginFailure(t *testing.T) {
	clock := newFakeClock()
	srv := newQuotingServer(t, clock)

	client, err := NewHTTPClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "nobody", "password123")
	require.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "invalid credentials", apiErr.Message)
}
