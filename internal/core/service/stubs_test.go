package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cloneUser(user)
	if c.ID == "" {
		r.seq++
		c.ID = fmt.Sprintf("user-%d", r.seq)
	}
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *stubUserRepo) setActive(id string, active bool) {
	r.mu.Lock()
	r.users[id].IsActive = active
	r.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Refresh tokens
// ---------------------------------------------------------------------------

// stubTokenRepo serializes every call so Revoke behaves as a
// compare-and-set, like the conditional update of the real stores.
type stubTokenRepo struct {
	mu        sync.Mutex
	tokens    map[string]*domain.RefreshToken
	createErr error
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *stubTokenRepo) Create(_ context.Context, t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	c := *t
	r.tokens[t.Token] = &c
	return nil
}

func (r *stubTokenRepo) FindByToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrRefreshTokenNotFound
	}
	c := *t
	return &c, nil
}

func (r *stubTokenRepo) Revoke(_ context.Context, token, ip, replacedBy string, at time.Time) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrRefreshTokenNotFound
	}
	if t.IsRevoked {
		return nil, domain.ErrRefreshTokenRevoked
	}
	t.IsRevoked = true
	t.RevokedAt = &at
	t.RevokedByIP = ip
	t.ReplacedByToken = replacedBy
	c := *t
	return &c, nil
}

func (r *stubTokenRepo) RevokeAllForUser(_ context.Context, userID, ip string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tokens {
		if t.UserID == userID && !t.IsRevoked && t.Expires.After(at) {
			t.IsRevoked = true
			t.RevokedAt = &at
			t.RevokedByIP = ip
			n++
		}
	}
	return n, nil
}

func (r *stubTokenRepo) FindByReplacement(_ context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.ReplacedByToken == token {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrRefreshTokenNotFound
}

func (r *stubTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

func (r *stubTokenRepo) active(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.IsActive(now) {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (s *recordingSink) Enqueue(e domain.AuthEvent) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *recordingSink) types() []domain.AuthEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuthEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

// ---------------------------------------------------------------------------
// Prompts and tenants
// ---------------------------------------------------------------------------

type stubPromptRepo struct {
	prompts     map[string]*domain.SystemPrompt
	coreErr     error
	invalidated int
}

func newStubPromptRepo() *stubPromptRepo {
	return &stubPromptRepo{prompts: make(map[string]*domain.SystemPrompt)}
}

func (r *stubPromptRepo) Create(_ context.Context, p *domain.SystemPrompt) error {
	if _, exists := r.prompts[p.ID]; exists {
		if p.PromptType == domain.PromptCore {
			return domain.ErrCorePromptExists
		}
		return domain.ErrInvalidPrompt
	}
	c := *p
	r.prompts[p.ID] = &c
	return nil
}

func (r *stubPromptRepo) FindByID(_ context.Context, id string) (*domain.SystemPrompt, error) {
	p, ok := r.prompts[id]
	if !ok {
		return nil, domain.ErrPromptNotFound
	}
	c := *p
	return &c, nil
}

func (r *stubPromptRepo) List(_ context.Context, f ports.PromptFilter) ([]*domain.SystemPrompt, error) {
	var out []*domain.SystemPrompt
	for _, p := range r.prompts {
		if f.PromptType != "" && p.PromptType != f.PromptType {
			continue
		}
		if f.IndustryID != "" && p.IndustryID != f.IndustryID {
			continue
		}
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPromptRepo) Update(_ context.Context, p *domain.SystemPrompt) error {
	if _, ok := r.prompts[p.ID]; !ok {
		return domain.ErrPromptNotFound
	}
	c := *p
	r.prompts[p.ID] = &c
	return nil
}

func (r *stubPromptRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.prompts[id]; !ok {
		return domain.ErrPromptNotFound
	}
	delete(r.prompts, id)
	return nil
}

func (r *stubPromptRepo) SetActive(_ context.Context, id string, active bool, exclusiveIndustry string) error {
	p, ok := r.prompts[id]
	if !ok {
		return domain.ErrPromptNotFound
	}
	if active && exclusiveIndustry != "" {
		for _, other := range r.prompts {
			if other.ID != id && other.PromptType == domain.PromptIndustry && other.IndustryID == exclusiveIndustry {
				other.IsActive = false
			}
		}
	}
	p.IsActive = active
	return nil
}

func (r *stubPromptRepo) ActiveCore(_ context.Context) (*domain.SystemPrompt, error) {
	if r.coreErr != nil {
		return nil, r.coreErr
	}
	p, ok := r.prompts[domain.CorePromptID]
	if !ok || !p.IsActive {
		return nil, domain.ErrPromptNotFound
	}
	c := *p
	return &c, nil
}

func (r *stubPromptRepo) ActiveForIndustry(_ context.Context, industryID string) (*domain.SystemPrompt, error) {
	for _, p := range r.prompts {
		if p.PromptType == domain.PromptIndustry && p.IndustryID == industryID && p.IsActive {
			c := *p
			return &c, nil
		}
	}
	return nil, domain.ErrPromptNotFound
}

func (r *stubPromptRepo) Invalidate(_ context.Context) error {
	r.invalidated++
	return nil
}

type stubTenantRepo struct {
	companies  map[string]*domain.Company
	industries map[string]*domain.Industry
	clients    map[string]*domain.Client
	quotes     []*domain.Quote
}

func newStubTenantRepo() *stubTenantRepo {
	return &stubTenantRepo{
		companies:  make(map[string]*domain.Company),
		industries: make(map[string]*domain.Industry),
		clients:    make(map[string]*domain.Client),
	}
}

type stubCompanies struct{ *stubTenantRepo }

func (r stubCompanies) FindByID(_ context.Context, id string) (*domain.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	return c, nil
}

func (r stubCompanies) Create(_ context.Context, c *domain.Company) error {
	r.companies[c.ID] = c
	return nil
}

type stubIndustries struct{ *stubTenantRepo }

func (r stubIndustries) FindByID(_ context.Context, id string) (*domain.Industry, error) {
	ind, ok := r.industries[id]
	if !ok {
		return nil, domain.ErrIndustryNotFound
	}
	return ind, nil
}

func (r stubIndustries) List(_ context.Context) ([]*domain.Industry, error) {
	out := make([]*domain.Industry, 0, len(r.industries))
	for _, ind := range r.industries {
		out = append(out, ind)
	}
	return out, nil
}

func (r stubIndustries) Create(_ context.Context, ind *domain.Industry) error {
	r.industries[ind.ID] = ind
	return nil
}

type stubClients struct{ *stubTenantRepo }

func (r stubClients) FindByID(_ context.Context, companyID, id string) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok || c.CompanyID != companyID {
		return nil, domain.ErrClientNotFound
	}
	return c, nil
}

func (r stubClients) List(_ context.Context, companyID string) ([]*domain.Client, error) {
	var out []*domain.Client
	for _, c := range r.clients {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r stubClients) Create(_ context.Context, c *domain.Client) error {
	r.clients[c.ID] = c
	return nil
}

type stubQuotes struct{ *stubTenantRepo }

func (r stubQuotes) Create(_ context.Context, q *domain.Quote) error {
	r.stubTenantRepo.quotes = append(r.stubTenantRepo.quotes, q)
	return nil
}

func (r stubQuotes) FindByID(_ context.Context, companyID, id string) (*domain.Quote, error) {
	for _, q := range r.stubTenantRepo.quotes {
		if q.ID == id && q.CompanyID == companyID {
			return q, nil
		}
	}
	return nil, domain.ErrQuoteNotFound
}

func (r stubQuotes) List(_ context.Context, companyID string, status domain.QuoteStatus) ([]*domain.Quote, error) {
	var out []*domain.Quote
	for _, q := range r.stubTenantRepo.quotes {
		if q.CompanyID == companyID && (status == "" || q.Status == status) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r stubQuotes) RecentForClient(_ context.Context, companyID, clientID string, limit int) ([]*domain.Quote, error) {
	var out []*domain.Quote
	for _, q := range r.stubTenantRepo.quotes {
		if q.CompanyID == companyID && q.ClientID == clientID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r stubQuotes) UpdateStatus(_ context.Context, companyID, id string, status domain.QuoteStatus) (*domain.Quote, error) {
	for _, q := range r.stubTenantRepo.quotes {
		if q.ID == id && q.CompanyID == companyID {
			q.Status = status
			return q, nil
		}
	}
	return nil, domain.ErrQuoteNotFound
}
