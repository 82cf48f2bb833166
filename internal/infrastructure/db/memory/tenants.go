package memory

import (
	"context"
	"sort"
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

type IndustryRepository struct{ s *Store }

func (r *IndustryRepository) FindByID(_ context.Context, id string) (*domain.Industry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ind, ok := r.s.industries[id]
	if !ok {
		return nil, domain.ErrIndustryNotFound
	}
	c := *ind
	return &c, nil
}

func (r *IndustryRepository) List(_ context.Context) ([]*domain.Industry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Industry, 0, len(r.s.industries))
	for _, ind := range r.s.industries {
		c := *ind
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *IndustryRepository) Create(_ context.Context, ind *domain.Industry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *ind
	r.s.industries[ind.ID] = &c
	return nil
}

type CompanyRepository struct{ s *Store }

func (r *CompanyRepository) FindByID(_ context.Context, id string) (*domain.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	co, ok := r.s.companies[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	c := *co
	return &c, nil
}

func (r *CompanyRepository) Create(_ context.Context, co *domain.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *co
	r.s.companies[co.ID] = &c
	return nil
}

type ClientRepository struct{ s *Store }

func (r *ClientRepository) FindByID(_ context.Context, companyID, id string) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cl, ok := r.s.clients[id]
	if !ok || cl.CompanyID != companyID {
		return nil, domain.ErrClientNotFound
	}
	c := *cl
	return &c, nil
}

func (r *ClientRepository) List(_ context.Context, companyID string) ([]*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Client, 0)
	for _, cl := range r.s.clients {
		if cl.CompanyID == companyID {
			c := *cl
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ClientRepository) Create(_ context.Context, cl *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *cl
	r.s.clients[cl.ID] = &c
	return nil
}

type QuoteRepository struct{ s *Store }

func (r *QuoteRepository) Create(_ context.Context, q *domain.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *q
	r.s.quotes[q.ID] = &c
	return nil
}

func (r *QuoteRepository) FindByID(_ context.Context, companyID, id string) (*domain.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q, ok := r.s.quotes[id]
	if !ok || q.CompanyID != companyID {
		return nil, domain.ErrQuoteNotFound
	}
	c := *q
	return &c, nil
}

func (r *QuoteRepository) List(_ context.Context, companyID string, status domain.QuoteStatus) ([]*domain.Quote, error) {
	return r.filter(func(q *domain.Quote) bool {
		return q.CompanyID == companyID && (status == "" || q.Status == status)
	}, 0), nil
}

func (r *QuoteRepository) RecentForClient(_ context.Context, companyID, clientID string, limit int) ([]*domain.Quote, error) {
	return r.filter(func(q *domain.Quote) bool {
		return q.CompanyID == companyID && q.ClientID == clientID
	}, limit), nil
}

func (r *QuoteRepository) UpdateStatus(_ context.Context, companyID, id string, status domain.QuoteStatus) (*domain.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotes[id]
	if !ok || q.CompanyID != companyID {
		return nil, domain.ErrQuoteNotFound
	}
	q.Status = status
	q.UpdatedAt = time.Now().UTC()
	c := *q
	return &c, nil
}

// filter returns matching quotes newest first, capped at limit when > 0.
func (r *QuoteRepository) filter(match func(*domain.Quote) bool, limit int) []*domain.Quote {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Quote, 0)
	for _, q := range r.s.quotes {
		if match(q) {
			c := *q
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
