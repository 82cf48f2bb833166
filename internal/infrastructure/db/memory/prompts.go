package memory

import (
	"context"
	"sort"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

type PromptRepository struct{ s *Store }

func copyPrompt(p *domain.SystemPrompt) *domain.SystemPrompt {
	c := *p
	return &c
}

func (r *PromptRepository) Create(_ context.Context, p *domain.SystemPrompt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.prompts[p.ID]; exists {
		if p.PromptType == domain.PromptCore {
			return domain.ErrCorePromptExists
		}
		return domain.ErrInvalidPrompt
	}
	r.s.prompts[p.ID] = copyPrompt(p)
	return nil
}

func (r *PromptRepository) FindByID(_ context.Context, id string) (*domain.SystemPrompt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.prompts[id]
	if !ok {
		return nil, domain.ErrPromptNotFound
	}
	return copyPrompt(p), nil
}

func (r *PromptRepository) List(_ context.Context, f ports.PromptFilter) ([]*domain.SystemPrompt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.SystemPrompt, 0, len(r.s.prompts))
	for _, p := range r.s.prompts {
		if f.PromptType != "" && p.PromptType != f.PromptType {
			continue
		}
		if f.IndustryID != "" && p.IndustryID != f.IndustryID {
			continue
		}
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, copyPrompt(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PromptType != out[j].PromptType {
			return out[i].PromptType < out[j].PromptType
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *PromptRepository) Update(_ context.Context, p *domain.SystemPrompt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.prompts[p.ID]; !ok {
		return domain.ErrPromptNotFound
	}
	r.s.prompts[p.ID] = copyPrompt(p)
	return nil
}

func (r *PromptRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.prompts[id]; !ok {
		return domain.ErrPromptNotFound
	}
	delete(r.s.prompts, id)
	return nil
}

func (r *PromptRepository) SetActive(_ context.Context, id string, active bool, exclusiveIndustry string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prompts[id]
	if !ok {
		return domain.ErrPromptNotFound
	}
	if active && exclusiveIndustry != "" {
		for _, other := range r.s.prompts {
			if other.ID != id && other.PromptType == domain.PromptIndustry && other.IndustryID == exclusiveIndustry {
				other.IsActive = false
			}
		}
	}
	p.IsActive = active
	return nil
}

func (r *PromptRepository) ActiveCore(_ context.Context) (*domain.SystemPrompt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.prompts[domain.CorePromptID]
	if !ok || !p.IsActive {
		return nil, domain.ErrPromptNotFound
	}
	return copyPrompt(p), nil
}

func (r *PromptRepository) ActiveForIndustry(_ context.Context, industryID string) (*domain.SystemPrompt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *domain.SystemPrompt
	for _, p := range r.s.prompts {
		if p.PromptType != domain.PromptIndustry || p.IndustryID != industryID || !p.IsActive {
			continue
		}
		if found == nil || p.UpdatedAt.After(found.UpdatedAt) {
			found = p
		}
	}
	if found == nil {
		return nil, domain.ErrPromptNotFound
	}
	return copyPrompt(found), nil
}
