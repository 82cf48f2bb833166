package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

// PromptService manages system prompts and keeps the single-core invariant.
type PromptService struct {
	repo  ports.PromptRepository
	cache ports.PromptCacheInvalidator
	log   zerolog.Logger
	now   func() time.Time
}

func NewPromptService(repo ports.PromptRepository, cache ports.PromptCacheInvalidator, log zerolog.Logger) *PromptService {
	return &PromptService{repo: repo, cache: cache, log: log, now: time.Now}
}

func (s *PromptService) List(ctx context.Context, filter ports.PromptFilter) ([]*domain.SystemPrompt, error) {
	return s.repo.List(ctx, filter)
}

func (s *PromptService) Get(ctx context.Context, id string) (*domain.SystemPrompt, error) {
	return s.repo.FindByID(ctx, id)
}

// Create inserts a prompt. Core prompts get the well-known id so the store
// rejects a second one.
func (s *PromptService) Create(ctx context.Context, in ports.CreatePromptInput) (*domain.SystemPrompt, error) {
	pt := in.PromptType
	if pt == "" {
		pt = domain.InferPromptType(in.Name)
		s.log.Debug().Str("name", in.Name).Str("prompt_type", string(pt)).Msg("prompt type inferred from name")
	}

	now := s.now().UTC()
	p := &domain.SystemPrompt{
		Name:       strings.TrimSpace(in.Name),
		Content:    in.Content,
		PromptType: pt,
		IndustryID: in.IndustryID,
		CompanyID:  in.CompanyID,
		IsActive:   in.IsActive,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if pt != domain.PromptIndustry {
		p.IndustryID = ""
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if pt == domain.PromptCore {
		p.ID = domain.CorePromptID
	} else {
		p.ID = uuid.NewString()
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	if p.IsActive && p.PromptType == domain.PromptIndustry {
		if err := s.repo.SetActive(ctx, p.ID, true, p.IndustryID); err != nil {
			return nil, fmt.Errorf("create prompt: activate: %w", err)
		}
	}
	s.invalidate(ctx)

	s.log.Info().Str("prompt_id", p.ID).Str("prompt_type", string(p.PromptType)).Msg("system prompt created")
	return p, nil
}

func (s *PromptService) Update(ctx context.Context, id string, in ports.UpdatePromptInput) (*domain.SystemPrompt, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.PromptType != nil && *in.PromptType != p.PromptType {
		return nil, domain.ErrPromptTypeImmutable
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.IndustryID != nil && p.PromptType == domain.PromptIndustry {
		p.IndustryID = *in.IndustryID
	}
	activate := false
	if in.IsActive != nil {
		activate = *in.IsActive && !p.IsActive
		p.IsActive = *in.IsActive
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if activate && p.PromptType == domain.PromptIndustry {
		if err := s.repo.SetActive(ctx, p.ID, true, p.IndustryID); err != nil {
			return nil, fmt.Errorf("update prompt: activate: %w", err)
		}
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *PromptService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.Info().Str("prompt_id", id).Msg("system prompt deleted")
	return nil
}

// Activate marks id active. An industry prompt becomes the only active
// prompt of its industry.
func (s *PromptService) Activate(ctx context.Context, id string) (*domain.SystemPrompt, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	exclusive := ""
	if p.PromptType == domain.PromptIndustry {
		exclusive = p.IndustryID
	}
	if err := s.repo.SetActive(ctx, id, true, exclusive); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	p.IsActive = true
	return p, nil
}

func (s *PromptService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Msg("failed to invalidate prompt cache")
	}
}
