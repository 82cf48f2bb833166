package ports

import (
	"context"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// PromptFilter narrows a prompt listing. Empty fields do not filter.
type PromptFilter struct {
	PromptType domain.PromptType
	IndustryID string
	ActiveOnly bool
}

// PromptRepository defines persistence operations for system prompts.
type PromptRepository interface {
	// Create inserts p. Core prompts are stored under domain.CorePromptID;
	// a second core insert returns domain.ErrCorePromptExists.
	Create(ctx context.Context, p *domain.SystemPrompt) error
	FindByID(ctx context.Context, id string) (*domain.SystemPrompt, error)
	List(ctx context.Context, filter PromptFilter) ([]*domain.SystemPrompt, error)
	Update(ctx context.Context, p *domain.SystemPrompt) error
	Delete(ctx context.Context, id string) error

	// SetActive flips isActive on id. When exclusiveIndustry is non-empty
	// every other prompt of that industry is deactivated.
	SetActive(ctx context.Context, id string, active bool, exclusiveIndustry string) error
}

// PromptLayerReader resolves the active prompt of each hierarchy layer.
// Implementations return domain.ErrPromptNotFound when none is active.
type PromptLayerReader interface {
	ActiveCore(ctx context.Context) (*domain.SystemPrompt, error)
	ActiveForIndustry(ctx context.Context, industryID string) (*domain.SystemPrompt, error)
}

// PromptCacheInvalidator drops cached prompt layers after a write.
type PromptCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}
