package ports

import (
	"context"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// CreatePromptInput carries the fields of a new system prompt. An empty
// PromptType falls back to name-based inference.
type CreatePromptInput struct {
	Name       string
	Content    string
	PromptType domain.PromptType
	IndustryID string
	CompanyID  string
	IsActive   bool
	CreatedBy  string
}

// UpdatePromptInput carries an edit. Nil fields are left unchanged.
type UpdatePromptInput struct {
	Name       *string
	Content    *string
	PromptType *domain.PromptType
	IndustryID *string
	IsActive   *bool
}

// PromptService manages the prompt hierarchy.
type PromptService interface {
	List(ctx context.Context, filter PromptFilter) ([]*domain.SystemPrompt, error)
	Get(ctx context.Context, id string) (*domain.SystemPrompt, error)
	Create(ctx context.Context, in CreatePromptInput) (*domain.SystemPrompt, error)
	Update(ctx context.Context, id string, in UpdatePromptInput) (*domain.SystemPrompt, error)
	Delete(ctx context.Context, id string) error
	Activate(ctx context.Context, id string) (*domain.SystemPrompt, error)
}

// ComposeInput identifies the tenant, optional client and the live user
// message for a composition.
type ComposeInput struct {
	CompanyID   string
	ClientID    string
	UserMessage string
}

// PromptComposer assembles the layered system prompt.
type PromptComposer interface {
	Compose(ctx context.Context, in ComposeInput) ([]domain.Message, error)
}

// CompletionProvider is an opaque text-completion backend.
type CompletionProvider interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}

// GenerationResult is the output of an AI generation call.
type GenerationResult struct {
	Content string
	Layers  []domain.PromptLayer
}

// GenerationService composes the prompt and calls the provider.
type GenerationService interface {
	Generate(ctx context.Context, in ComposeInput) (*GenerationResult, error)
}
