package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

// GenerationService composes the layered prompt and hands it to the
// completion provider.
type GenerationService struct {
	composer ports.PromptComposer
	provider ports.CompletionProvider
	log      zerolog.Logger
}

func NewGenerationService(composer ports.PromptComposer, provider ports.CompletionProvider, log zerolog.Logger) *GenerationService {
	return &GenerationService{composer: composer, provider: provider, log: log}
}

func (s *GenerationService) Generate(ctx context.Context, in ports.ComposeInput) (*ports.GenerationResult, error) {
	if strings.TrimSpace(in.UserMessage) == "" {
		return nil, fmt.Errorf("generate: %w", domain.ErrInvalidPrompt)
	}

	msgs, err := s.composer.Compose(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("generate: compose: %w", err)
	}

	layers := make([]domain.PromptLayer, 0, len(msgs))
	for _, m := range msgs {
		layers = append(layers, m.Layer)
	}

	content, err := s.provider.Complete(ctx, msgs)
	if err != nil {
		s.log.Error().Err(err).Str("company_id", in.CompanyID).Msg("completion failed")
		if errors.Is(err, domain.ErrCompletionUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletionUnavailable, err)
	}

	return &ports.GenerationResult{Content: content, Layers: layers}, nil
}
