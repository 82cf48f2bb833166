package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

type stubComposer struct {
	last ports.ComposeInput
}

func (s *stubComposer) Compose(_ context.Context, in ports.ComposeInput) ([]domain.Message, error) {
	s.last = in
	return []domain.Message{
		{Role: domain.MessageRoleSystem, Layer: domain.LayerCore, Content: "core"},
		{Role: domain.MessageRoleUser, Layer: domain.LayerUser, Content: in.UserMessage},
	}, nil
}

type stubGenerator struct {
	err error
}

func (s stubGenerator) Generate(_ context.Context, in ports.ComposeInput) (*ports.GenerationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.GenerationResult{
		Content: "Quote for " + in.UserMessage,
		Layers:  []domain.PromptLayer{domain.LayerCore, domain.LayerUser},
	}, nil
}

func TestGenerateHandler_Generate(t *testing.T) {
	e := newTestEcho()
	h := NewGenerateHandler(&stubComposer{}, stubGenerator{})

	rec := httptest.NewRecorder()
	if err := h.Generate(tenantContext(e, jsonRequest(http.MethodPost, "/api/ai/generate", `{"message":"a deck"}`), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Content != "Quote for a deck" || len(resp.Layers) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestGenerateHandler_ProviderFailure(t *testing.T) {
	e := newTestEcho()
	h := NewGenerateHandler(&stubComposer{}, stubGenerator{err: domain.ErrCompletionUnavailable})

	err := h.Generate(tenantContext(e, jsonRequest(http.MethodPost, "/api/ai/generate", `{"message":"a deck"}`), httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrCompletionUnavailable) {
		t.Fatalf("expected ErrCompletionUnavailable, got %v", err)
	}
}

func TestGenerateHandler_MessageRequired(t *testing.T) {
	e := newTestEcho()
	h := NewGenerateHandler(&stubComposer{}, stubGenerator{})

	err := h.Generate(tenantContext(e, jsonRequest(http.MethodPost, "/api/ai/generate", `{"clientId":"c-1"}`), httptest.NewRecorder()))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestGenerateHandler_ComposeUsesTokenCompany(t *testing.T) {
	e := newTestEcho()
	composer := &stubComposer{}
	h := NewGenerateHandler(composer, stubGenerator{})

	rec := httptest.NewRecorder()
	if err := h.Compose(tenantContext(e, jsonRequest(http.MethodPost, "/api/ai/compose", `{"message":"hi","clientId":"c-1"}`), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if composer.last.CompanyID != "acme" || composer.last.ClientID != "c-1" {
		t.Fatalf("unexpected compose input %+v", composer.last)
	}

	var resp composeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Messages) != 2 || resp.Messages[1].Content != "hi" {
		t.Fatalf("unexpected messages %+v", resp.Messages)
	}
}
