package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

func newPromptSvc() (*PromptService, *stubPromptRepo) {
	repo := newStubPromptRepo()
	return NewPromptService(repo, repo, zerolog.Nop()), repo
}

func TestPromptService_Create_Core(t *testing.T) {
	svc, repo := newPromptSvc()
	ctx := context.Background()

	p, err := svc.Create(ctx, ports.CreatePromptInput{Name: "Master prompt", Content: "be helpful", IsActive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID != domain.CorePromptID || p.PromptType != domain.PromptCore {
		t.Fatalf("expected inferred core prompt, got %+v", p)
	}
	if repo.invalidated != 1 {
		t.Fatalf("expected cache invalidation, got %d", repo.invalidated)
	}

	_, err = svc.Create(ctx, ports.CreatePromptInput{Name: "Second", Content: "x", PromptType: domain.PromptCore})
	if !errors.Is(err, domain.ErrCorePromptExists) {
		t.Fatalf("expected ErrCorePromptExists, got %v", err)
	}
}

func TestPromptService_Create_Validation(t *testing.T) {
	svc, _ := newPromptSvc()
	ctx := context.Background()

	cases := map[string]ports.CreatePromptInput{
		"empty content":        {Name: "Client notes", Content: " "},
		"industry without id":  {Name: "Plumbing", Content: "x", PromptType: domain.PromptIndustry},
		"unknown type":         {Name: "x", Content: "x", PromptType: "global"},
		"inferred industry id": {Name: "Industry default", Content: "x"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Create(ctx, in); !errors.Is(err, domain.ErrInvalidPrompt) {
				t.Fatalf("expected ErrInvalidPrompt, got %v", err)
			}
		})
	}
}

func TestPromptService_IndustryActivationIsExclusive(t *testing.T) {
	svc, repo := newPromptSvc()
	ctx := context.Background()

	a, err := svc.Create(ctx, ports.CreatePromptInput{
		Name: "Construction v1", Content: "a", PromptType: domain.PromptIndustry, IndustryID: "construction", IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create a: %v", err)
	}
	b, err := svc.Create(ctx, ports.CreatePromptInput{
		Name: "Construction v2", Content: "b", PromptType: domain.PromptIndustry, IndustryID: "construction", IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create b: %v", err)
	}
	other, err := svc.Create(ctx, ports.CreatePromptInput{
		Name: "Plumbing", Content: "c", PromptType: domain.PromptIndustry, IndustryID: "plumbing", IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create other: %v", err)
	}

	if repo.prompts[a.ID].IsActive || !repo.prompts[b.ID].IsActive {
		t.Fatalf("creating an active prompt should deactivate its siblings")
	}

	if _, err := svc.Activate(ctx, a.ID); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !repo.prompts[a.ID].IsActive || repo.prompts[b.ID].IsActive {
		t.Fatalf("activation should be exclusive within the industry")
	}
	if !repo.prompts[other.ID].IsActive {
		t.Fatalf("other industries must be unaffected")
	}

	active, _ := repo.ActiveForIndustry(ctx, "construction")
	if active.ID != a.ID {
		t.Fatalf("expected %s active, got %s", a.ID, active.ID)
	}
}

func TestPromptService_Update(t *testing.T) {
	svc, _ := newPromptSvc()
	ctx := context.Background()

	p, err := svc.Create(ctx, ports.CreatePromptInput{Name: "Client tone", Content: "friendly"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.PromptType != domain.PromptClient {
		t.Fatalf("expected client prompt, got %s", p.PromptType)
	}

	content := "formal"
	updated, err := svc.Update(ctx, p.ID, ports.UpdatePromptInput{Content: &content})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != "formal" || updated.Name != "Client tone" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	core := domain.PromptCore
	if _, err := svc.Update(ctx, p.ID, ports.UpdatePromptInput{PromptType: &core}); !errors.Is(err, domain.ErrPromptTypeImmutable) {
		t.Fatalf("expected ErrPromptTypeImmutable, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing", ports.UpdatePromptInput{Content: &content}); !errors.Is(err, domain.ErrPromptNotFound) {
		t.Fatalf("expected ErrPromptNotFound, got %v", err)
	}
}

func TestPromptService_Delete(t *testing.T) {
	svc, repo := newPromptSvc()
	ctx := context.Background()

	p, _ := svc.Create(ctx, ports.CreatePromptInput{Name: "Client", Content: "x"})
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.prompts[p.ID]; ok {
		t.Fatalf("prompt still stored")
	}
	if err := svc.Delete(ctx, p.ID); !errors.Is(err, domain.ErrPromptNotFound) {
		t.Fatalf("expected ErrPromptNotFound, got %v", err)
	}
}
