package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Deck: $2,400"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL + "/v1/", APIKey: "key", Model: "m", Timeout: time.Second}, nil)
	out, err := c.Complete(context.Background(), []domain.Message{
		{Role: domain.MessageRoleSystem, Layer: domain.LayerCore, Content: "core"},
		{Role: domain.MessageRoleUser, Layer: domain.LayerUser, Content: "deck"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Deck: $2,400" {
		t.Fatalf("unexpected output %q", out)
	}
	if got.Model != "m" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "deck" {
		t.Fatalf("unexpected wire request: %+v", got)
	}
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"http error", http.StatusTooManyRequests, `{"error":{"type":"rate_limit","message":"slow down"}}`},
		{"empty choices", http.StatusOK, `{"choices":[]}`},
		{"error body", http.StatusOK, `{"error":{"type":"server","message":"boom"}}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			c := NewOpenAIClient(Config{BaseURL: srv.URL}, srv.Client())
			if _, err := c.Complete(context.Background(), nil); !errors.Is(err, domain.ErrCompletionUnavailable) {
				t.Fatalf("expected ErrCompletionUnavailable, got %v", err)
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	if _, err := (Disabled{}).Complete(context.Background(), nil); !errors.Is(err, domain.ErrCompletionUnavailable) {
		t.Fatalf("expected ErrCompletionUnavailable, got %v", err)
	}
}
