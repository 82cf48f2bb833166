// Package ai implements ports.CompletionProvider against an OpenAI-compatible
// chat completions endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

const maxErrorBody = 4 << 10

// Config configures an OpenAIClient.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAIClient sends composed messages to {BaseURL}/chat/completions.
// Any API speaking the OpenAI wire format works (OpenAI, OpenRouter,
// vLLM, Ollama).
type OpenAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewOpenAIClient(cfg Config, httpClient *http.Client) *OpenAIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &OpenAIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete returns the first choice of a non-streaming completion. Every
// failure wraps domain.ErrCompletionUnavailable.
func (c *OpenAIClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	wire := chatRequest{Model: c.model, Messages: make([]chatMessage, 0, len(messages))}
	for _, m := range messages {
		wire.Messages = append(wire.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", domain.ErrCompletionUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", domain.ErrCompletionUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", domain.ErrCompletionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: HTTP %d: %s", domain.ErrCompletionUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", domain.ErrCompletionUnavailable, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: %s: %s", domain.ErrCompletionUnavailable, out.Error.Type, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", domain.ErrCompletionUnavailable)
	}
	return out.Choices[0].Message.Content, nil
}

// Disabled is the provider used when no API key is configured.
type Disabled struct{}

func (Disabled) Complete(context.Context, []domain.Message) (string, error) {
	return "", fmt.Errorf("%w: no provider configured", domain.ErrCompletionUnavailable)
}
