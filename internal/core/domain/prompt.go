package domain

import (
	"strings"
	"time"
)

// PromptType is the layer a system prompt belongs to.
type PromptType string

const (
	PromptCore     PromptType = "core"
	PromptIndustry PromptType = "industry"
	PromptClient   PromptType = "client"
)

// CorePromptID is the fixed identifier of the single core prompt.
const CorePromptID = "core"

// Valid reports whether t is a known prompt type.
func (t PromptType) Valid() bool {
	switch t {
	case PromptCore, PromptIndustry, PromptClient:
		return true
	}
	return false
}

// InferPromptType categorizes a prompt by its name. Legacy records were
// created without a type; only used when the type is missing.
func InferPromptType(name string) PromptType {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "core"), strings.Contains(n, "master"):
		return PromptCore
	case strings.Contains(n, "industry"):
		return PromptIndustry
	default:
		return PromptClient
	}
}

// SystemPrompt is one configurable layer of the AI system prompt.
type SystemPrompt struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	PromptType PromptType `json:"promptType"`
	IndustryID string     `json:"industryId,omitempty"`
	CompanyID  string     `json:"companyId,omitempty"`
	IsActive   bool       `json:"isActive"`
	CreatedBy  string     `json:"createdBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Validate checks the structural invariants of a prompt.
func (p *SystemPrompt) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Content) == "" {
		return ErrInvalidPrompt
	}
	if !p.PromptType.Valid() {
		return ErrInvalidPrompt
	}
	if (p.PromptType == PromptIndustry) != (p.IndustryID != "") {
		return ErrInvalidPrompt
	}
	return nil
}

// Industry groups companies and owns industry-level prompts.
type Industry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	IsActive    bool   `json:"isActive"`
}
