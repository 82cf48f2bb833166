package handler

import "github.com/quotecraft/quoting-system/internal/core/domain"

type createPromptRequest struct {
	Name       string `json:"name"       validate:"required,max=200"`
	Content    string `json:"content"    validate:"required"`
	PromptType string `json:"promptType" validate:"omitempty,oneof=core industry client"`
	IndustryID string `json:"industryId"`
	IsActive   *bool  `json:"isActive"`
}

type updatePromptRequest struct {
	Name       *string `json:"name"       validate:"omitempty,max=200"`
	Content    *string `json:"content"`
	PromptType *string `json:"promptType" validate:"omitempty,oneof=core industry client"`
	IndustryID *string `json:"industryId"`
	IsActive   *bool   `json:"isActive"`
}

type promptListResponse struct {
	Prompts []*domain.SystemPrompt `json:"prompts"`
}
