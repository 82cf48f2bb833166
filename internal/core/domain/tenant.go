package domain

import "time"

// Company is a tenant. CompanyID scopes users, clients, quotes and prompts.
type Company struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IndustryID string    `json:"industryId,omitempty"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Client is a customer of a company.
type Client struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
