package handler

import (
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

type createIndustryRequest struct {
	Name        string `json:"name"        validate:"required,max=120"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type createClientRequest struct {
	Name    string `json:"name"    validate:"required,max=200"`
	Email   string `json:"email"   validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type createQuoteRequest struct {
	ClientID    string     `json:"clientId"`
	ClientName  string     `json:"clientName"  validate:"required_without=ClientID"`
	Description string     `json:"description" validate:"required"`
	Amount      float64    `json:"amount"      validate:"gte=0"`
	Date        *time.Time `json:"date"`
	Status      string     `json:"status"      validate:"omitempty,oneof=draft pending sent approved accepted rejected invoiced"`
}

type updateQuoteStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft pending sent approved accepted rejected invoiced"`
}

type industryListResponse struct {
	Industries []*domain.Industry `json:"industries"`
}

type clientListResponse struct {
	Clients []*domain.Client `json:"clients"`
}

type quoteListResponse struct {
	Quotes []*domain.Quote `json:"quotes"`
}
