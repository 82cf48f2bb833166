package ports

import (
	"context"
	"time"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// CreateQuoteInput carries the fields of a new quote.
type CreateQuoteInput struct {
	ClientID    string
	ClientName  string
	Description string
	Amount      float64
	Date        time.Time
	Status      domain.QuoteStatus
	UserID      string
	CompanyID   string
}

// CreateClientInput carries the fields of a new client.
type CreateClientInput struct {
	CompanyID string
	Name      string
	Email     string
	Phone     string
	Address   string
	Notes     string
}

// QuoteService defines tenant-scoped quote and client operations.
type QuoteService interface {
	ListQuotes(ctx context.Context, companyID string, status domain.QuoteStatus) ([]*domain.Quote, error)
	CreateQuote(ctx context.Context, in CreateQuoteInput) (*domain.Quote, error)
	UpdateQuoteStatus(ctx context.Context, companyID, id string, status domain.QuoteStatus) (*domain.Quote, error)
	ListClients(ctx context.Context, companyID string) ([]*domain.Client, error)
	CreateClient(ctx context.Context, in CreateClientInput) (*domain.Client, error)
}

// IndustryService defines admin operations on industries.
type IndustryService interface {
	List(ctx context.Context) ([]*domain.Industry, error)
	Create(ctx context.Context, ind *domain.Industry) (*domain.Industry, error)
}
