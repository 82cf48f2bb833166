package ports

import (
	"context"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// IndustryRepository defines persistence operations for industries.
type IndustryRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Industry, error)
	List(ctx context.Context) ([]*domain.Industry, error)
	Create(ctx context.Context, ind *domain.Industry) error
}

// CompanyRepository defines persistence operations for tenants.
type CompanyRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Company, error)
	Create(ctx context.Context, c *domain.Company) error
}

// ClientRepository defines persistence operations for clients. Every call
// is scoped by companyID.
type ClientRepository interface {
	FindByID(ctx context.Context, companyID, id string) (*domain.Client, error)
	List(ctx context.Context, companyID string) ([]*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
}

// QuoteRepository defines persistence operations for quotes. Every call is
// scoped by companyID.
type QuoteRepository interface {
	Create(ctx context.Context, q *domain.Quote) error
	FindByID(ctx context.Context, companyID, id string) (*domain.Quote, error)
	List(ctx context.Context, companyID string, status domain.QuoteStatus) ([]*domain.Quote, error)
	// RecentForClient returns up to limit quotes of the client, newest first.
	RecentForClient(ctx context.Context, companyID, clientID string, limit int) ([]*domain.Quote, error)
	UpdateStatus(ctx context.Context, companyID, id string, status domain.QuoteStatus) (*domain.Quote, error)
}
