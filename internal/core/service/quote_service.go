package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

// QuoteService implements tenant-scoped quote and client operations.
type QuoteService struct {
	quotes  ports.QuoteRepository
	clients ports.ClientRepository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewQuoteService(quotes ports.QuoteRepository, clients ports.ClientRepository, logger zerolog.Logger) *QuoteService {
	return &QuoteService{quotes: quotes, clients: clients, logger: logger, now: time.Now}
}

func (s *QuoteService) ListQuotes(ctx context.Context, companyID string, status domain.QuoteStatus) ([]*domain.Quote, error) {
	if companyID == "" {
		return nil, domain.ErrForbidden
	}
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidQuoteStatus
	}
	return s.quotes.List(ctx, companyID, status)
}

// CreateQuote stores a quote for the caller's company. When ClientID is
// set the client must belong to the same company.
func (s *QuoteService) CreateQuote(ctx context.Context, in ports.CreateQuoteInput) (*domain.Quote, error) {
	if in.CompanyID == "" {
		return nil, domain.ErrForbidden
	}
	status := in.Status
	if status == "" {
		status = domain.QuoteDraft
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidQuoteStatus
	}
	if in.Amount < 0 {
		return nil, domain.ErrInvalidQuote
	}

	clientName := strings.TrimSpace(in.ClientName)
	if in.ClientID != "" {
		client, err := s.clients.FindByID(ctx, in.CompanyID, in.ClientID)
		if err != nil {
			return nil, err
		}
		clientName = client.Name
	}
	if clientName == "" {
		return nil, domain.ErrInvalidQuote
	}

	now := s.now().UTC()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	q := &domain.Quote{
		ID:          uuid.NewString(),
		QuoteNumber: generateQuoteNumber(now),
		ClientID:    in.ClientID,
		ClientName:  clientName,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        date.UTC(),
		Status:      status,
		UserID:      in.UserID,
		CompanyID:   in.CompanyID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.quotes.Create(ctx, q); err != nil {
		s.logger.Error().Err(err).Msg("failed to create quote")
		return nil, err
	}

	s.logger.Info().Str("quote_number", q.QuoteNumber).Str("company_id", q.CompanyID).Msg("quote created")
	return q, nil
}

func (s *QuoteService) UpdateQuoteStatus(ctx context.Context, companyID, id string, status domain.QuoteStatus) (*domain.Quote, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidQuoteStatus
	}
	return s.quotes.UpdateStatus(ctx, companyID, id, status)
}

func (s *QuoteService) ListClients(ctx context.Context, companyID string) ([]*domain.Client, error) {
	if companyID == "" {
		return nil, domain.ErrForbidden
	}
	return s.clients.List(ctx, companyID)
}

func (s *QuoteService) CreateClient(ctx context.Context, in ports.CreateClientInput) (*domain.Client, error) {
	if in.CompanyID == "" {
		return nil, domain.ErrForbidden
	}
	c := &domain.Client{
		ID:        uuid.NewString(),
		CompanyID: in.CompanyID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     in.Phone,
		Address:   in.Address,
		Notes:     in.Notes,
		CreatedAt: s.now().UTC(),
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// generateQuoteNumber returns a quote number in the format Q-YYYYMMDD-XXXXXX.
func generateQuoteNumber(now time.Time) string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("Q-%s-%06X", now.Format("20060102"), now.UnixNano()&0xFFFFFF)
	}
	return fmt.Sprintf("Q-%s-%06X", now.Format("20060102"), b)
}

// IndustryService implements admin operations on industries.
type IndustryService struct {
	repo ports.IndustryRepository
}

func NewIndustryService(repo ports.IndustryRepository) *IndustryService {
	return &IndustryService{repo: repo}
}

func (s *IndustryService) List(ctx context.Context) ([]*domain.Industry, error) {
	return s.repo.List(ctx)
}

func (s *IndustryService) Create(ctx context.Context, ind *domain.Industry) (*domain.Industry, error) {
	if strings.TrimSpace(ind.Name) == "" {
		return nil, domain.ErrInvalidIndustry
	}
	if ind.ID == "" {
		ind.ID = uuid.NewString()
	}
	if err := s.repo.Create(ctx, ind); err != nil {
		return nil, err
	}
	return ind, nil
}
