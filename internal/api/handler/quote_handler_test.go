package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quotecraft/quoting-system/internal/api/middleware"
	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

type stubQuoteService struct {
	lastCompany string
	lastQuote   ports.CreateQuoteInput
	lastClient  ports.CreateClientInput
	lastStatus  domain.QuoteStatus
}

func (s *stubQuoteService) ListQuotes(_ context.Context, companyID string, status domain.QuoteStatus) ([]*domain.Quote, error) {
	s.lastCompany, s.lastStatus = companyID, status
	return []*domain.Quote{{ID: "q-1", CompanyID: companyID}}, nil
}

func (s *stubQuoteService) CreateQuote(_ context.Context, in ports.CreateQuoteInput) (*domain.Quote, error) {
	s.lastQuote = in
	return &domain.Quote{ID: "q-1", QuoteNumber: "Q-20240301-ABCDEF", Status: domain.QuoteDraft, CompanyID: in.CompanyID}, nil
}

func (s *stubQuoteService) UpdateQuoteStatus(_ context.Context, companyID, id string, status domain.QuoteStatus) (*domain.Quote, error) {
	s.lastCompany, s.lastStatus = companyID, status
	if id != "q-1" {
		return nil, domain.ErrQuoteNotFound
	}
	return &domain.Quote{ID: id, Status: status}, nil
}

func (s *stubQuoteService) ListClients(_ context.Context, companyID string) ([]*domain.Client, error) {
	s.lastCompany = companyID
	return nil, nil
}

func (s *stubQuoteService) CreateClient(_ context.Context, in ports.CreateClientInput) (*domain.Client, error) {
	s.lastClient = in
	return &domain.Client{ID: "c-1", CompanyID: in.CompanyID, Name: in.Name}, nil
}

func tenantContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, "user-1")
	c.Set(middleware.CtxRole, domain.RoleMember)
	c.Set(middleware.CtxCompanyID, "acme")
	return c
}

func TestQuoteHandler_CreateQuoteUsesTokenCompany(t *testing.T) {
	e := newTestEcho()
	svc := &stubQuoteService{}
	h := NewQuoteHandler(svc)

	rec := httptest.NewRecorder()
	body := `{"clientName":"Bob","description":"Deck","amount":1200.5,"companyId":"evil"}`
	if err := h.CreateQuote(tenantContext(e, jsonRequest(http.MethodPost, "/api/quotes", body), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.lastQuote.CompanyID != "acme" || svc.lastQuote.UserID != "user-1" || svc.lastQuote.Amount != 1200.5 {
		t.Fatalf("unexpected create input %+v", svc.lastQuote)
	}
}

func TestQuoteHandler_CreateQuoteValidation(t *testing.T) {
	e := newTestEcho()
	h := NewQuoteHandler(&stubQuoteService{})

	tests := []struct {
		name string
		body string
	}{
		{"missing client", `{"description":"Deck","amount":1}`},
		{"negative amount", `{"clientName":"Bob","description":"Deck","amount":-1}`},
		{"unknown status", `{"clientName":"Bob","description":"Deck","amount":1,"status":"lost"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.CreateQuote(tenantContext(e, jsonRequest(http.MethodPost, "/api/quotes", tt.body), httptest.NewRecorder()))
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
		})
	}
}

func TestQuoteHandler_ListQuotesStatusFilter(t *testing.T) {
	e := newTestEcho()
	svc := &stubQuoteService{}
	h := NewQuoteHandler(svc)

	rec := httptest.NewRecorder()
	if err := h.ListQuotes(tenantContext(e, httptest.NewRequest(http.MethodGet, "/api/quotes?status=sent", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.lastCompany != "acme" || svc.lastStatus != domain.QuoteSent {
		t.Fatalf("unexpected args %q %q", svc.lastCompany, svc.lastStatus)
	}
}

func TestQuoteHandler_UpdateStatus(t *testing.T) {
	e := newTestEcho()
	svc := &stubQuoteService{}
	h := NewQuoteHandler(svc)

	rec := httptest.NewRecorder()
	c := tenantContext(e, jsonRequest(http.MethodPatch, "/api/quotes/q-1/status", `{"status":"approved"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("q-1")
	if err := h.UpdateQuoteStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.lastStatus != domain.QuoteApproved {
		t.Fatalf("expected approved, got %q", svc.lastStatus)
	}

	c = tenantContext(e, jsonRequest(http.MethodPatch, "/api/quotes/q-9/status", `{"status":"approved"}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("q-9")
	if err := h.UpdateQuoteStatus(c); !errors.Is(err, domain.ErrQuoteNotFound) {
		t.Fatalf("expected ErrQuoteNotFound, got %v", err)
	}
}

func TestQuoteHandler_ClientsRequireIdentity(t *testing.T) {
	e := newTestEcho()
	h := NewQuoteHandler(&stubQuoteService{})

	err := h.ListClients(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/clients", nil), httptest.NewRecorder()))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestQuoteHandler_CreateClient(t *testing.T) {
	e := newTestEcho()
	svc := &stubQuoteService{}
	h := NewQuoteHandler(svc)

	rec := httptest.NewRecorder()
	body := `{"name":"Bob's Builders","email":"bob@example.com","phone":"555-0100"}`
	if err := h.CreateClient(tenantContext(e, jsonRequest(http.MethodPost, "/api/clients", body), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.lastClient.CompanyID != "acme" || svc.lastClient.Phone != "555-0100" {
		t.Fatalf("unexpected client input %+v", svc.lastClient)
	}
}
