package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quotecraft/quoting-system/internal/api/metrics"
	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

// QuoteHandler serves the tenant-scoped client and quote routes. The
// company always comes from the caller's token, never from the payload.
type QuoteHandler struct {
	quotes ports.QuoteService
}

func NewQuoteHandler(quotes ports.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// ListClients returns the clients of the caller's company.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  clientListResponse
// @Failure      403  {object}  map[string]string
// @Router       /clients [get]
func (h *QuoteHandler) ListClients(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	clients, err := h.quotes.ListClients(c.Request().Context(), id.CompanyID)
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []*domain.Client{}
	}
	return c.JSON(http.StatusOK, clientListResponse{Clients: clients})
}

// CreateClient adds a client to the caller's company.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client"
// @Success      201   {object}  domain.Client
// @Failure      400   {object}  map[string]string
// @Router       /clients [post]
func (h *QuoteHandler) CreateClient(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client, err := h.quotes.CreateClient(c.Request().Context(), ports.CreateClientInput{
		CompanyID: id.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Notes:     req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

// ListQuotes returns the company's quotes, newest first.
//
// @Summary      List quotes
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Success      200     {object}  quoteListResponse
// @Failure      400     {object}  map[string]string
// @Router       /quotes [get]
func (h *QuoteHandler) ListQuotes(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	quotes, err := h.quotes.ListQuotes(c.Request().Context(), id.CompanyID, domain.QuoteStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}
	if quotes == nil {
		quotes = []*domain.Quote{}
	}
	return c.JSON(http.StatusOK, quoteListResponse{Quotes: quotes})
}

// CreateQuote issues a new quote numbered Q-<yyyymmdd>-<hex>.
//
// @Summary      Create a quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createQuoteRequest  true  "Quote"
// @Success      201   {object}  domain.Quote
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /quotes [post]
func (h *QuoteHandler) CreateQuote(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createQuoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.CreateQuoteInput{
		ClientID:    req.ClientID,
		ClientName:  req.ClientName,
		Description: req.Description,
		Amount:      req.Amount,
		Status:      domain.QuoteStatus(req.Status),
		UserID:      id.UserID,
		CompanyID:   id.CompanyID,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}

	q, err := h.quotes.CreateQuote(c.Request().Context(), in)
	if err != nil {
		return err
	}
	metrics.QuotesCreatedTotal.WithLabelValues(string(q.Status)).Inc()
	return c.JSON(http.StatusCreated, q)
}

// UpdateQuoteStatus sets a quote's status. Any valid status may follow any
// other.
//
// @Summary      Update quote status
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Quote ID"
// @Param        body  body      updateQuoteStatusRequest  true  "New status"
// @Success      200   {object}  domain.Quote
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /quotes/{id}/status [patch]
func (h *QuoteHandler) UpdateQuoteStatus(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateQuoteStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	q, err := h.quotes.UpdateQuoteStatus(c.Request().Context(), id.CompanyID, c.Param("id"), domain.QuoteStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}
