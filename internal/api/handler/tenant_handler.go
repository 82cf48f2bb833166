package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

// IndustryHandler serves the admin industry catalogue.
type IndustryHandler struct {
	industries ports.IndustryService
}

func NewIndustryHandler(industries ports.IndustryService) *IndustryHandler {
	return &IndustryHandler{industries: industries}
}

// List returns every industry.
//
// @Summary      List industries
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  industryListResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/industries [get]
func (h *IndustryHandler) List(c echo.Context) error {
	list, err := h.industries.List(c.Request().Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Industry{}
	}
	return c.JSON(http.StatusOK, industryListResponse{Industries: list})
}

// Create adds an industry.
//
// @Summary      Create an industry
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIndustryRequest  true  "Industry"
// @Success      201   {object}  domain.Industry
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /admin/industries [post]
func (h *IndustryHandler) Create(c echo.Context) error {
	var req createIndustryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ind, err := h.industries.Create(c.Request().Context(), &domain.Industry{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		IsActive:    true,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ind)
}
