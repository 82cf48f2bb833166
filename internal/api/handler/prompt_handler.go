package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

type PromptHandler struct {
	prompts ports.PromptService
}

func NewPromptHandler(prompts ports.PromptService) *PromptHandler {
	return &PromptHandler{prompts: prompts}
}

// List returns system prompts, optionally filtered by type and industry.
//
// @Summary      List system prompts
// @Tags         system-prompts
// @Produce      json
// @Security     BearerAuth
// @Param        type        query     string  false  "core, industry or client"
// @Param        industryId  query     string  false  "Industry filter"
// @Success      200         {object}  promptListResponse
// @Failure      400         {object}  map[string]string
// @Router       /system-prompts [get]
func (h *PromptHandler) List(c echo.Context) error {
	filter, err := promptFilter(c)
	if err != nil {
		return err
	}
	return h.list(c, filter)
}

// Active returns only active prompts.
//
// @Summary      List active system prompts
// @Tags         system-prompts
// @Produce      json
// @Security     BearerAuth
// @Param        type        query     string  false  "core, industry or client"
// @Param        industryId  query     string  false  "Industry filter"
// @Success      200         {object}  promptListResponse
// @Router       /system-prompts/active [get]
func (h *PromptHandler) Active(c echo.Context) error {
	filter, err := promptFilter(c)
	if err != nil {
		return err
	}
	filter.ActiveOnly = true
	return h.list(c, filter)
}

func (h *PromptHandler) list(c echo.Context, filter ports.PromptFilter) error {
	prompts, err := h.prompts.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if prompts == nil {
		prompts = []*domain.SystemPrompt{}
	}
	return c.JSON(http.StatusOK, promptListResponse{Prompts: prompts})
}

// Get returns a single system prompt.
//
// @Summary      Get a system prompt
// @Tags         system-prompts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Prompt ID"
// @Success      200  {object}  domain.SystemPrompt
// @Failure      404  {object}  map[string]string
// @Router       /system-prompts/{id} [get]
func (h *PromptHandler) Get(c echo.Context) error {
	p, err := h.prompts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create stores a new system prompt. Only one core prompt may exist.
//
// @Summary      Create a system prompt
// @Tags         system-prompts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPromptRequest  true  "Prompt"
// @Success      201   {object}  domain.SystemPrompt
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /system-prompts [post]
func (h *PromptHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createPromptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	p, err := h.prompts.Create(c.Request().Context(), ports.CreatePromptInput{
		Name:       req.Name,
		Content:    req.Content,
		PromptType: domain.PromptType(req.PromptType),
		IndustryID: req.IndustryID,
		CompanyID:  id.CompanyID,
		IsActive:   active,
		CreatedBy:  id.UserID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update changes prompt fields. The prompt type cannot change.
//
// @Summary      Update a system prompt
// @Tags         system-prompts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Prompt ID"
// @Param        body  body      updatePromptRequest  true  "Fields to change"
// @Success      200   {object}  domain.SystemPrompt
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /system-prompts/{id} [put]
func (h *PromptHandler) Update(c echo.Context) error {
	var req updatePromptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.UpdatePromptInput{
		Name:       req.Name,
		Content:    req.Content,
		IndustryID: req.IndustryID,
		IsActive:   req.IsActive,
	}
	if req.PromptType != nil {
		t := domain.PromptType(*req.PromptType)
		in.PromptType = &t
	}

	p, err := h.prompts.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a system prompt.
//
// @Summary      Delete a system prompt
// @Tags         system-prompts
// @Security     BearerAuth
// @Param        id   path  string  true  "Prompt ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /system-prompts/{id} [delete]
func (h *PromptHandler) Delete(c echo.Context) error {
	if err := h.prompts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Activate marks a prompt active. Activating an industry prompt
// deactivates the other prompts of the same industry.
//
// @Summary      Activate a system prompt
// @Tags         system-prompts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Prompt ID"
// @Success      200  {object}  domain.SystemPrompt
// @Failure      404  {object}  map[string]string
// @Router       /system-prompts/{id}/activate [post]
func (h *PromptHandler) Activate(c echo.Context) error {
	p, err := h.prompts.Activate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func promptFilter(c echo.Context) (ports.PromptFilter, error) {
	filter := ports.PromptFilter{
		PromptType: domain.PromptType(c.QueryParam("type")),
		IndustryID: c.QueryParam("industryId"),
	}
	if filter.PromptType != "" && !filter.PromptType.Valid() {
		return ports.PromptFilter{}, echo.NewHTTPError(http.StatusBadRequest, "type must be one of: core industry client")
	}
	return filter, nil
}
