package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quotecraft/quoting-system/internal/api/metrics"
	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

type generateRequest struct {
	Message  string `json:"message"  validate:"required"`
	ClientID string `json:"clientId"`
}

type generateResponse struct {
	Content string               `json:"content"`
	Layers  []domain.PromptLayer `json:"layers"`
}

type composeResponse struct {
	Messages []domain.Message `json:"messages"`
}

// GenerateHandler serves AI generation and its compose-only preview.
type GenerateHandler struct {
	composer  ports.PromptComposer
	generator ports.GenerationService
}

func NewGenerateHandler(composer ports.PromptComposer, generator ports.GenerationService) *GenerateHandler {
	return &GenerateHandler{composer: composer, generator: generator}
}

// Generate composes the layered prompt for the caller's company and
// returns the provider's completion.
//
// @Summary      Generate text
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      generateRequest  true  "User message and optional client"
// @Success      200   {object}  generateResponse
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /ai/generate [post]
func (h *GenerateHandler) Generate(c echo.Context) error {
	in, err := composeInput(c)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := h.generator.Generate(c.Request().Context(), in)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.GenerationDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	countLayers(res.Layers)
	return c.JSON(http.StatusOK, generateResponse{Content: res.Content, Layers: res.Layers})
}

// Compose returns the layered messages without calling the provider.
//
// @Summary      Preview prompt composition
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      generateRequest  true  "User message and optional client"
// @Success      200   {object}  composeResponse
// @Failure      400   {object}  map[string]string
// @Router       /ai/compose [post]
func (h *GenerateHandler) Compose(c echo.Context) error {
	in, err := composeInput(c)
	if err != nil {
		return err
	}

	msgs, err := h.composer.Compose(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, composeResponse{Messages: msgs})
}

func composeInput(c echo.Context) (ports.ComposeInput, error) {
	id, err := ctxIdentity(c)
	if err != nil {
		return ports.ComposeInput{}, err
	}

	var req generateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return ports.ComposeInput{}, err
	}

	return ports.ComposeInput{
		CompanyID:   id.CompanyID,
		ClientID:    req.ClientID,
		UserMessage: req.Message,
	}, nil
}

func countLayers(layers []domain.PromptLayer) {
	for _, l := range layers {
		metrics.PromptLayersComposedTotal.WithLabelValues(string(l)).Inc()
	}
}
