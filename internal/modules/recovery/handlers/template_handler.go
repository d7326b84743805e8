package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oraclewa/oraclewa/internal/template"
)

type TemplateHandler struct {
	store  *template.Store
	engine *template.Engine
}

func NewTemplateHandler(store *template.Store, engine *template.Engine) *TemplateHandler {
	return &TemplateHandler{store: store, engine: engine}
}

// ListSets returns every loaded variant set with per-variant weights and
// the share of selections each weight implies.
func (h *TemplateHandler) ListSets(c *fiber.Ctx) error {
	sets := h.store.Snapshot()

	out := make([]fiber.Map, 0, len(sets))
	for _, set := range sets {
		total := set.TotalWeight()
		variants := make([]fiber.Map, 0, len(set.Variants))
		for _, v := range set.Variants {
			variants = append(variants, fiber.Map{
				"id":     v.ID,
				"weight": v.Weight,
				"share":  float64(v.Weight) / float64(total),
			})
		}
		out = append(out, fiber.Map{
			"client_id": set.ClientID,
			"event":     set.Event,
			"variants":  variants,
		})
	}

	return c.JSON(fiber.Map{"sets": out})
}

// Reload re-reads the variant provider and swaps the snapshot.
func (h *TemplateHandler) Reload(c *fiber.Ctx) error {
	if err := h.engine.Reload(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"reloaded": true})
}

type previewRequest struct {
	VariantID    string                 `json:"variant_id"`
	CustomerName string                 `json:"customer_name"`
	ProductName  string                 `json:"product_name"`
	Total        float64                `json:"total"`
	CustomFields map[string]interface{} `json:"custom_fields"`
}

// Preview renders a template for support tooling: a specific variant when
// variant_id is given, the full resolution chain otherwise.
func (h *TemplateHandler) Preview(c *fiber.Ctx) error {
	clientSlug := c.Params("client")
	event := template.EventType(c.Params("event"))

	var req previewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON payload",
		})
	}
	if req.CustomerName == "" {
		req.CustomerName = "Cliente Teste"
	}
	if req.ProductName == "" {
		req.ProductName = "Produto Teste"
	}

	rctx := &template.RenderContext{
		User:    template.User{Name: req.CustomerName, Phone: "5511999999999"},
		Product: template.Product{Title: req.ProductName},
		Order:   template.Order{ID: "preview", Total: req.Total},
		Custom:  req.CustomFields,
	}

	var (
		msg *template.RenderedMessage
		err error
	)
	if req.VariantID != "" {
		msg, err = h.engine.RenderVariant(clientSlug, event, req.VariantID, rctx)
	} else {
		msg, err = h.engine.Render(clientSlug, event, rctx)
	}
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(msg)
}
