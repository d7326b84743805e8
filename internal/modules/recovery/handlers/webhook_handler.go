package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oraclewa/oraclewa/internal/modules/recovery/services"
	"github.com/oraclewa/oraclewa/internal/template"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
}

func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// Legacy upstream event names map onto the engine's event types.
var eventAliases = map[string]template.EventType{
	"order_paid":         template.EventOrderPaid,
	"order-paid":         template.EventOrderPaid,
	"temp-order-paid":    template.EventOrderPaid,
	"order_expired":      template.EventOrderExpired,
	"order-expired":      template.EventOrderExpired,
	"temp-order-expired": template.EventOrderExpired,
	"cart_abandoned":     template.EventCartAbandoned,
	"cart-abandoned":     template.EventCartAbandoned,
	"broadcast":          template.EventBroadcast,
	"message_received":   template.EventMessageReceived,
}

// HandleEvent receives POST /webhook/:client/:event with the upstream
// payload as JSON body.
func (h *WebhookHandler) HandleEvent(c *fiber.Ctx) error {
	clientSlug := c.Params("client")
	rawEvent := strings.ToLower(c.Params("event"))

	event, ok := eventAliases[rawEvent]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown event type: " + rawEvent,
		})
	}

	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON payload",
		})
	}

	result, err := h.webhookService.ProcessEvent(c.Context(), clientSlug, event, payload)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"result":  result,
	})
}
