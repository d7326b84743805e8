package handlers

import (
	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/oraclewa/oraclewa/internal/core/gateway"
	"github.com/oraclewa/oraclewa/internal/modules/recovery/models"
	"github.com/oraclewa/oraclewa/internal/modules/recovery/repositories"
)

type InstanceHandler struct {
	instanceRepo repositories.InstanceRepo
}

func NewInstanceHandler(instanceRepo repositories.InstanceRepo) *InstanceHandler {
	return &InstanceHandler{instanceRepo: instanceRepo}
}

// List returns the configured instances.
func (h *InstanceHandler) List(c *fiber.Ctx) error {
	instances, err := h.instanceRepo.GetActive()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"instances": instances})
}

// QRCode fetches the instance's current pairing code from its gateway and
// returns it rendered as a PNG, for the connection flow in the dashboard.
func (h *InstanceHandler) QRCode(c *fiber.Ctx) error {
	name := c.Params("name")

	instance, err := h.instanceRepo.GetByName(name)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "instance not found: " + name,
		})
	}

	provider, err := providerFor(instance)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	code, err := provider.PairingCode(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render QR code",
		})
	}

	c.Set("Content-Type", "image/png")
	c.Set("Content-Disposition", "attachment; filename=whatsapp-qr.png")
	return c.Send(png)
}

// Health probes one instance's gateway connection.
func (h *InstanceHandler) Health(c *fiber.Ctx) error {
	name := c.Params("name")

	instance, err := h.instanceRepo.GetByName(name)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "instance not found: " + name,
		})
	}

	provider, err := providerFor(instance)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := provider.CheckHealth(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"instance":  name,
			"connected": false,
			"error":     err.Error(),
		})
	}

	_ = h.instanceRepo.TouchHealthy(name)
	return c.JSON(fiber.Map{
		"instance":  name,
		"connected": true,
	})
}

// providerFor builds a gateway provider from an instance record.
func providerFor(instance *models.Instance) (gateway.Provider, error) {
	return gateway.NewProvider(&gateway.ProviderConfig{
		Type:          gateway.ProviderType(instance.Provider),
		BaseURL:       instance.BaseURL,
		APIKey:        instance.APIKey,
		InstanceName:  instance.Name,
		InstanceID:    instance.InstanceID,
		InstanceToken: instance.InstanceToken,
	})
}
