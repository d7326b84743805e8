package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oraclewa/oraclewa/internal/modules/recovery/models"
	"github.com/oraclewa/oraclewa/internal/modules/recovery/repositories"
)

type ClientHandler struct {
	clientRepo repositories.ClientRepo
}

func NewClientHandler(clientRepo repositories.ClientRepo) *ClientHandler {
	return &ClientHandler{clientRepo: clientRepo}
}

func (h *ClientHandler) GetActiveClients(c *fiber.Ctx) error {
	clients, err := h.clientRepo.GetActive()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"clients": clients})
}

func (h *ClientHandler) GetClientBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	client, err := h.clientRepo.GetBySlug(slug)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "client not found: " + slug,
		})
	}
	return c.JSON(client)
}

type createClientRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	PhoneFormat string `json:"phone_format"`
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var req createClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON payload",
		})
	}
	if req.Slug == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "slug and name are required",
		})
	}

	client := &models.Client{
		Slug:        req.Slug,
		Name:        req.Name,
		Status:      "active",
		PhoneFormat: req.PhoneFormat,
	}
	if err := h.clientRepo.Create(client); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(client)
}
