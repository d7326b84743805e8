package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oraclewa/oraclewa/internal/modules/recovery/repositories"
)

type MessageHandler struct {
	logRepo repositories.MessageLogRepo
}

func NewMessageHandler(logRepo repositories.MessageLogRepo) *MessageHandler {
	return &MessageHandler{logRepo: logRepo}
}

// Recent returns the message log tail, optionally filtered by client.
func (h *MessageHandler) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	clientID := c.Query("client_id")

	var (
		logs interface{}
		err  error
	)
	if clientID != "" {
		logs, err = h.logRepo.RecentByClient(clientID, limit)
	} else {
		logs, err = h.logRepo.Recent(limit)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"messages": logs})
}
