package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chat-assistant/backend/internal/middleware/validation"
)

// messageFrom prefers the message sanitised by the validation middleware and
// falls back to the raw body when the middleware is not mounted.
func messageFrom(c *fiber.Ctx) (string, error) {
	if msg, ok := c.Locals(validation.MessageKey).(string); ok {
		return msg, nil
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return "", err
	}
	return req.Message, nil
}
