package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/middleware/validation"
	"github.com/chat-assistant/backend/internal/profile"
	"github.com/chat-assistant/backend/pkg/logger"
)

// ClassifyHandler runs a profile's rule table without a session or any
// simulated latency.
type ClassifyHandler struct {
	profiles *profile.Registry
}

func NewClassifyHandler(profiles *profile.Registry) *ClassifyHandler {
	return &ClassifyHandler{
		profiles: profiles,
	}
}

func (h *ClassifyHandler) Classify(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
		Profile string `json:"profile"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if msg, ok := c.Locals(validation.MessageKey).(string); ok {
		req.Message = msg
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	p, err := h.profiles.Get(req.Profile)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	rec := p.Table.Classify(req.Message)

	return c.JSON(fiber.Map{
		"profile":    p.Name,
		"message":    rec.Message,
		"confidence": rec.Confidence,
		"intent":     rec.Intent,
	})
}
