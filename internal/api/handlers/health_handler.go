package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chat-assistant/backend/pkg/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health pings every dependency. Any failure reports degraded with 503.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "healthy"
	code := fiber.StatusOK
	results := make(fiber.Map, len(names))
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			results[name] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": results,
		"time":   time.Now().Unix(),
	})
}

func (h *HealthHandler) Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "pong",
		"time":   time.Now().UnixMilli(),
	})
}
