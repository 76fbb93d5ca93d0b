package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/metrics"
	"github.com/chat-assistant/backend/internal/middleware/validation"
	"github.com/chat-assistant/backend/internal/nlp"
	"github.com/chat-assistant/backend/internal/suggest"
	"github.com/chat-assistant/backend/internal/training"
	"github.com/chat-assistant/backend/pkg/logger"
)

const (
	backendAssistant = "assistant"
	backendFast      = "fast"
)

type Responder interface {
	Respond(ctx context.Context, utterance string) (training.Reply, error)
}

// NLPHandler serves the keyword-NLP responders, one per backend.
type NLPHandler struct {
	responder  *training.Responder
	backends   map[string]Responder
	suggesters map[string]*suggest.IntentSuggester
}

func NewNLPHandler(responder *training.Responder, fast *training.FastResponder) *NLPHandler {
	return &NLPHandler{
		responder: responder,
		backends: map[string]Responder{
			backendAssistant: responder,
			backendFast:      fast,
		},
		suggesters: map[string]*suggest.IntentSuggester{
			backendAssistant: suggest.NewAssistantIntentSuggester(nlp.DetectIntent),
			backendFast:      suggest.NewFastIntentSuggester(nlp.FastDetectIntent),
		},
	}
}

func (h *NLPHandler) HandleMessage(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
		Backend string `json:"backend"`
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

	backend, ok := h.backend(req.Backend)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown backend",
		})
	}

	start := time.Now()
	reply, err := h.backends[backend].Respond(c.UserContext(), req.Message)
	if errors.Is(err, training.ErrEmptyMessage) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}
	if err != nil {
		logger.Error("Failed to process message", zap.String("backend", backend), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}
	metrics.NLPRequests.WithLabelValues(backend, reply.Intent).Inc()

	return c.JSON(fiber.Map{
		"backend":    backend,
		"message":    reply.Message,
		"confidence": reply.Confidence,
		"intent":     reply.Intent,
		"entities":   reply.Entities,
		"pattern":    reply.Pattern,
		"latency_ms": time.Since(start).Milliseconds(),
	})
}

func (h *NLPHandler) GetSuggestions(c *fiber.Ctx) error {
	backend, ok := h.backend(c.Query("backend"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown backend",
		})
	}

	return c.JSON(fiber.Map{
		"suggestions": h.suggesters[backend].Suggest(c.Query("partial")),
	})
}

func (h *NLPHandler) Train(c *fiber.Ctx) error {
	var req struct {
		Pattern  string `json:"pattern"`
		Intent   string `json:"intent"`
		Response string `json:"response"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err := h.responder.Train(c.UserContext(), req.Pattern, req.Intent, req.Response)
	if errors.Is(err, training.ErrEmptyMessage) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A response and a pattern or intent are required",
		})
	}
	if err != nil {
		logger.Error("Failed to store training data", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store training data",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "trained",
	})
}

func (h *NLPHandler) backend(name string) (string, bool) {
	if name == "" {
		return backendAssistant, true
	}
	_, ok := h.backends[name]
	return name, ok
}
