package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/cache"
	"github.com/chat-assistant/backend/internal/history"
	"github.com/chat-assistant/backend/internal/metrics"
	"github.com/chat-assistant/backend/internal/session"
	"github.com/chat-assistant/backend/internal/storage/models"
	"github.com/chat-assistant/backend/internal/storage/sqlite"
	"github.com/chat-assistant/backend/pkg/logger"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// HistoryStore is the persisted side of conversations.
type HistoryStore interface {
	ExchangeHistory(ctx context.Context, sessionID string, limit int) ([]models.ExchangeRecord, error)
	StoreFeedback(ctx context.Context, feedback *models.Feedback) error
	HelpfulRatio(ctx context.Context) (float64, int, error)
}

type SessionHandler struct {
	manager  *session.Manager
	history  HistoryStore
	counters cache.Store
	profiles []string
}

func NewSessionHandler(manager *session.Manager, history HistoryStore, counters cache.Store, profiles []string) *SessionHandler {
	return &SessionHandler{
		manager:  manager,
		history:  history,
		counters: counters,
		profiles: profiles,
	}
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req struct {
		Profile string `json:"profile"`
	}

	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			logger.Error("Failed to parse request body", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	s, err := h.manager.Create(req.Profile)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	metrics.ActiveSessions.Set(float64(h.manager.Len()))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         s.ID(),
		"profile":    s.Profile().Name,
		"transcript": s.Transcript(),
		"stats":      s.Stats(),
	})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	s, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return sessionNotFound(c)
	}

	return c.JSON(fiber.Map{
		"id":         s.ID(),
		"profile":    s.Profile().Name,
		"transcript": s.Transcript(),
		"stats":      s.Stats(),
	})
}

func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	if err := h.manager.Delete(c.Params("id")); err != nil {
		return sessionNotFound(c)
	}
	metrics.ActiveSessions.Set(float64(h.manager.Len()))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandler) SendMessage(c *fiber.Ctx) error {
	s, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return sessionNotFound(c)
	}

	message, err := messageFrom(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ex, err := s.Submit(c.UserContext(), message)
	switch {
	case errors.Is(err, session.ErrEmptyUtterance):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	case errors.Is(err, session.ErrCleared):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Session was cleared before the reply arrived",
		})
	case err != nil:
		logger.Error("Failed to process message", zap.String("session_id", s.ID()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}

	return c.JSON(fiber.Map{
		"user":       ex.User,
		"bot":        ex.Bot,
		"failed":     ex.Failed,
		"latency_ms": ex.Latency.Milliseconds(),
		"stats":      s.Stats(),
	})
}

func (h *SessionHandler) ClearSession(c *fiber.Ctx) error {
	s, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return sessionNotFound(c)
	}

	s.Clear()

	return c.JSON(fiber.Map{
		"transcript": s.Transcript(),
		"stats":      s.Stats(),
	})
}

// GetSuggestions runs a debounced lookup. A lookup overtaken by a newer
// keystroke answers with stale=true and no suggestions.
func (h *SessionHandler) GetSuggestions(c *fiber.Ctx) error {
	s, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return sessionNotFound(c)
	}

	suggestions, ok, err := s.Suggest(c.UserContext(), c.Query("q"))
	if err != nil {
		return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{
			"error": "Suggestion lookup cancelled",
		})
	}
	metrics.ObserveSuggestion(s.Profile().Name, ok)

	if suggestions == nil {
		suggestions = []string{}
	}
	return c.JSON(fiber.Map{
		"suggestions": suggestions,
		"stale":       !ok,
	})
}

func (h *SessionHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	records, err := h.history.ExchangeHistory(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		logger.Error("Failed to load exchange history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}
	if records == nil {
		records = []models.ExchangeRecord{}
	}

	return c.JSON(fiber.Map{
		"history": records,
	})
}

func (h *SessionHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req struct {
		Helpful *bool  `json:"helpful"`
		Comment string `json:"comment"`
	}

	if err := c.BodyParser(&req); err != nil || req.Helpful == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "helpful is required",
		})
	}

	err := h.history.StoreFeedback(c.UserContext(), &models.Feedback{
		ExchangeID: c.Params("id"),
		Helpful:    *req.Helpful,
		Comment:    req.Comment,
	})
	if errors.Is(err, sqlite.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Exchange not found",
		})
	}
	if err != nil {
		logger.Error("Failed to store feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store feedback",
		})
	}

	if ratio, _, err := h.history.HelpfulRatio(c.UserContext()); err == nil {
		metrics.UserSatisfaction.Set(ratio)
	}

	return c.SendStatus(fiber.StatusCreated)
}

// GetStats reports persisted totals per profile alongside live session count
// and feedback.
func (h *SessionHandler) GetStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	profiles := make(fiber.Map, len(h.profiles))
	for _, name := range h.profiles {
		exchanges, failures, err := history.Totals(ctx, h.counters, name)
		if err != nil {
			logger.Warn("Failed to read counters", zap.String("profile", name), zap.Error(err))
		}
		profiles[name] = fiber.Map{
			"exchanges": exchanges,
			"failures":  failures,
		}
	}

	ratio, feedback, err := h.history.HelpfulRatio(ctx)
	if err != nil {
		logger.Warn("Failed to aggregate feedback", zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"active_sessions": h.manager.Len(),
		"profiles":        profiles,
		"feedback": fiber.Map{
			"total":         feedback,
			"helpful_ratio": ratio,
		},
	})
}

func sessionNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Session not found",
	})
}
