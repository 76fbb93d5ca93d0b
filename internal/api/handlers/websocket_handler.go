package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/metrics"
	"github.com/chat-assistant/backend/internal/session"
	"github.com/chat-assistant/backend/pkg/logger"
)

const sessionLocal = "session"

type WebSocketHandler struct {
	manager *session.Manager
}

func NewWebSocketHandler(manager *session.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
	}
}

// Upgrade rejects plain HTTP requests and unknown sessions before the
// websocket handshake.
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	s, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return sessionNotFound(c)
	}
	c.Locals(sessionLocal, s)
	return c.Next()
}

type inbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// wsConn serialises writes; replies and suggestions are produced on separate
// goroutines.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) send(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	s, ok := c.Locals(sessionLocal).(*session.Session)
	if !ok {
		c.Close()
		return
	}
	log := logger.Named("websocket").With(zap.String("session_id", s.ID()))
	log.Info("WebSocket connection established")

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	out := &wsConn{conn: c}

	defer func() {
		cancel()
		wg.Wait()
		c.Close()
		log.Info("WebSocket connection closed")
	}()

	for {
		var msg inbound
		if err := c.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Failed to read WebSocket message", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "message":
			wg.Add(1)
			go func(content string) {
				defer wg.Done()
				if err := h.streamReply(ctx, out, s, content); err != nil {
					log.Error("Failed to stream reply", zap.Error(err))
				}
			}(msg.Content)
		case "typing":
			wg.Add(1)
			go func(partial string) {
				defer wg.Done()
				h.suggest(ctx, out, s, partial)
			}(msg.Content)
		default:
			out.send(fiber.Map{"type": "error", "error": "Unknown message type"})
		}
	}
}

// streamReply sends the bot reply one word per frame followed by a complete
// frame carrying the entry metadata and updated stats.
func (h *WebSocketHandler) streamReply(ctx context.Context, out *wsConn, s *session.Session, content string) error {
	if err := out.send(fiber.Map{"type": "status", "content": "typing"}); err != nil {
		return err
	}

	ex, err := s.Submit(ctx, content)
	switch {
	case errors.Is(err, session.ErrEmptyUtterance):
		return out.send(fiber.Map{"type": "error", "error": "Message is required"})
	case errors.Is(err, session.ErrCleared), errors.Is(err, context.Canceled):
		return nil
	case err != nil:
		out.send(fiber.Map{"type": "error", "error": "Failed to process message"})
		return err
	}

	words := splitIntoWords(ex.Bot.Message)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 && word != "\n" {
			chunk += " "
		}
		if err := out.send(fiber.Map{"type": "chunk", "content": chunk}); err != nil {
			return err
		}
	}

	return out.send(fiber.Map{
		"type":       "complete",
		"message_id": ex.Bot.ID,
		"user":       ex.User,
		"bot":        ex.Bot,
		"failed":     ex.Failed,
		"latency_ms": ex.Latency.Milliseconds(),
		"stats":      s.Stats(),
	})
}

// suggest answers only if no newer keystroke, submit or clear overtook this
// lookup.
func (h *WebSocketHandler) suggest(ctx context.Context, out *wsConn, s *session.Session, partial string) {
	suggestions, ok, err := s.Suggest(ctx, partial)
	if err != nil {
		return
	}
	metrics.ObserveSuggestion(s.Profile().Name, ok)
	if !ok {
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	out.send(fiber.Map{"type": "suggestions", "partial": partial, "suggestions": suggestions})
}

// splitIntoWords splits on spaces and keeps newlines as their own element.
func splitIntoWords(text string) []string {
	var words []string
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			words = append(words, "\n")
		}
		words = append(words, strings.Fields(line)...)
	}
	return words
}
