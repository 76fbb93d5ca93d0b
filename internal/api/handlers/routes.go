package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type Handlers struct {
	Sessions  *SessionHandler
	Classify  *ClassifyHandler
	NLP       *NLPHandler
	Health    *HealthHandler
	WebSocket *WebSocketHandler
}

// Register mounts the REST routes on api and the websocket route on app.
func Register(app *fiber.App, api fiber.Router, h Handlers) {
	api.Post("/sessions", h.Sessions.CreateSession)
	api.Get("/sessions/:id", h.Sessions.GetSession)
	api.Delete("/sessions/:id", h.Sessions.DeleteSession)
	api.Post("/sessions/:id/messages", h.Sessions.SendMessage)
	api.Post("/sessions/:id/clear", h.Sessions.ClearSession)
	api.Get("/sessions/:id/suggestions", h.Sessions.GetSuggestions)
	api.Get("/sessions/:id/history", h.Sessions.GetHistory)
	api.Post("/exchanges/:id/feedback", h.Sessions.SubmitFeedback)
	api.Get("/stats", h.Sessions.GetStats)

	api.Post("/classify", h.Classify.Classify)

	api.Post("/nlp/message", h.NLP.HandleMessage)
	api.Get("/nlp/suggestions", h.NLP.GetSuggestions)
	api.Post("/nlp/training", h.NLP.Train)

	api.Get("/health", h.Health.Health)
	api.Get("/ping", h.Health.Ping)

	app.Get("/ws/sessions/:id", h.WebSocket.Upgrade, websocket.New(h.WebSocket.HandleConnection))
}
