package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/nlp"
)

// MessageKey is the fiber.Ctx local holding the sanitised chat message.
const MessageKey = "sanitized_message"

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

// messageRoutes carry a user utterance in the "message" field.
var messageRoutes = []string{"/messages", "/classify", "/nlp/message"}

type Config struct {
	MaxMessageBytes     int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 2000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{fiber.MIMEApplicationJSON}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		contentType := c.Get(fiber.HeaderContentType)
		if contentType != "" && !allowedType(contentType, cfg.AllowedContentTypes) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		path := c.Path()
		switch {
		case hasAnySuffix(path, messageRoutes):
			return validateMessage(c, cfg)
		case strings.HasSuffix(path, "/nlp/training"):
			return validateTraining(c, cfg)
		}

		return c.Next()
	}
}

func validateMessage(c *fiber.Ctx, cfg Config) error {
	var req map[string]interface{}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON format",
		})
	}

	message, ok := req["message"].(string)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required and must be a string",
		})
	}
	if len(message) > cfg.MaxMessageBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message exceeds maximum length",
		})
	}

	if containsXSS(message) {
		cfg.Logger.Warn("Markup with script content stripped from message",
			zap.String("ip", c.IP()),
			zap.String("path", c.Path()),
		)
	}

	sanitized := sanitizeString(message)
	if strings.Contains(sanitized, "<") {
		sanitized = nlp.StripMarkup(sanitized)
	}
	if sanitized == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	c.Locals(MessageKey, sanitized)
	return c.Next()
}

func validateTraining(c *fiber.Ctx, cfg Config) error {
	var req map[string]interface{}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON format",
		})
	}

	response, ok := req["response"].(string)
	if !ok || strings.TrimSpace(response) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Response is required and must be a string",
		})
	}
	for _, field := range []string{"pattern", "intent", "response"} {
		if s, _ := req[field].(string); len(s) > cfg.MaxMessageBytes {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": field + " exceeds maximum length",
			})
		}
		if s, _ := req[field].(string); containsXSS(s) {
			cfg.Logger.Warn("Rejected training data with script content", zap.String("ip", c.IP()))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid training content",
			})
		}
	}

	return c.Next()
}

func allowedType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

func hasAnySuffix(path string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func containsXSS(input string) bool {
	return xssPattern.MatchString(input)
}

func sanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}
