package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type HeadersConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
}

// HeadersMiddleware sets browser hardening headers. connect-src also admits
// the configured origins and their websocket equivalents so the chat widget
// can stream replies.
func HeadersMiddleware(cfg HeadersConfig) fiber.Handler {
	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src " + connectSrc(cfg.AllowedOrigins),
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")

	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		if !cfg.IsDevelopment {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Set("Content-Security-Policy", csp)

		return c.Next()
	}
}

func connectSrc(origins []string) string {
	sources := []string{"'self'"}
	for _, origin := range origins {
		switch {
		case origin == "" || origin == "*":
			continue
		case strings.HasPrefix(origin, "https://"):
			sources = append(sources, origin, "wss://"+strings.TrimPrefix(origin, "https://"))
		case strings.HasPrefix(origin, "http://"):
			sources = append(sources, origin, "ws://"+strings.TrimPrefix(origin, "http://"))
		default:
			sources = append(sources, origin)
		}
	}
	return strings.Join(sources, " ")
}
