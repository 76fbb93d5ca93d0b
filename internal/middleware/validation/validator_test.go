package validation

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{MaxMessageBytes: 32}))
	echo := func(c *fiber.Ctx) error {
		msg, _ := c.Locals(MessageKey).(string)
		return c.SendString(msg)
	}
	app.Post("/api/v1/sessions/:id/messages", echo)
	app.Post("/api/v1/classify", echo)
	app.Post("/api/v1/nlp/training", echo)
	app.Post("/api/v1/sessions", echo)
	return app
}

func post(t *testing.T, app *fiber.App, path, contentType, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestMiddleware_Messages(t *testing.T) {
	app := newApp()
	const path = "/api/v1/sessions/abc/messages"

	tests := []struct {
		name   string
		body   string
		status int
		echo   string
	}{
		{"plain", `{"message":"  hello  "}`, fiber.StatusOK, "hello"},
		{"markup stripped", `{"message":"<b>hi</b><script>alert(1)</script>"}`, fiber.StatusOK, "hi"},
		{"missing", `{"text":"hello"}`, fiber.StatusBadRequest, ""},
		{"not a string", `{"message":5}`, fiber.StatusBadRequest, ""},
		{"markup only", `{"message":"<p></p>"}`, fiber.StatusBadRequest, ""},
		{"too long", `{"message":"` + strings.Repeat("a", 33) + `"}`, fiber.StatusBadRequest, ""},
		{"bad json", `{"message":`, fiber.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, path, fiber.MIMEApplicationJSON, tt.body)
			assert.Equal(t, tt.status, status)
			if tt.status == fiber.StatusOK {
				assert.Equal(t, tt.echo, body)
			}
		})
	}
}

func TestMiddleware_ContentType(t *testing.T) {
	status, _ := post(t, newApp(), "/api/v1/classify", "text/plain", "hello")
	assert.Equal(t, fiber.StatusUnsupportedMediaType, status)
}

func TestMiddleware_Training(t *testing.T) {
	app := newApp()

	status, _ := post(t, app, "/api/v1/nlp/training", fiber.MIMEApplicationJSON, `{"pattern":"hours","response":"9 to 5"}`)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = post(t, app, "/api/v1/nlp/training", fiber.MIMEApplicationJSON, `{"pattern":"hours"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = post(t, app, "/api/v1/nlp/training", fiber.MIMEApplicationJSON, `{"pattern":"x","response":"<script>x</script>"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestMiddleware_OtherRoutesPass(t *testing.T) {
	status, _ := post(t, newApp(), "/api/v1/sessions", fiber.MIMEApplicationJSON, `{"profile":"fast"}`)
	assert.Equal(t, fiber.StatusOK, status)
}
