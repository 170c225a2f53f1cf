package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "greenleaf/internal/log"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldFlags := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	t.Cleanup(func() {
		stdlog.SetOutput(oldW)
		stdlog.SetFlags(oldFlags)
	})
	return &buf
}

func TestErrorWithoutContext(t *testing.T) {
	buf := capture(t)
	applog.Error(nil, "broker.publish", errors.New("channel closed"), map[string]any{"key": "cart"})

	var got map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got))
	assert.Equal(t, "error", got["level"])
	assert.Equal(t, "broker.publish", got["action"])
	assert.Equal(t, "channel closed", got["err"])
	assert.NotContains(t, got, "path")
}

func TestRequestFieldsAndTruncatedSession(t *testing.T) {
	buf := capture(t)
	app := fiber.New()
	app.Get("/cart", func(c *fiber.Ctx) error {
		c.Locals("requestid", "req-1")
		c.Locals(applog.SessionLocal, "0123456789abcdef")
		applog.Audit(c, "cart.view", nil)
		return c.SendStatus(fiber.StatusOK)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/cart", nil))
	require.NoError(t, err)

	line := strings.TrimSpace(buf.String())
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "audit", got["level"])
	assert.Equal(t, "/cart", got["path"])
	assert.Equal(t, "req-1", got["req_id"])
	assert.Equal(t, "01234567", got["session"])
	assert.NotContains(t, line, "0123456789abcdef")
}
