package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenleaf/internal/http/handlers"
	"greenleaf/internal/notify"
)

func TestEventsStreamDeliversOwnSessionOnly(t *testing.T) {
	env := newTestEnv(t, handlers.Limits{})
	s := newSession(t, env.app)
	other := newSession(t, env.app)

	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		req := httptest.NewRequest("GET", "/api/v1/events", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: s.sid})
		resp, err := env.app.Test(req, -1)
		done <- result{resp, err}
	}()

	require.Eventually(t, func() bool { return env.bus.Count(notify.CartUpdated) == 1 },
		2*time.Second, 10*time.Millisecond, "stream never subscribed")

	require.Equal(t, http.StatusOK, other.postJSON("/api/v1/cart", map[string]any{"productId": "5"}).StatusCode)
	require.Equal(t, http.StatusOK, s.postJSON("/api/v1/cart", map[string]any{"productId": "1"}).StatusCode)
	require.Equal(t, http.StatusOK, s.postJSON("/api/v1/wishlist/toggle", map[string]any{"productId": "1"}).StatusCode)

	// let the writer drain before the stream is closed
	time.Sleep(100 * time.Millisecond)
	env.deps.EventsHandler.Close()

	var r result
	select {
	case r = <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("stream did not end after Close")
	}
	require.NoError(t, r.err)
	assert.Equal(t, "text/event-stream", r.resp.Header.Get("Content-Type"))

	body := readBody(t, r.resp)
	assert.Contains(t, body, ": connected")
	assert.Contains(t, body, "event: cartUpdated")
	assert.Contains(t, body, "event: wishlistUpdated")
	assert.Equal(t, 1, strings.Count(body, "event: cartUpdated"), "other session's update leaked: %s", body)

	assert.Eventually(t, func() bool { return env.bus.Count(notify.CartUpdated) == 0 },
		time.Second, 10*time.Millisecond, "stream left its subscription behind")
}
