package handlers

import (
	"bufio"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	applog "greenleaf/internal/log"
	"greenleaf/internal/notify"
)

// EventsHandler streams a session's bus events as server-sent events.
type EventsHandler struct {
	Bus       *notify.Bus
	KeepAlive time.Duration

	once sync.Once
	done chan struct{}
}

func NewEventsHandler(bus *notify.Bus) *EventsHandler {
	return &EventsHandler{Bus: bus, KeepAlive: 15 * time.Second, done: make(chan struct{})}
}

// Close ends every open stream so the server can shut down.
func (h *EventsHandler) Close() {
	h.once.Do(func() { close(h.done) })
}

func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	sid := ensureSID(c)

	// buffered so a slow client never blocks a publisher; overflow is dropped
	events := make(chan notify.Event, 16)
	var subs []*notify.Subscription
	for _, ch := range []string{notify.CartUpdated, notify.WishlistUpdated, notify.Storage} {
		subs = append(subs, h.Bus.Subscribe(ch, func(e notify.Event) {
			if e.SessionID != sid {
				return
			}
			select {
			case events <- e:
			default:
			}
		}))
	}
	applog.Info(c, "events.open", nil)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	done := h.done
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			for _, s := range subs {
				s.Unsubscribe()
			}
		}()
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		if _, err := w.WriteString(": connected\n\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case e := <-events:
				if _, err := w.Write(e.SSE()); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
			case <-done:
				return
			}
			// a failed flush is how a closed client shows up
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
