package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"greenleaf/internal/domain"
	applog "greenleaf/internal/log"
	"greenleaf/internal/services"
	"greenleaf/internal/store"
)

// Layout fills in what every page shows: badges, flash and the csrf token.
type Layout struct {
	Cart      *services.CartService
	Wish      *services.WishlistService
	Threshold int
}

func baseData(c *fiber.Ctx, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	for k, v := range map[string]any{
		"Title":          "",
		"CartCount":      0,
		"WishCount":      0,
		"PanelThreshold": domain.DefaultFilterPanelThreshold,
		"CSRFToken":      "",
		"Flash":          nil,
	} {
		if _, ok := data[k]; !ok {
			data[k] = v
		}
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals(csrfContextKey).(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return data
}

func (l *Layout) render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	data = baseData(c, data)
	sid := ensureSID(c)
	ctx := c.UserContext()

	failed := false
	cv, err := l.Cart.View(ctx, sid)
	if err != nil {
		failed = l.readFailed(c, "cart", err) || failed
	}
	data["CartCount"] = cv.Count
	items, err := l.Wish.List(ctx, sid)
	if err != nil {
		failed = l.readFailed(c, "wishlist", err) || failed
	}
	data["WishCount"] = len(items)

	if l.Threshold > 0 {
		data["PanelThreshold"] = l.Threshold
	}
	if f := takeFlash(c); f != nil {
		data["Flash"] = f
	} else if failed {
		f := flashes[flashStorageReadFail]
		data["Flash"] = &f
	}
	return c.Render(tmpl, data)
}

// readFailed logs a failed read and reports whether the store was
// unreachable. The page still renders with empty content.
func (l *Layout) readFailed(c *fiber.Ctx, key string, err error) bool {
	if errors.Is(err, store.ErrCorrupt) {
		applog.Warn(c, "storage.corrupt", err, map[string]any{"key": key})
		return false
	}
	applog.Error(c, "storage.read.fail", err, map[string]any{"key": key})
	return true
}
