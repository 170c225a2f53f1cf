package handlers

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "greenleaf/internal/log"
)

const (
	sessionCookie = "sid"
	flashCookie   = "flash"
)

// ensureSID returns the caller's session id, issuing a fresh one when the
// cookie is missing or not a uuid.
func ensureSID(c *fiber.Ctx) string {
	if sid, ok := c.Locals(applog.SessionLocal).(string); ok && sid != "" {
		return sid
	}
	sid := c.Cookies(sessionCookie)
	if _, err := uuid.Parse(sid); err != nil {
		if sid != "" {
			applog.Security(c, "session.invalid", nil)
		}
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // set true behind HTTPS
			Expires:  time.Now().Add(365 * 24 * time.Hour),
		})
	}
	c.Locals(applog.SessionLocal, sid)
	return sid
}

type flash struct {
	Kind string
	Text string
}

const (
	flashCartAdded       = "cart.added"
	flashCartRemoved     = "cart.removed"
	flashCartUpdated     = "cart.updated"
	flashCheckout        = "checkout"
	flashWishAdded       = "wishlist.added"
	flashWishRemoved     = "wishlist.removed"
	flashStorageDown     = "storage.unavailable"
	flashStorageCorrupt  = "storage.corrupt"
	flashStorageReadFail = "storage.read"
)

var flashes = map[string]flash{
	flashCartAdded:       {"success", "Added to cart successfully!"},
	flashCartRemoved:     {"success", "Item removed from cart"},
	flashCartUpdated:     {"success", "Cart updated"},
	flashCheckout:        {"success", "Thank you for your purchase! Your order has been placed."},
	flashWishAdded:       {"success", "Added to wishlist. You can remove it anytime."},
	flashWishRemoved:     {"success", "Removed from wishlist. You can add it back anytime."},
	flashStorageDown:     {"error", "We could not save your change. Please try again."},
	flashStorageCorrupt:  {"error", "Your saved data could not be read. Checking out clears the cart."},
	flashStorageReadFail: {"error", "Failed to load cart/wishlist data"},
}

// setFlash queues a one-shot message for the next rendered page.
func setFlash(c *fiber.Ctx, code string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    code,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(time.Minute),
	})
}

// takeFlash consumes the pending message, if any.
func takeFlash(c *fiber.Ctx) *flash {
	code := c.Cookies(flashCookie)
	if code == "" {
		return nil
	}
	c.ClearCookie(flashCookie)
	if f, ok := flashes[code]; ok {
		return &f
	}
	return nil
}

// back is the same-origin page the request came from, or fallback.
func back(c *fiber.Ctx, fallback string) string {
	ref := c.Get(fiber.HeaderReferer)
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Hostname()) || u.Path == "" || u.Path[0] != '/' {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
