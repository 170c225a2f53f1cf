package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "greenleaf/internal/log"
	"greenleaf/web"
)

// Limits caps bursts on the search-driven routes. Zero disables a limiter.
type Limits struct {
	Search  int
	Suggest int
	Window  time.Duration
}

var DefaultLimits = Limits{Search: 30, Suggest: 60, Window: time.Minute}

func routeLimiter(max int, window time.Duration, name string) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + name
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate."+name+".hit", nil)
			if isAPI(c) {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon", "code": "TOO_MANY_REQUESTS"})
			}
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests. Please slow down.")
		},
	})
}

const csrfContextKey = "csrf"

// CSRF guards form and API posts. Forms send the token as the csrf field,
// scripts as the X-CSRF-Token header.
func CSRF() fiber.Handler {
	formToken := csrf.CsrfFromForm("csrf")
	return csrf.New(csrf.Config{
		ContextKey:     csrfContextKey,
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Extractor: func(c *fiber.Ctx) (string, error) {
			if tok := c.Get(csrf.HeaderName); tok != "" {
				return tok, nil
			}
			return formToken(c)
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			if isAPI(c) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "security check failed", "code": "FORBIDDEN"})
			}
			return c.Status(fiber.StatusForbidden).Render("notfound", baseData(c, fiber.Map{"Message": "Security check failed. Please refresh and try again."}))
		},
	})
}

// Register mounts static assets, pages, form posts and the JSON API.
func Register(app *fiber.App, d *Deps, lim Limits) {
	app.Use("/static", filesystem.New(filesystem.Config{Root: web.Static(), MaxAge: 3600}))

	searchLimiter := routeLimiter(lim.Search, lim.Window, "search")
	suggestLimiter := routeLimiter(lim.Suggest, lim.Window, "suggest")

	// Pages
	app.Get("/", d.PageHandler.Home)
	app.Get("/products", searchLimiter, d.ProductHandler.List)
	app.Get("/products/:id", d.ProductHandler.Detail)
	app.Get("/about", d.PageHandler.About)
	app.Get("/privacy", d.PageHandler.Privacy)

	// Cart & wishlist
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/remove", d.CartHandler.Remove)
	app.Post("/cart/quantity", d.CartHandler.Quantity)
	app.Post("/cart/checkout", d.CartHandler.Checkout)
	app.Get("/wishlist", d.WishlistHandler.List)
	app.Post("/wishlist/toggle", d.WishlistHandler.Toggle)

	// API
	api := app.Group("/api/v1")
	api.Get("/products", searchLimiter, d.ProductHandler.APIList)
	api.Get("/products/:id", d.ProductHandler.APIDetail)
	api.Get("/filters", d.ProductHandler.Filters)
	api.Get("/suggestions", suggestLimiter, d.ProductHandler.Suggest)
	api.Get("/filter-panel", d.ProductHandler.FilterPanel)
	api.Get("/cart", d.CartHandler.APIView)
	api.Post("/cart", d.CartHandler.APIAdd)
	api.Post("/cart/remove", d.CartHandler.APIRemove)
	api.Post("/cart/quantity", d.CartHandler.APIQuantity)
	api.Post("/cart/checkout", d.CartHandler.APICheckout)
	api.Get("/wishlist", d.WishlistHandler.APIList)
	api.Post("/wishlist/toggle", d.WishlistHandler.APIToggle)
	api.Get("/events", d.EventsHandler.Stream)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(d.PageHandler.NotFound)
}
