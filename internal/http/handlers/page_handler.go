package handlers

import (
	"github.com/gofiber/fiber/v2"

	"greenleaf/internal/apperr"
	"greenleaf/internal/services"
)

type PageHandler struct {
	*Layout
	Catalog *services.CatalogService
}

// Home is the hero search, the filter panel and the filtered catalog.
func (h *PageHandler) Home(c *fiber.Ctx) error {
	l, err := loadListing(c, h.Catalog)
	if err != nil {
		if apperr.Is(err, apperr.CodeBadRequest) {
			c.Status(fiber.StatusBadRequest)
			return h.render(c, "notfound", fiber.Map{"Message": apperr.From(err).Message})
		}
		return err
	}
	return h.render(c, "home", l.data("/"))
}

func (h *PageHandler) About(c *fiber.Ctx) error {
	return h.render(c, "about", fiber.Map{"Title": "About Us"})
}

func (h *PageHandler) Privacy(c *fiber.Ctx) error {
	return h.render(c, "privacy", fiber.Map{"Title": "Privacy Policy"})
}

// NotFound is the catch-all for unknown routes.
func (h *PageHandler) NotFound(c *fiber.Ctx) error {
	if isAPI(c) {
		return apperr.NotFound("resource", nil)
	}
	c.Status(fiber.StatusNotFound)
	return h.render(c, "notfound", fiber.Map{"Message": "Page not found"})
}
