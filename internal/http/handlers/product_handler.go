package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"greenleaf/internal/apperr"
	"greenleaf/internal/domain"
	"greenleaf/internal/log"
	"greenleaf/internal/services"
	"greenleaf/internal/validate"
)

type ProductHandler struct {
	*Layout
	Catalog *services.CatalogService
	Wish    *services.WishlistService
}

// listing is a search plus filter pass over the catalog.
type listing struct {
	Q        string
	Criteria domain.FilterCriteria
	Meta     services.FilterMeta
	Products []domain.Product
}

func (l listing) data(action string) fiber.Map {
	return fiber.Map{
		"Q": l.Q, "Criteria": l.Criteria, "Meta": l.Meta, "Action": action,
		"Products": l.Products, "Count": len(l.Products), "Err": "",
	}
}

func loadListing(c *fiber.Ctx, catalog *services.CatalogService) (listing, error) {
	ctx := c.UserContext()
	q, ok := validate.Q(c.Query("search"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "search"})
		return listing{}, apperr.BadRequest("Enter a valid keyword (letters/numbers only)", nil)
	}
	meta, err := catalog.Filters(ctx)
	if err != nil {
		return listing{}, err
	}
	crit, err := parseCriteria(c, meta.Defaults)
	if err != nil {
		return listing{}, err
	}
	products, err := catalog.List(ctx, q, &crit)
	if err != nil {
		return listing{}, err
	}
	return listing{Q: q, Criteria: crit, Meta: meta, Products: products}, nil
}

// parseCriteria overlays min, max, brand and rating query parameters on
// the catalog defaults. min > max is allowed and matches nothing.
func parseCriteria(c *fiber.Ctx, defaults domain.FilterCriteria) (domain.FilterCriteria, error) {
	crit := domain.FilterCriteria{MinPrice: defaults.MinPrice, MaxPrice: defaults.MaxPrice, Brands: []string{}}
	if s := c.Query("min"); s != "" {
		v, ok := validate.Price(s)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "min"})
			return crit, apperr.BadRequest("invalid minimum price", nil)
		}
		crit.MinPrice = v
	}
	if s := c.Query("max"); s != "" {
		v, ok := validate.Price(s)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "max"})
			return crit, apperr.BadRequest("invalid maximum price", nil)
		}
		crit.MaxPrice = v
	}
	for _, raw := range c.Context().QueryArgs().PeekMulti("brand") {
		b := strings.TrimSpace(string(raw))
		if b == "" {
			continue
		}
		if len(b) > 64 {
			log.Security(c, "validation.fail", map[string]any{"field": "brand"})
			return crit, apperr.BadRequest("invalid brand", nil)
		}
		crit.Brands = append(crit.Brands, b)
	}
	r, ok := validate.Rating(c.Query("rating"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "rating"})
		return crit, apperr.BadRequest("invalid rating", nil)
	}
	crit.MinRating = r
	return crit, nil
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	l, err := loadListing(c, h.Catalog)
	if err != nil {
		if apperr.Is(err, apperr.CodeBadRequest) {
			data := listing{}.data("/products")
			data["Err"] = apperr.From(err).Message
			data["Title"] = "Products"
			return h.renderStatus(c, fiber.StatusBadRequest, "products", data)
		}
		log.Error(c, "products.list.error", err, nil)
		return err
	}
	data := l.data("/products")
	data["Title"] = "Products"
	return h.render(c, "products", data)
}

func (h *ProductHandler) renderStatus(c *fiber.Ctx, status int, tmpl string, data fiber.Map) error {
	c.Status(status)
	return h.render(c, tmpl, data)
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return h.renderStatus(c, fiber.StatusNotFound, "notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	ctx := c.UserContext()
	p, err := h.Catalog.Get(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return h.renderStatus(c, fiber.StatusNotFound, "notfound", fiber.Map{"Message": "This item is no longer available"})
		}
		return err
	}
	related, err := h.Catalog.Related(ctx, p, 4)
	if err != nil {
		log.Error(c, "products.related.error", err, nil)
	}
	return h.render(c, "product", fiber.Map{
		"Title":      p.Title,
		"P":          p,
		"InWishlist": h.Wish.Contains(ctx, ensureSID(c), p.ID),
		"Products":   related,
	})
}

// ---------- JSON API ----------

func (h *ProductHandler) APIList(c *fiber.Ctx) error {
	l, err := loadListing(c, h.Catalog)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"search":   l.Q,
		"criteria": l.Criteria,
		"count":    len(l.Products),
		"products": l.Products,
	})
}

func (h *ProductHandler) APIDetail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return apperr.NotFound("product", nil)
	}
	ctx := c.UserContext()
	p, err := h.Catalog.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"product": p, "inWishlist": h.Wish.Contains(ctx, ensureSID(c), p.ID)})
}

func (h *ProductHandler) Filters(c *fiber.Ctx) error {
	meta, err := h.Catalog.Filters(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(meta)
}

func (h *ProductHandler) Suggest(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q"})
		return apperr.BadRequest("invalid query", nil)
	}
	out := h.Catalog.Suggest(q)
	if out == nil {
		out = []string{}
	}
	return c.JSON(fiber.Map{"suggestions": out})
}

// FilterPanel reports whether the floating filter panel shows at scrollY.
func (h *ProductHandler) FilterPanel(c *fiber.Ctx) error {
	y, ok := validate.ScrollY(c.Query("scrollY", "0"))
	if !ok {
		return apperr.BadRequest("invalid scrollY", nil)
	}
	threshold := h.Threshold
	if threshold <= 0 {
		threshold = domain.DefaultFilterPanelThreshold
	}
	return c.JSON(fiber.Map{"visible": domain.FilterPanelVisible(y, threshold), "threshold": threshold})
}
