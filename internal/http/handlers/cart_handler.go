package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"greenleaf/internal/apperr"
	"greenleaf/internal/domain"
	applog "greenleaf/internal/log"
	"greenleaf/internal/services"
	"greenleaf/internal/store"
	"greenleaf/internal/validate"
)

type CartHandler struct {
	*Layout
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	// render reports read failures; the page shows an empty cart
	cv, _ := h.Cart.View(c.UserContext(), ensureSID(c))
	return h.render(c, "cart", fiber.Map{"Title": "Cart", "Cart": cv})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, err := formID(c)
	if err != nil {
		return err
	}
	qty := validate.Qty(c.FormValue("qty"))
	_, err = h.Cart.Add(c.UserContext(), sid, id, qty)
	if err == nil {
		applog.Audit(c, "cart.add", map[string]any{"product": id, "qty": qty})
	}
	return formDone(c, err, flashCartAdded, "/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, err := formID(c)
	if err != nil {
		return err
	}
	_, err = h.Cart.Remove(c.UserContext(), sid, id)
	if err == nil {
		applog.Audit(c, "cart.remove", map[string]any{"product": id})
	}
	return formDone(c, err, flashCartRemoved, "/cart")
}

// Quantity takes either an absolute qty or a delta step.
func (h *CartHandler) Quantity(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, err := formID(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	if raw := c.FormValue("delta"); raw != "" {
		d, ok := validate.Delta(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "delta"})
			return apperr.BadRequest("invalid quantity step", nil)
		}
		_, err = h.Cart.Adjust(ctx, sid, id, d)
	} else if raw := c.FormValue("qty"); raw != "" {
		_, err = h.Cart.SetQuantity(ctx, sid, id, validate.Qty(raw))
	} else {
		return apperr.BadRequest("qty or delta is required", nil)
	}
	return formDone(c, err, flashCartUpdated, "/cart")
}

func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_, err := h.Cart.Checkout(c.UserContext(), sid)
	if err == nil {
		applog.Audit(c, "cart.checkout", nil)
	}
	return formDone(c, err, flashCheckout, "/cart")
}

// ---------- JSON API ----------

// APIView supports conditional GET keyed on the stored content's version.
func (h *CartHandler) APIView(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(c.UserContext(), sid)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-cache")
	if cv.Version != "" {
		etag := `"` + cv.Version + `"`
		c.Set(fiber.HeaderETag, etag)
		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			return c.SendStatus(fiber.StatusNotModified)
		}
	}
	return c.JSON(cv)
}

func (h *CartHandler) APIAdd(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req cartAddRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	qty := req.Qty
	if qty == 0 {
		qty = 1
	}
	cv, err := h.Cart.Add(c.UserContext(), sid, req.ProductID, qty)
	if err != nil {
		return err
	}
	applog.Audit(c, "cart.add", map[string]any{"product": req.ProductID, "qty": qty})
	return c.JSON(cv)
}

func (h *CartHandler) APIRemove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cv, err := h.Cart.Remove(c.UserContext(), sid, req.ProductID)
	if err != nil {
		return err
	}
	applog.Audit(c, "cart.remove", map[string]any{"product": req.ProductID})
	return c.JSON(cv)
}

func (h *CartHandler) APIQuantity(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req cartQuantityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	var (
		cv  services.CartView
		err error
	)
	switch {
	case req.Qty != nil:
		cv, err = h.Cart.SetQuantity(c.UserContext(), sid, req.ProductID, *req.Qty)
	case *req.Delta < -domain.MaxQuantity || *req.Delta > domain.MaxQuantity:
		return apperr.BadRequest("invalid quantity step", nil)
	default:
		cv, err = h.Cart.Adjust(c.UserContext(), sid, req.ProductID, *req.Delta)
	}
	if err != nil {
		return err
	}
	return c.JSON(cv)
}

func (h *CartHandler) APICheckout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.Checkout(c.UserContext(), sid)
	if err != nil {
		return err
	}
	applog.Audit(c, "cart.checkout", nil)
	return c.JSON(cv)
}
