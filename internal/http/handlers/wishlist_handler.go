package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "greenleaf/internal/log"
	"greenleaf/internal/store"
)

type WishlistHandler struct {
	*Layout
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	items, _ := h.Wish.List(c.UserContext(), ensureSID(c))
	return h.render(c, "wishlist", fiber.Map{"Title": "Wishlist", "Items": items})
}

func (h *WishlistHandler) Toggle(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, err := formID(c)
	if err != nil {
		return err
	}
	in, err := h.Wish.Toggle(c.UserContext(), sid, id)
	if err != nil {
		return formDone(c, err, "", "/wishlist")
	}
	msg := flashWishRemoved
	if in {
		msg = flashWishAdded
	}
	applog.Audit(c, "wishlist.toggle", map[string]any{"product": id, "saved": in})
	return formDone(c, nil, msg, "/wishlist")
}

// ---------- JSON API ----------

func (h *WishlistHandler) APIList(c *fiber.Ctx) error {
	sid := ensureSID(c)
	items, err := h.Wish.List(c.UserContext(), sid)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return err
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *WishlistHandler) APIToggle(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	in, err := h.Wish.Toggle(ctx, sid, req.ProductID)
	if err != nil {
		return err
	}
	applog.Audit(c, "wishlist.toggle", map[string]any{"product": req.ProductID, "saved": in})
	items, err := h.Wish.List(ctx, sid)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return err
	}
	return c.JSON(fiber.Map{"inWishlist": in, "items": items})
}
