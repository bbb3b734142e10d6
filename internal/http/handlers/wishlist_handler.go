package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stash/internal/log"
	"stash/internal/services"
	"stash/internal/validate"
)

type WishlistHandler struct {
	Mut   *services.CollectionService
	Views *services.ViewService
}

func (h *WishlistHandler) Get(c *fiber.Ctx) error {
	items, err := h.Views.Wishlist(c.UserContext(), userID(c))
	if err != nil {
		applog.Error(c, "wishlist.get.fail", err, nil)
		return respondErr(c, err)
	}
	return c.JSON(items)
}

func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	var body struct {
		ProductID string `json:"productId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed payload")
	}
	pid, ok := validate.ID(body.ProductID)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return fail(c, fiber.StatusBadRequest, "missing or invalid productId")
	}
	if err := h.Mut.AddToWishlist(c.UserContext(), userID(c), pid); err != nil {
		// AlreadyExists is reported, not swallowed: the UI messages it.
		applog.Error(c, "wishlist.add.fail", err, map[string]any{"product": pid})
		return respondErr(c, err)
	}
	applog.Audit(c, "wishlist.add", map[string]any{"product": pid})
	return ack(c)
}

func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Query("productId"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "missing or invalid productId")
	}
	if err := h.Mut.RemoveFromWishlist(c.UserContext(), userID(c), pid); err != nil {
		applog.Error(c, "wishlist.remove.fail", err, map[string]any{"product": pid})
		return respondErr(c, err)
	}
	applog.Audit(c, "wishlist.remove", map[string]any{"product": pid})
	return ack(c)
}
