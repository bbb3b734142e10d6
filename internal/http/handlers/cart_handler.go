package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stash/internal/log"
	"stash/internal/services"
	"stash/internal/validate"
)

type CartHandler struct {
	Mut   *services.CollectionService
	Views *services.ViewService
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	items, err := h.Views.Cart(c.UserContext(), userID(c))
	if err != nil {
		applog.Error(c, "cart.get.fail", err, nil)
		return respondErr(c, err)
	}
	return c.JSON(items)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
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
	if err := h.Mut.AddToCart(c.UserContext(), userID(c), pid); err != nil {
		applog.Error(c, "cart.add.fail", err, map[string]any{"product": pid})
		return respondErr(c, err)
	}
	applog.Audit(c, "cart.add", map[string]any{"product": pid})
	return ack(c)
}

func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	var body struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil || body.Quantity == nil {
		return fail(c, fiber.StatusBadRequest, "productId and quantity are required")
	}
	pid, ok := validate.ID(body.ProductID)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "missing or invalid productId")
	}
	qty, ok := validate.Quantity(*body.Quantity)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "quantity"})
		return fail(c, fiber.StatusBadRequest, "quantity out of range")
	}
	if err := h.Mut.SetQuantity(c.UserContext(), userID(c), pid, qty); err != nil {
		applog.Error(c, "cart.setqty.fail", err, map[string]any{"product": pid, "qty": qty})
		return respondErr(c, err)
	}
	applog.Audit(c, "cart.setqty", map[string]any{"product": pid, "qty": qty})
	return ack(c)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Query("productId"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "missing or invalid productId")
	}
	if err := h.Mut.RemoveFromCart(c.UserContext(), userID(c), pid); err != nil {
		applog.Error(c, "cart.remove.fail", err, map[string]any{"product": pid})
		return respondErr(c, err)
	}
	applog.Audit(c, "cart.remove", map[string]any{"product": pid})
	return ack(c)
}

func (h *CartHandler) BulkAdd(c *fiber.Ctx) error {
	var body struct {
		ProductIDs []string `json:"productIds"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed payload")
	}
	ids, ok := validate.IDs(body.ProductIDs)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productIds"})
		return fail(c, fiber.StatusBadRequest, "missing or invalid productIds")
	}
	if err := h.Mut.BulkAddToCart(c.UserContext(), userID(c), ids); err != nil {
		applog.Error(c, "cart.bulkadd.fail", err, map[string]any{"count": len(ids)})
		return respondErr(c, err)
	}
	applog.Audit(c, "cart.bulkadd", map[string]any{"count": len(ids)})
	return ack(c)
}
