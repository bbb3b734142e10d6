package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stash/internal/log"
	"stash/internal/repos"
	"stash/internal/validate"
)

// ProductHandler exposes the read-only catalog lookup the storefront UI
// uses for product detail. Catalog management is someone else's job.
type ProductHandler struct {
	Prods *repos.ProductRepo
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return fail(c, fiber.StatusNotFound, "this item is no longer available")
	}
	p, err := h.Prods.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "this item is no longer available")
	}
	return c.JSON(fiber.Map{
		"id":    p.ID,
		"name":  p.Name,
		"price": p.Price,
	})
}
