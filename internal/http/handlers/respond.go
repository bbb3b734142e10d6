package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "stash/internal/log"
	"stash/internal/domain"
)

// respondErr maps the domain taxonomy onto the HTTP error envelope.
// Conflict never reaches here in practice (the mutation engine retries it
// away or reports unavailable), but the mapping stays total.
func respondErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		applog.Error(c, "store.unavailable", err, nil)
		return fail(c, fiber.StatusServiceUnavailable, "temporarily unavailable, please retry")
	default:
		applog.Error(c, "server.error", err, nil)
		return fail(c, fiber.StatusInternalServerError, "something went wrong")
	}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func ack(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
