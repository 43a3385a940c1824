package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pawgram/internal/models"
)

// currentUserID returns the authenticated user's id from locals.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// offsetParam parses the :offset path segment. Malformed or negative values
// are a validation error.
func offsetParam(c *fiber.Ctx) (int, error) {
	raw := c.Params("offset")
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0, models.NewValidationError("Invalid offset")
	}
	return offset, nil
}

// idParam parses a positive uint path parameter.
func idParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(id), nil
}

// formUint parses a positive uint form value.
func formUint(c *fiber.Ctx, name string) (uint, error) {
	raw := c.FormValue(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(id), nil
}

// successResponse is the acknowledgement body for engagement mutations.
func successResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
