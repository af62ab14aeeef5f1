package api

import (
	"github.com/gofiber/fiber/v3"
)

const catalogUnavailableMessage = "Plan catalog is temporarily unavailable. Please try again later."

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// jsonCatalogUnavailable is the 503 for requests that need plans while no
// catalog copy exists.
func jsonCatalogUnavailable(c fiber.Ctx) error {
	c.Set(fiber.HeaderRetryAfter, "30")
	return jsonError(c, fiber.StatusServiceUnavailable, catalogUnavailableMessage)
}
