package utils

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse writes {"error": message} merged with any extra diagnostic fields.
func ErrorResponse(c *fiber.Ctx, status int, message string, extra fiber.Map) error {
	body := fiber.Map{}
	for k, v := range extra {
		body[k] = v
	}
	body["error"] = message
	return c.Status(status).JSON(body)
}

func SuccessResponse(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(data)
}

func Ptr[T any](v T) *T {
	return &v
}
