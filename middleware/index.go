package middleware

import (
	"strings"

	"event_hub/constants"
	"event_hub/helper"
	"event_hub/utils"

	"github.com/gofiber/fiber/v2"
)

// Protected requires a valid access token, read from the access_token cookie
// or an Authorization: Bearer header, and stores its claims in Locals("user").
func Protected(tokens *helper.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("access_token")

		if token == "" {
			auth := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}

		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.MISSING_TOKEN, nil)
		}

		claim, err := tokens.ParseToken(token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.INVALID_TOKEN, nil)
		}

		c.Locals("user", claim)
		return c.Next()
	}
}
