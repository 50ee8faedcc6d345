package validate

import (
	"event_hub/constants"
	"event_hub/model"
	"event_hub/utils"

	"github.com/gofiber/fiber/v2"
)

func CreateBooking() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateBookingInput
		if ok, err := parseBody(c, &input); !ok {
			return err
		}

		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_REQUIRED_FIELDS, nil)
		}

		c.Locals("inputCreateBooking", input)
		return c.Next()
	}
}
