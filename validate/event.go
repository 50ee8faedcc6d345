package validate

import (
	"event_hub/constants"
	"event_hub/model"
	"event_hub/utils"

	"github.com/gofiber/fiber/v2"
)

func CreateEvent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateEventInput
		if ok, err := parseBody(c, &input); !ok {
			return err
		}

		if err := validate.Struct(input); err != nil {
			if !missingRequired(err) {
				return invalidFields(c, err)
			}
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_REQUIRED_FIELDS, fiber.Map{
				"required_fields": model.CreateEventRequiredFields,
			})
		}

		c.Locals("inputCreateEvent", input)
		return c.Next()
	}
}

// UpdateEvent checks the body is well formed; every field is optional.
func UpdateEvent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdateEventInput
		if ok, err := parseBody(c, &input); !ok {
			return err
		}

		if err := validate.Struct(input); err != nil {
			return invalidFields(c, err)
		}

		c.Locals("inputUpdateEvent", input)
		return c.Next()
	}
}
