package validate

import (
	"event_hub/constants"
	"event_hub/model"
	"event_hub/utils"

	"github.com/gofiber/fiber/v2"
)

func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.RegisterInput
		if ok, err := parseBody(c, &input); !ok {
			return err
		}

		if err := validate.Struct(input); err != nil {
			if !missingRequired(err) {
				return invalidFields(c, err)
			}
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_REQUIRED_FIELDS, fiber.Map{
				"required": []string{"email", "password", "name"},
			})
		}

		c.Locals("inputRegister", input)
		return c.Next()
	}
}

func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.LoginInput
		if ok, err := parseBody(c, &input); !ok {
			return err
		}

		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_LOGIN_INPUT, nil)
		}

		c.Locals("inputLogin", input)
		return c.Next()
	}
}
