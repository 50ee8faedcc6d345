package validate

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"event_hub/constants"
	"event_hub/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// GetById parses the numeric route param key into Locals("inputId").
// Anything that is not a positive integer cannot name a record, so it is
// answered with notFoundMessage.
func GetById(key string, notFoundMessage string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value, err := strconv.ParseUint(c.Params(key), 10, 64)
		if err != nil || value == 0 {
			return utils.ErrorResponse(c, fiber.StatusNotFound, notFoundMessage, nil)
		}

		c.Locals("inputId", uint(value))
		return c.Next()
	}
}

// parseBody decodes the JSON body into input. Malformed bodies are answered
// with 400 and ok is false.
func parseBody(c *fiber.Ctx, input any) (bool, error) {
	if err := c.BodyParser(input); err != nil {
		return false, utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_DATA_FORMAT, fiber.Map{
			"details": err.Error(),
		})
	}
	return true, nil
}

// missingRequired reports whether err names a field that failed "required".
func missingRequired(err error) bool {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return false
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return true
		}
	}
	return false
}

// invalidFields answers a failed struct check that is not a missing field,
// e.g. a value longer than its column.
func invalidFields(c *fiber.Ctx, err error) error {
	details := fiber.Map{}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			details[fe.Field()] = rule
		}
	}
	return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_DATA_FORMAT, fiber.Map{
		"details": details,
	})
}
