package handler

import (
	"event_hub/constants"
	"event_hub/helper"
	"event_hub/model"
	"event_hub/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	input, ok := c.Locals("inputRegister").(model.RegisterInput)
	if !ok {
		return parseLocalsError(c)
	}

	user, token, err := h.auth.Register(c.UserContext(), input)
	if err != nil {
		return h.serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{
		"message":      constants.USER_REGISTERED,
		"access_token": token,
		"user":         user.ToResponse(),
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	input, ok := c.Locals("inputLogin").(model.LoginInput)
	if !ok {
		return parseLocalsError(c)
	}

	user, token, err := h.auth.Authenticate(c.UserContext(), input)
	if err != nil {
		return h.serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.TokenData{
		AccessToken: token,
		User:        user.ToResponse(),
	})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	claim, ok := helper.GetTokenClaim(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.auth.Identify(c.UserContext(), claim.UserId)
	if err != nil {
		return h.serviceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, user.ToResponse())
}
