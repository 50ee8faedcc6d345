package handler

import (
	"event_hub/constants"
	"event_hub/helper"
	"event_hub/model"
	"event_hub/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetEvents(c *fiber.Ctx) error {
	events, err := h.events.List(c.UserContext())
	if err != nil {
		return h.serviceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, model.Events(events).ToResponse())
}

func (h *Handler) GetEvent(c *fiber.Ctx) error {
	id, ok := inputId(c)
	if !ok {
		return parseLocalsError(c)
	}

	event, err := h.events.Get(c.UserContext(), id)
	if err != nil {
		return h.serviceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, event.ToResponse())
}

func (h *Handler) GetEventBySlug(c *fiber.Ctx) error {
	event, err := h.events.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, event.ToResponse())
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	claim, ok := helper.GetTokenClaim(c)
	if !ok {
		return unauthorized(c)
	}
	input, ok := c.Locals("inputCreateEvent").(model.CreateEventInput)
	if !ok {
		return parseLocalsError(c)
	}

	event, err := h.events.Create(c.UserContext(), claim.UserId, input)
	if err != nil {
		return h.serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{
		"message": constants.EVENT_CREATED,
		"event":   event.ToResponse(),
	})
}

func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	claim, ok := helper.GetTokenClaim(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return parseLocalsError(c)
	}
	input, ok := c.Locals("inputUpdateEvent").(model.UpdateEventInput)
	if !ok {
		return parseLocalsError(c)
	}

	event, err := h.events.Update(c.UserContext(), claim.UserId, id, input)
	if err != nil {
		return h.serviceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, event.ToResponse())
}

func (h *Handler) DeleteEvent(c *fiber.Ctx) error {
	claim, ok := helper.GetTokenClaim(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return parseLocalsError(c)
	}

	if err := h.events.Delete(c.UserContext(), claim.UserId, id); err != nil {
		return h.serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"message":          constants.EVENT_DELETED,
		"deleted_event_id": id,
	})
}
