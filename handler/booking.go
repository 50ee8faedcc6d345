package handler

import (
	"event_hub/constants"
	"event_hub/helper"
	"event_hub/model"
	"event_hub/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	claim, ok := helper.GetTokenClaim(c)
	if !ok {
		return unauthorized(c)
	}
	input, ok := c.Locals("inputCreateBooking").(model.CreateBookingInput)
	if !ok {
		return parseLocalsError(c)
	}

	booking, available, err := h.bookings.Create(c.UserContext(), claim.UserId, *input.EventId, *input.SeatCount)
	if err != nil {
		return h.serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{
		"message":         constants.BOOKING_CREATED,
		"booking":         booking.ToResponse(),
		"available_seats": available,
	})
}

func (h *Handler) GetMyBookings(c *fiber.Ctx) error {
	claim, ok := helper.GetTokenClaim(c)
	if !ok {
		return unauthorized(c)
	}

	rows, err := h.bookings.ListMine(c.UserContext(), claim.UserId)
	if err != nil {
		return h.serviceError(c, err)
	}

	result := make([]model.MyBookingResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.ToResponse())
	}
	return utils.SuccessResponse(c, fiber.StatusOK, result)
}

// GetBookingQRCode renders the booking reference as a PNG ticket.
func (h *Handler) GetBookingQRCode(c *fiber.Ctx) error {
	claim, ok := helper.GetTokenClaim(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return parseLocalsError(c)
	}

	booking, err := h.bookings.Get(c.UserContext(), claim.UserId, id)
	if err != nil {
		return h.serviceError(c, err)
	}

	png, err := utils.GenerateQRCode(booking.Reference, utils.QRCodeSize)
	if err != nil {
		return h.serviceError(c, err)
	}

	c.Type("png")
	return c.Status(fiber.StatusOK).Send(png)
}

func (h *Handler) CancelBooking(c *fiber.Ctx) error {
	claim, ok := helper.GetTokenClaim(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return parseLocalsError(c)
	}

	available, err := h.bookings.Cancel(c.UserContext(), claim.UserId, id)
	if err != nil {
		return h.serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"message":         constants.BOOKING_CANCELLED,
		"available_seats": available,
	})
}
