package handler

import (
	"context"
	"io"

	"event_hub/constants"
	"event_hub/service"
	"event_hub/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ImageUploader stores an uploaded image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, r io.Reader, filename string) (string, error)
}

// Handler holds the services the HTTP routes call into.
type Handler struct {
	auth     *service.AuthService
	events   *service.EventService
	bookings *service.BookingService
	hub      *SeatHub
	uploader ImageUploader
	log      *zap.Logger
}

// NewHandler wires the route handlers. uploader may be nil, in which case
// image uploads answer 503.
func NewHandler(
	auth *service.AuthService,
	events *service.EventService,
	bookings *service.BookingService,
	hub *SeatHub,
	uploader ImageUploader,
	log *zap.Logger,
) *Handler {
	return &Handler{
		auth:     auth,
		events:   events,
		bookings: bookings,
		hub:      hub,
		uploader: uploader,
		log:      log,
	}
}

func Root(c *fiber.Ctx) error {
	return c.SendString("EventHub API is running!")
}

var kindStatus = map[service.Kind]int{
	service.KindValidation:    fiber.StatusBadRequest,
	service.KindUnauthorized:  fiber.StatusUnauthorized,
	service.KindForbidden:     fiber.StatusForbidden,
	service.KindNotFound:      fiber.StatusNotFound,
	service.KindConflict:      fiber.StatusConflict,
	service.KindUnprocessable: fiber.StatusUnprocessableEntity,
}

// serviceError answers err with the status of its kind. Internal failures
// are logged and hidden behind a generic message.
func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	svcErr, ok := service.AsError(err)
	if ok {
		if status, known := kindStatus[svcErr.Kind]; known {
			return utils.ErrorResponse(c, status, svcErr.Message, svcErr.Fields)
		}
	}

	h.log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, nil)
}

// unauthorized answers a request that reached a handler without claims.
func unauthorized(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.MISSING_TOKEN, nil)
}

func inputId(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("inputId").(uint)
	return id, ok
}

func parseLocalsError(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, nil)
}
