package handler

import (
	"strings"

	"event_hub/constants"
	"event_hub/helper"
	"event_hub/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxImageSize = 10 * 1024 * 1024

// UploadImage stores an organizer's image and returns its URL for use as
// an event image.
func (h *Handler) UploadImage(c *fiber.Ctx) error {
	if h.uploader == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, constants.UPLOADS_DISABLED, nil)
	}

	claim, ok := helper.GetTokenClaim(c)
	if !ok {
		return unauthorized(c)
	}
	user, err := h.auth.Identify(c.UserContext(), claim.UserId)
	if err != nil {
		return h.serviceError(c, err)
	}
	if !user.IsOrganizer {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_AN_ORGANIZER, nil)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_IMAGE_FILE, nil)
	}
	if !strings.HasPrefix(file.Header.Get(fiber.HeaderContentType), "image/") {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_IMAGE_FILE, fiber.Map{
			"content_type": file.Header.Get(fiber.HeaderContentType),
		})
	}
	if file.Size > maxImageSize {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.IMAGE_TOO_LARGE, fiber.Map{
			"max_bytes": maxImageSize,
		})
	}

	reader, err := file.Open()
	if err != nil {
		return h.serviceError(c, err)
	}
	defer reader.Close()

	url, err := h.uploader.Upload(c.UserContext(), reader, file.Filename)
	if err != nil {
		return h.serviceError(c, err)
	}

	h.log.Info("image uploaded", zap.Uint("user_id", user.ID), zap.String("url", url))
	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{"url": url})
}
