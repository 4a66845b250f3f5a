package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/miyakawa-dev/salonflow/internal/service"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
)

const maxUploadBytes = 8 << 20

type MediaHandler struct {
	media *service.MediaService
	ai    service.AIService
}

func NewMediaHandler(media *service.MediaService, ai service.AIService) *MediaHandler {
	return &MediaHandler{media: media, ai: ai}
}

func (h *MediaHandler) UploadImage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "image file is required",
		})
	}
	if fileHeader.Size > maxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "image exceeds the 8MB limit",
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to read uploaded file",
		})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to read uploaded file",
		})
	}

	url, err := h.media.UploadImage(c.Context(), userID, data)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}

func (h *MediaHandler) SuggestCaption(c *fiber.Ctx) error {
	var req transfer.CaptionSuggestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	suggestion, err := h.ai.SuggestCaption(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(suggestion)
}
