package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/miyakawa-dev/salonflow/internal/service"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
)

type ReviewHandler struct {
	s service.ReviewService
}

func NewReviewHandler(service service.ReviewService) *ReviewHandler {
	return &ReviewHandler{s: service}
}

func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")

	var req transfer.ReviewCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	review, err := h.s.Create(c.Context(), userID, int64(shopID), req)
	if err != nil {
		return reviewError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) ListReviews(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")
	status := c.Query("status")
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	reviews, total, err := h.s.List(c.Context(), userID, int64(shopID), status, limit, offset)
	if err != nil {
		return reviewError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"reviews": reviews,
		"total":   total,
	})
}

func (h *ReviewHandler) GetReview(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")
	reviewID, _ := c.ParamsInt("reviewID")

	review, err := h.s.Get(c.Context(), userID, int64(shopID), int64(reviewID))
	if err != nil {
		return reviewError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(review)
}

func (h *ReviewHandler) ReplyReview(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")
	reviewID, _ := c.ParamsInt("reviewID")

	var req transfer.ReviewReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	review, err := h.s.Reply(c.Context(), userID, int64(shopID), int64(reviewID), req.Reply)
	if err != nil {
		return reviewError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(review)
}

func (h *ReviewHandler) SuggestReply(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")
	reviewID, _ := c.ParamsInt("reviewID")

	reply, err := h.s.SuggestReply(c.Context(), userID, int64(shopID), int64(reviewID))
	if err != nil {
		return reviewError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"reply": reply})
}

func (h *ReviewHandler) ReviewStats(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")

	stats, err := h.s.Stats(c.Context(), userID, int64(shopID))
	if err != nil {
		return reviewError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

func reviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrShopNotFound), errors.Is(err, service.ErrReviewNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
