package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/internal/queue"
	"github.com/miyakawa-dev/salonflow/internal/service"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
)

type PostHandler struct {
	s           service.PostService
	AsynqClient *asynq.Client
}

func NewPostHandler(service service.PostService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: service, AsynqClient: asynqClient}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")

	var req transfer.PostCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Create(c.Context(), userID, int64(shopID), req)
	if err != nil {
		return postError(c, err)
	}

	if post.Status == models.PostStatusScheduled {
		delay := time.Until(post.ScheduledAt.Time)
		if delay < 0 {
			delay = 0
		}
		if err := queue.EnqueuePublish(h.AsynqClient, queue.PublishPostPayload{PostID: post.ID}, delay); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error scheduling post",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")
	status := c.Query("status")
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	posts, total, err := h.s.List(c.Context(), userID, int64(shopID), status, limit, offset)
	if err != nil {
		return postError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts": posts,
		"total": total,
	})
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")
	postID, _ := c.ParamsInt("postID")

	post, err := h.s.Get(c.Context(), userID, int64(shopID), int64(postID))
	if err != nil {
		return postError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")
	postID, _ := c.ParamsInt("postID")

	var req transfer.PostUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Update(c.Context(), userID, int64(shopID), int64(postID), req)
	if err != nil {
		return postError(c, err)
	}

	if post.Status == models.PostStatusScheduled && req.ScheduledAt != nil {
		delay := time.Until(post.ScheduledAt.Time)
		if delay < 0 {
			delay = 0
		}
		if err := queue.EnqueuePublish(h.AsynqClient, queue.PublishPostPayload{PostID: post.ID}, delay); err != nil {
			slog.Info(err.Error())
		}
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")
	postID, _ := c.ParamsInt("postID")

	if err := h.s.Delete(c.Context(), userID, int64(shopID), int64(postID)); err != nil {
		return postError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")
	postID, _ := c.ParamsInt("postID")

	post, err := h.s.Publish(c.Context(), userID, int64(shopID), int64(postID))
	if err != nil {
		return publishError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) PostStats(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")

	stats, err := h.s.Stats(c.Context(), userID, int64(shopID))
	if err != nil {
		return postError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *PostHandler) PostInsights(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")
	postID, _ := c.ParamsInt("postID")

	snapshot, err := h.s.Insights(c.Context(), userID, int64(shopID), int64(postID))
	if err != nil {
		return postError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(snapshot)
}

func postError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrShopNotFound), errors.Is(err, service.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrPostPublished), errors.Is(err, service.ErrPostNotPublished):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
