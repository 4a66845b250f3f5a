package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/miyakawa-dev/salonflow/internal/instagram"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// publishError maps the publish error taxonomy onto HTTP responses.
// Provider messages for container/publish failures pass through
// verbatim since they name the violated constraint.
func publishError(c *fiber.Ctx, err error) error {
	kind, ok := instagram.KindOf(err)
	if !ok {
		return postError(c, err)
	}

	switch kind {
	case instagram.KindReconnectRequired:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
			"code":  kind.String(),
		})
	case instagram.KindContainerCreation, instagram.KindPublish:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
			"code":  kind.String(),
		})
	case instagram.KindTransient:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
			"code":  kind.String(),
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  kind.String(),
		})
	}
}
