package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/miyakawa-dev/salonflow/internal/service"
)

type DashboardHandler struct {
	s service.DashboardService
}

func NewDashboardHandler(service service.DashboardService) *DashboardHandler {
	return &DashboardHandler{s: service}
}

func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")

	summary, err := h.s.Summary(c.Context(), userID, int64(shopID))
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}
