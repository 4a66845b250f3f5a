package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/internal/service"
)

type ShopHandler struct {
	s service.ShopService
}

func NewShopHandler(service service.ShopService) *ShopHandler {
	return &ShopHandler{s: service}
}

func (h *ShopHandler) CreateShop(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var shop models.Shop
	if err := c.BodyParser(&shop); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	created, err := h.s.Create(c.Context(), userID, &shop)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *ShopHandler) ListShops(c *fiber.Ctx) error {
	userID := GetUserID(c)

	shops, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch shops",
		})
	}

	return c.Status(fiber.StatusOK).JSON(shops)
}

func (h *ShopHandler) GetShop(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")

	shop, err := h.s.Get(c.Context(), userID, int64(shopID))
	if err != nil {
		return shopError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(shop)
}

func (h *ShopHandler) UpdateShop(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")

	var shop models.Shop
	if err := c.BodyParser(&shop); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	shop.ID = int64(shopID)

	updated, err := h.s.Update(c.Context(), userID, &shop)
	if err != nil {
		return shopError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *ShopHandler) RemoveShop(c *fiber.Ctx) error {
	userID := GetUserID(c)
	shopID, _ := c.ParamsInt("shopID")

	if err := h.s.Delete(c.Context(), userID, int64(shopID)); err != nil {
		return shopError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func shopError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrShopNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
