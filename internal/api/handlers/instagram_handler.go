package handlers

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/miyakawa-dev/salonflow/configs"
	"github.com/miyakawa-dev/salonflow/internal/instagram"
	"github.com/miyakawa-dev/salonflow/internal/service"
	"github.com/miyakawa-dev/salonflow/pkg/utils"
)

type InstagramHandler struct {
	ig  service.InstagramService
	cfg config.Config
}

func NewInstagramHandler(cfg config.Config, ig service.InstagramService) *InstagramHandler {
	return &InstagramHandler{ig: ig, cfg: cfg}
}

// Connect redirects to the Facebook login dialog. The state parameter
// is a short-lived JWT identifying the user, validated again on the
// callback since the provider redirect arrives without a session.
func (h *InstagramHandler) Connect(c *fiber.Ctx) error {
	userID := GetUserID(c)

	state, err := utils.GenerateToken(h.cfg.SecretKey, fmt.Sprintf("%d", userID), 10*time.Minute)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	return c.Redirect(h.ig.AuthURL(state))
}

func (h *InstagramHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/settings/integrations", h.cfg.FrontendURL)

	if err := h.ig.Connect(c.Context(), userID, code); err != nil {
		// The frontend shows different remediation copy for "link a
		// business account" vs "try connecting again".
		if instagram.IsKind(err, instagram.KindAccountNotFound) {
			return c.Redirect(redirectURL+"?error=no_business_account", fiber.StatusTemporaryRedirect)
		}
		return c.Redirect(redirectURL+"?error=connect_failed", fiber.StatusTemporaryRedirect)
	}

	return c.Redirect(redirectURL+"?success=true", fiber.StatusTemporaryRedirect)
}

func (h *InstagramHandler) Status(c *fiber.Ctx) error {
	userID := GetUserID(c)

	status, err := h.ig.Status(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to fetch connection status",
		})
	}

	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *InstagramHandler) Disconnect(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.ig.Disconnect(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to disconnect instagram",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
