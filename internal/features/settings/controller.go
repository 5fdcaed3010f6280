package settings

import (
	"board-sync/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type SettingsController struct {
	Service SettingsService
}

func NewSettingsController(service SettingsService) *SettingsController {
	return &SettingsController{
		Service: service,
	}
}

// GetSettings godoc
// @Summary Get board settings
// @Tags settings
// @Produce json
// @Success 200 {object} Settings
// @Failure 500 {object} map[string]interface{}
// @Router /api/settings [get]
func (ctrl *SettingsController) GetSettings(c *fiber.Ctx) error {
	settings, err := ctrl.Service.Get(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(settings)
}

// UpdateNotificationEmail godoc
// @Summary Set the address that receives attendance and chat notifications
// @Tags settings
// @Accept json
// @Produce json
// @Param body body NotificationEmailRequest true "Recipient"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/settings/notification-email [put]
func (ctrl *SettingsController) UpdateNotificationEmail(c *fiber.Ctx) error {
	var req NotificationEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.SetNotificationEmail(c.UserContext(), req.Email); err != nil {
		if apperr.KindOf(err) == apperr.KindFailedPrecondition {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid email address",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error updating notification email",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notification email updated successfully",
	})
}
