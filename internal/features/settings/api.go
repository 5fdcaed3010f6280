package settings

import (
	"board-sync/internal/common/api"
	"board-sync/internal/config"
	"board-sync/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SettingsApi struct {
	Controller *SettingsController
	Config     *config.Config
}

func NewSettingsApi(controller *SettingsController, config *config.Config) api.Route {
	return &SettingsApi{
		Controller: controller,
		Config:     config,
	}
}

func (a *SettingsApi) Setup(app *fiber.App) {
	group := app.Group("/api/settings")

	// The board page reads its display name without a token.
	group.Get("/", a.Controller.GetSettings)
	group.Put("/notification-email", middleware.AuthMiddleware(a.Config.SkipAuth), a.Controller.UpdateNotificationEmail)
}
