package chat

import (
	"board-sync/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type ChatApi struct {
	controller *ChatController
}

func NewChatApi(controller *ChatController) api.Route {
	return &ChatApi{
		controller: controller,
	}
}

// Setup registers the purge route. It is guarded by its query key, not by JWT.
func (h *ChatApi) Setup(app *fiber.App) {
	group := app.Group("/api/chats")

	group.Delete("/purge", h.controller.PurgeChats)
	group.Post("/purge", h.controller.PurgeChats)
}
