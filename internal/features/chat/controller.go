package chat

import (
	"board-sync/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type ChatController struct {
	Service ChatService
}

func NewChatController(service ChatService) *ChatController {
	return &ChatController{
		Service: service,
	}
}

// PurgeChats godoc
// @Summary Delete every chat message
// @Tags chat
// @Produce json
// @Param key query string true "Purge secret"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/chats/purge [delete]
func (ctrl *ChatController) PurgeChats(c *fiber.Ctx) error {
	n, err := ctrl.Service.Purge(c.UserContext(), c.Query("key"))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnauthorized {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"deleted": n,
	})
}
