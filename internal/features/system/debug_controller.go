package system

import (
	"board-sync/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type DebugController struct{}

func NewDebugController() *DebugController {
	return &DebugController{}
}

// GetCaller godoc
// @Summary      Get caller info
// @Description  Echo the claims of the presented token
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/debug/me [get]
func (c *DebugController) GetCaller(ctx *fiber.Ctx) error {
	claims, _ := ctx.Locals(utils.ClaimsKey).(*utils.Claims)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no claims"})
	}

	resp := fiber.Map{"caller": claims.Caller}
	if claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Time
	}
	return ctx.JSON(resp)
}
