package sync

import (
	"board-sync/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service SyncService
}

func NewSyncController(service SyncService) *SyncController {
	return &SyncController{
		Service: service,
	}
}

// RunSync godoc
// @Summary Replace the synced collections with the current spreadsheet contents
// @Tags sync
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/sync [post]
func (ctrl *SyncController) RunSync(c *fiber.Ctx) error {
	result, err := ctrl.Service.Sync(c.UserContext(), "http")
	if err != nil {
		return syncError(c, err)
	}
	return c.JSON(result)
}

// ListSyncRuns godoc
func (ctrl *SyncController) ListSyncRuns(c *fiber.Ctx) error {
	runs, err := ctrl.Service.ListRuns(c.UserContext(), int64(c.QueryInt("limit", 20)))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": runs,
	})
}

// syncError reports every failure with kind "internal"; the underlying
// classification is exposed as reason and retryable. A held lease is a 409.
func syncError(c *fiber.Ctx, err error) error {
	// Every failure reports kind internal; reason carries the classification.
	reason := apperr.KindOf(err)
	status := fiber.StatusInternalServerError
	if reason == apperr.KindConflict {
		status = fiber.StatusConflict
	}

	return c.Status(status).JSON(fiber.Map{
		"status":    "error",
		"kind":      "internal",
		"reason":    reason,
		"message":   err.Error(),
		"retryable": apperr.Retryable(err),
	})
}
