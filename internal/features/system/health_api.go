package system

import (
	"context"
	"time"

	"board-sync/internal/common/api"
	"board-sync/internal/database"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Pinger reports whether the document database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type mongoPinger struct {
	db *database.MongodbDB
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.db.Client.Ping(ctx, readpref.Primary())
}

type HealthApi struct {
	pinger Pinger
}

func NewHealthApi(mongodb *database.MongodbDB) api.Route {
	return &HealthApi{pinger: mongoPinger{db: mongodb}}
}

// Health godoc
// @Summary      Health Check
// @Description  Check if the server and its database are up
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthApi) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"database": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.Health)
}
