package controller

import (
	"time"

	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/pkg/serverutils"
	"ai-roomviz-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMaintenanceController interface {
	RegisterRoutes(r fiber.Router)
	Prune(ctx *fiber.Ctx) error
}

type maintenanceController struct {
	telemetryService service.ITelemetryService
	eventMaxAge      time.Duration
	pruneBatchSize   int
}

func NewMaintenanceController(
	telemetryService service.ITelemetryService,
	eventMaxAge time.Duration,
	pruneBatchSize int,
) IMaintenanceController {
	return &maintenanceController{
		telemetryService: telemetryService,
		eventMaxAge:      eventMaxAge,
		pruneBatchSize:   pruneBatchSize,
	}
}

func (c *maintenanceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/maintenance/v1")
	h.Use(serverutils.CronMiddleware)
	h.Post("prune", c.Prune)
}

func (c *maintenanceController) Prune(ctx *fiber.Ctx) error {
	events, artifacts, err := c.telemetryService.Prune(ctx.Context(), c.eventMaxAge, c.pruneBatchSize)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success prune telemetry", dto.PruneResponse{
		EventsDeleted:    events,
		ArtifactsDeleted: artifacts,
	}))
}
