package controller

import (
	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/pkg/serverutils"
	"ai-roomviz-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRunController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type runController struct {
	runService service.IRunService
}

func NewRunController(runService service.IRunService) IRunController {
	return &runController{
		runService: runService,
	}
}

func (c *runController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/run/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
}

func (c *runController) Create(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)

	var req dto.CreateRunRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.runService.CreateRun(ctx.Context(), shopDomain, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create composite run", res))
}

func (c *runController) Show(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)
	runId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.NewValidationError("id", "invalid run id")
	}

	res, err := c.runService.GetRun(ctx.Context(), shopDomain, runId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show composite run", res))
}
