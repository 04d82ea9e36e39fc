package controller

import (
	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/pkg/serverutils"
	"ai-roomviz-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Install(ctx *fiber.Ctx) error
	Uninstall(ctx *fiber.Ctx) error
	Redact(ctx *fiber.Ctx) error
}

type webhookController struct {
	shopService service.IShopService
}

func NewWebhookController(shopService service.IShopService) IWebhookController {
	return &webhookController{
		shopService: shopService,
	}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook/v1")
	h.Use(serverutils.WebhookMiddleware)
	h.Post("install", c.Install)
	h.Post("uninstall", c.Uninstall)
	h.Post("redact", c.Redact)
}

func (c *webhookController) Install(ctx *fiber.Ctx) error {
	var req dto.InstallWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.shopService.Install(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success install shop", nil))
}

func (c *webhookController) Uninstall(ctx *fiber.Ctx) error {
	var req dto.UninstallWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.shopService.Uninstall(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success uninstall shop", nil))
}

func (c *webhookController) Redact(ctx *fiber.Ctx) error {
	var req dto.RedactWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.shopService.Redact(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success redact shop data", nil))
}
