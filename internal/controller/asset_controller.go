package controller

import (
	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/pkg/serverutils"
	"ai-roomviz-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssetController interface {
	RegisterRoutes(r fiber.Router)
	Prepare(ctx *fiber.Ctx) error
	BatchPrepare(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Toggle(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
}

type assetController struct {
	assetService service.IAssetService
}

func NewAssetController(assetService service.IAssetService) IAssetController {
	return &assetController{
		assetService: assetService,
	}
}

func (c *assetController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/asset/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("prepare", c.Prepare)
	h.Post("prepare/batch", c.BatchPrepare)
	h.Get(":productId/status", c.Status)
	h.Put(":productId/toggle", c.Toggle)
	h.Post(":productId/retry", c.Retry)
}

func (c *assetController) Prepare(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)

	var req dto.PrepareAssetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assetService.Prepare(ctx.Context(), shopDomain, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success queue asset preparation", res))
}

func (c *assetController) BatchPrepare(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)

	var req dto.BatchPrepareRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assetService.BatchPrepare(ctx.Context(), shopDomain, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success queue batch preparation", res))
}

func (c *assetController) Status(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)
	productId := ctx.Params("productId")

	res, err := c.assetService.Status(ctx.Context(), shopDomain, productId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show asset status", res))
}

func (c *assetController) Toggle(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)

	var req dto.ToggleAssetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ProductId = ctx.Params("productId")
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assetService.Toggle(ctx.Context(), shopDomain, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle asset", res))
}

func (c *assetController) Retry(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)
	productId := ctx.Params("productId")

	res, err := c.assetService.Retry(ctx.Context(), shopDomain, productId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success queue asset retry", res))
}
