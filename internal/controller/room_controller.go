package controller

import (
	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/pkg/serverutils"
	"ai-roomviz-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRoomController interface {
	RegisterRoutes(r fiber.Router)
	StartSession(ctx *fiber.Ctx) error
	AttachImage(ctx *fiber.Ctx) error
	CleanupRoom(ctx *fiber.Ctx) error
	PollJob(ctx *fiber.Ctx) error
}

type roomController struct {
	roomService service.IRoomService
}

func NewRoomController(roomService service.IRoomService) IRoomController {
	return &roomController{
		roomService: roomService,
	}
}

func (c *roomController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/room/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("session", c.StartSession)
	h.Put("session/:id/image", c.AttachImage)
	h.Post("session/:id/cleanup", c.CleanupRoom)
	h.Get("job/:id", c.PollJob)
}

func (c *roomController) StartSession(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)

	res, err := c.roomService.StartSession(ctx.Context(), shopDomain)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start room session", res))
}

func (c *roomController) AttachImage(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.NewValidationError("id", "invalid session id")
	}

	var req dto.AttachImageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = sessionId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.roomService.AttachImage(ctx.Context(), shopDomain, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success attach room image", res))
}

func (c *roomController) CleanupRoom(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.NewValidationError("id", "invalid session id")
	}

	var req dto.CleanupRoomRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = sessionId

	res, err := c.roomService.CleanupRoom(ctx.Context(), shopDomain, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success queue room cleanup", res))
}

func (c *roomController) PollJob(ctx *fiber.Ctx) error {
	shopDomain := ctx.Locals("shop_domain").(string)
	jobId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.NewValidationError("id", "invalid job id")
	}

	res, err := c.roomService.PollJob(ctx.Context(), shopDomain, jobId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success poll job", res))
}
