package serverutils

import (
	"errors"

	"ai-roomviz-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps service-layer typed errors to HTTP responses.
// Controllers just return errors; nothing below this layer writes statuses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *dto.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(400, validationErr.Error()))
		}

		var quotaErr *dto.QuotaExceededError
		if errors.As(err, &quotaErr) {
			remaining := quotaErr.Limit - quotaErr.Used
			if remaining < 0 {
				remaining = 0
			}
			return ctx.Status(fiber.StatusTooManyRequests).
				JSON(ErrorResponseWithData(429, quotaErr.Error(), dto.QuotaExceededData{
					Limit:      quotaErr.Limit,
					Used:       quotaErr.Used,
					Remaining:  remaining,
					ResetAfter: quotaErr.ResetAfter,
				}))
		}

		var notFoundErr *dto.NotFoundError
		if errors.As(err, &notFoundErr) {
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(404, notFoundErr.Error()))
		}

		var providerErr *dto.ProviderError
		if errors.As(err, &providerErr) {
			return ctx.Status(fiber.StatusBadGateway).
				JSON(ErrorResponse(502, "upstream provider error"))
		}

		var storageErr *dto.StorageError
		if errors.As(err, &storageErr) {
			return ctx.Status(fiber.StatusBadGateway).
				JSON(ErrorResponse(502, "storage error"))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(500, "internal server error"))
	}
}
