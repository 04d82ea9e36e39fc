package serverutils

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
)

// CronMiddleware guards maintenance endpoints. The scheduler sends the
// shared secret in X-Cron-Secret.
func CronMiddleware(ctx *fiber.Ctx) error {
	secret := os.Getenv("CRON_SECRET")
	provided := ctx.Get("X-Cron-Secret")
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(provided)) != 1 {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid cron secret"})
	}
	return ctx.Next()
}
