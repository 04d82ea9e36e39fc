package serverutils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"os"

	"github.com/gofiber/fiber/v2"
)

// WebhookMiddleware verifies the platform's HMAC signature over the raw
// request body before any webhook handler runs.
func WebhookMiddleware(ctx *fiber.Ctx) error {
	secret := os.Getenv("WEBHOOK_SECRET")
	signature := ctx.Get("X-Webhook-Hmac-Sha256")
	if secret == "" || signature == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing signature"})
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(ctx.Body())
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid signature"})
	}
	return ctx.Next()
}
