package serverutils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http/httptest"
	"testing"

	"ai-roomviz-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestValidateRequest(t *testing.T) {
	type payload struct {
		ProductId string `json:"product_id" validate:"required"`
	}

	err := ValidateRequest(payload{ProductId: "123"})
	assert.NoError(t, err)

	err = ValidateRequest(payload{})
	var validationErr *dto.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "ProductId", validationErr.Field)
}

func TestWebhookMiddlewareSignatures(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "topsecret")

	app := fiber.New()
	app.Use(WebhookMiddleware)
	app.Post("/hook", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})

	body := []byte(`{"shop_domain":"example.myshopify.com"}`)
	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write(body)
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest("POST", "/hook", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Hmac-Sha256", signature)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("POST", "/hook", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Hmac-Sha256", "bogus")
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("POST", "/hook", bytes.NewReader(body))
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCronMiddleware(t *testing.T) {
	t.Setenv("CRON_SECRET", "cron-secret")

	app := fiber.New()
	app.Use(CronMiddleware)
	app.Post("/prune", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/prune", nil)
	req.Header.Set("X-Cron-Secret", "cron-secret")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("POST", "/prune", nil)
	req.Header.Set("X-Cron-Secret", "wrong")
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
