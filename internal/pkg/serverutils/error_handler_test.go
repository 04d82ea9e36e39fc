package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"ai-roomviz-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(err error) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return err
	})
	return app
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", dto.NewValidationError("variants", "too many"), fiber.StatusBadRequest},
		{"quota exceeded", &dto.QuotaExceededError{Limit: 10, Used: 10}, fiber.StatusTooManyRequests},
		{"not found", dto.NewNotFoundError("shop"), fiber.StatusNotFound},
		{"provider failure", &dto.ProviderError{Op: "generate", Err: errors.New("timeout")}, fiber.StatusBadGateway},
		{"storage failure", &dto.StorageError{Op: "upload", Key: "a.jpg", Err: errors.New("denied")}, fiber.StatusBadGateway},
		{"fiber error", fiber.ErrUnauthorized, fiber.StatusUnauthorized},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tt.err)

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestErrorHandlerQuotaPayload(t *testing.T) {
	reset := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	app := newTestApp(&dto.QuotaExceededError{Limit: 10, Used: 13, ResetAfter: reset})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var body BaseResponse[dto.QuotaExceededData]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Code != 429 {
		t.Errorf("code = %d, want 429", body.Code)
	}
	if body.Data.Remaining != 0 {
		t.Errorf("remaining = %d, want clamped to 0", body.Data.Remaining)
	}
	if body.Data.Limit != 10 || body.Data.Used != 13 {
		t.Errorf("payload = %d/%d, want 10/13", body.Data.Limit, body.Data.Used)
	}
}

func TestErrorHandlerPassesThroughSuccess(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/ok", func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", fiber.Map{}))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
