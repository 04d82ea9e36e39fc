package dto

import (
	"time"

	"github.com/google/uuid"
)

// VariantSpec describes one placement/prompt strategy within a run.
type VariantSpec struct {
	Key       string                 `json:"key" validate:"required"`
	Prompt    string                 `json:"prompt,omitempty"`
	Placement map[string]interface{} `json:"placement,omitempty"`
}

type CreateRunRequest struct {
	ProductId string        `json:"product_id" validate:"required"`
	SessionId uuid.UUID     `json:"session_id" validate:"required"`
	Variants  []VariantSpec `json:"variants" validate:"required,min=1,dive"`
}

type CreateRunResponse struct {
	RunId  uuid.UUID `json:"run_id"`
	Status string    `json:"status"`
}

type VariantResultResponse struct {
	VariantKey     string `json:"variant_key"`
	Status         string `json:"status"`
	LatencyMs      *int64 `json:"latency_ms,omitempty"`
	OutputImageRef string `json:"output_image_ref,omitempty"`
	OutputImageURL string `json:"output_image_url,omitempty"`
	Error          string `json:"error,omitempty"`
}

type RunDetailResponse struct {
	RunId           uuid.UUID               `json:"run_id"`
	Status          string                  `json:"status"`
	TotalDurationMs *int64                  `json:"total_duration_ms,omitempty"`
	Variants        []VariantResultResponse `json:"variants"`
	CreatedAt       time.Time               `json:"created_at"`
	CompletedAt     *time.Time              `json:"completed_at,omitempty"`
}
