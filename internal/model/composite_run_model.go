package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CompositeRun struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopId            uuid.UUID      `gorm:"type:uuid;not null;index"`
	ProductId         string         `gorm:"type:varchar(64);not null"`
	SessionId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status            string         `gorm:"type:varchar(16);not null;index;default:'in_flight'"`
	PlacementSnapshot datatypes.JSON `gorm:"type:jsonb"`
	FactsSnapshot     datatypes.JSON `gorm:"type:jsonb"`
	RequestedVariants int            `gorm:"not null"`
	TotalDurationMs   *int64         `gorm:""`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	CompletedAt       *time.Time     `gorm:"type:timestamptz"`
}

func (CompositeRun) TableName() string {
	return "composite_runs"
}

type VariantResult struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunId          uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_run_variant"`
	VariantKey     string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_run_variant"`
	Status         string    `gorm:"type:varchar(16);not null"`
	LatencyMs      *int64    `gorm:""`
	ErrorMessage   string    `gorm:"type:text"`
	OutputImageRef string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (VariantResult) TableName() string {
	return "variant_results"
}
