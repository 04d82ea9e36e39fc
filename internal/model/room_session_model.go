package model

import (
	"time"

	"github.com/google/uuid"
)

type RoomSession struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopId           uuid.UUID `gorm:"type:uuid;not null;index"`
	OriginalImageRef string    `gorm:"type:text"`
	CleanedImageRef  string    `gorm:"type:text"`

	ProviderFileURI       string     `gorm:"type:text"`
	ProviderFileExpiresAt *time.Time `gorm:"type:timestamptz"`

	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (RoomSession) TableName() string {
	return "room_sessions"
}

type RenderJob struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopId         uuid.UUID  `gorm:"type:uuid;not null;index"`
	SessionId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Kind           string     `gorm:"type:varchar(16);not null"`
	Status         string     `gorm:"type:varchar(16);not null;index;default:'queued'"`
	OutputImageRef string     `gorm:"type:text"`
	ErrorCode      string     `gorm:"type:varchar(64)"`
	ErrorMessage   string     `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	CompletedAt    *time.Time `gorm:"type:timestamptz"`
}

func (RenderJob) TableName() string {
	return "render_jobs"
}
