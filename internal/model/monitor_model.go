package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MonitorEvent struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunId     *uuid.UUID     `gorm:"type:uuid;index"`
	ShopId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type      string         `gorm:"type:varchar(64);not null"`
	Severity  string         `gorm:"type:varchar(8);not null;default:'info'"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (MonitorEvent) TableName() string {
	return "monitor_events"
}

type MonitorArtifact struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunId       uuid.UUID `gorm:"type:uuid;not null;index"`
	ShopId      uuid.UUID `gorm:"type:uuid;not null;index"`
	BlobKey     string    `gorm:"type:text;not null"`
	ByteSize    int64     `gorm:"not null;default:0"`
	ContentType string    `gorm:"type:varchar(128)"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (MonitorArtifact) TableName() string {
	return "monitor_artifacts"
}
