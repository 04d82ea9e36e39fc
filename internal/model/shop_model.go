package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Shop struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Domain      string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	AccessToken string         `gorm:"type:varchar(255)"`
	Settings    datatypes.JSON `gorm:"type:jsonb"`
	InstalledAt time.Time      `gorm:"not null"`

	GenerationDailyUsage   int       `gorm:"not null;default:0"`
	GenerationMonthlyUsage int       `gorm:"not null;default:0"`
	GenerationDailyLimit   int       `gorm:"not null;default:50"`
	GenerationMonthlyLimit int       `gorm:"not null;default:500"`
	CleanupDailyUsage      int       `gorm:"not null;default:0"`
	CleanupMonthlyUsage    int       `gorm:"not null;default:0"`
	LastDailyReset         time.Time `gorm:"not null"`
	LastMonthlyReset       time.Time `gorm:"not null"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Shop) TableName() string {
	return "shops"
}
