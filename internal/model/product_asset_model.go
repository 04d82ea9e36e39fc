package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProductAsset struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopId           uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_shop_product"`
	ProductId        string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_shop_product"`
	SourceImageRef   string         `gorm:"type:text"`
	PreparedImageRef string         `gorm:"type:text"`
	ImageVersion     int            `gorm:"not null;default:0"`
	Status           string         `gorm:"type:varchar(16);not null;index;default:'pending'"`
	PrepStrategy     string         `gorm:"type:varchar(16);not null;default:'manual'"`
	RetryCount       int            `gorm:"not null;default:0"`
	ErrorMessage     string         `gorm:"type:text"`
	Enabled          bool           `gorm:"not null;default:false"`
	RenderOverrides  datatypes.JSON `gorm:"type:jsonb"`

	ProviderFileURI       string     `gorm:"type:text"`
	ProviderFileExpiresAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ProductAsset) TableName() string {
	return "product_assets"
}
