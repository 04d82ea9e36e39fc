package mapper

import (
	"time"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/model"

	"gorm.io/datatypes"
)

type ProductAssetMapper struct{}

func NewProductAssetMapper() *ProductAssetMapper {
	return &ProductAssetMapper{}
}

func (m *ProductAssetMapper) ToEntity(a *model.ProductAsset) *entity.ProductAsset {
	if a == nil {
		return nil
	}

	var updatedAt *time.Time
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		updatedAt = &t
	}

	return &entity.ProductAsset{
		Id:                    a.Id,
		ShopId:                a.ShopId,
		ProductId:             a.ProductId,
		SourceImageRef:        a.SourceImageRef,
		PreparedImageRef:      a.PreparedImageRef,
		ImageVersion:          a.ImageVersion,
		Status:                entity.AssetStatus(a.Status),
		PrepStrategy:          entity.PrepStrategy(a.PrepStrategy),
		RetryCount:            a.RetryCount,
		ErrorMessage:          a.ErrorMessage,
		Enabled:               a.Enabled,
		RenderOverrides:       []byte(a.RenderOverrides),
		ProviderFileURI:       a.ProviderFileURI,
		ProviderFileExpiresAt: a.ProviderFileExpiresAt,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             updatedAt,
	}
}

func (m *ProductAssetMapper) ToModel(a *entity.ProductAsset) *model.ProductAsset {
	if a == nil {
		return nil
	}

	var updatedAt time.Time
	if a.UpdatedAt != nil {
		updatedAt = *a.UpdatedAt
	}

	return &model.ProductAsset{
		Id:                    a.Id,
		ShopId:                a.ShopId,
		ProductId:             a.ProductId,
		SourceImageRef:        a.SourceImageRef,
		PreparedImageRef:      a.PreparedImageRef,
		ImageVersion:          a.ImageVersion,
		Status:                string(a.Status),
		PrepStrategy:          string(a.PrepStrategy),
		RetryCount:            a.RetryCount,
		ErrorMessage:          a.ErrorMessage,
		Enabled:               a.Enabled,
		RenderOverrides:       datatypes.JSON(a.RenderOverrides),
		ProviderFileURI:       a.ProviderFileURI,
		ProviderFileExpiresAt: a.ProviderFileExpiresAt,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             updatedAt,
	}
}

func (m *ProductAssetMapper) ToEntities(assets []*model.ProductAsset) []*entity.ProductAsset {
	entities := make([]*entity.ProductAsset, len(assets))
	for i, a := range assets {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
