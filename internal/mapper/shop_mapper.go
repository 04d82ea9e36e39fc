package mapper

import (
	"time"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ShopMapper struct{}

func NewShopMapper() *ShopMapper {
	return &ShopMapper{}
}

func (m *ShopMapper) ToEntity(s *model.Shop) *entity.Shop {
	if s == nil {
		return nil
	}

	var uninstalledAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		uninstalledAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Shop{
		Id:                     s.Id,
		Domain:                 s.Domain,
		AccessToken:            s.AccessToken,
		Settings:               []byte(s.Settings),
		InstalledAt:            s.InstalledAt,
		UninstalledAt:          uninstalledAt,
		GenerationDailyUsage:   s.GenerationDailyUsage,
		GenerationMonthlyUsage: s.GenerationMonthlyUsage,
		GenerationDailyLimit:   s.GenerationDailyLimit,
		GenerationMonthlyLimit: s.GenerationMonthlyLimit,
		CleanupDailyUsage:      s.CleanupDailyUsage,
		CleanupMonthlyUsage:    s.CleanupMonthlyUsage,
		LastDailyReset:         s.LastDailyReset,
		LastMonthlyReset:       s.LastMonthlyReset,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              updatedAt,
	}
}

func (m *ShopMapper) ToModel(s *entity.Shop) *model.Shop {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.UninstalledAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.UninstalledAt, Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Shop{
		Id:                     s.Id,
		Domain:                 s.Domain,
		AccessToken:            s.AccessToken,
		Settings:               datatypes.JSON(s.Settings),
		InstalledAt:            s.InstalledAt,
		GenerationDailyUsage:   s.GenerationDailyUsage,
		GenerationMonthlyUsage: s.GenerationMonthlyUsage,
		GenerationDailyLimit:   s.GenerationDailyLimit,
		GenerationMonthlyLimit: s.GenerationMonthlyLimit,
		CleanupDailyUsage:      s.CleanupDailyUsage,
		CleanupMonthlyUsage:    s.CleanupMonthlyUsage,
		LastDailyReset:         s.LastDailyReset,
		LastMonthlyReset:       s.LastMonthlyReset,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              updatedAt,
		DeletedAt:              deletedAt,
	}
}

func (m *ShopMapper) ToEntities(shops []*model.Shop) []*entity.Shop {
	entities := make([]*entity.Shop, len(shops))
	for i, s := range shops {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
