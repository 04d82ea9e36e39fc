package implementation

import (
	"context"
	"errors"
	"time"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/mapper"
	"ai-roomviz-be/internal/model"
	"ai-roomviz-be/internal/repository/contract"
	"ai-roomviz-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ShopMapper
}

func NewShopRepository(db *gorm.DB) contract.ShopRepository {
	return &ShopRepositoryImpl{
		db:     db,
		mapper: mapper.NewShopMapper(),
	}
}

func (r *ShopRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ShopRepositoryImpl) Create(ctx context.Context, shop *entity.Shop) error {
	m := r.mapper.ToModel(shop)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*shop = *r.mapper.ToEntity(m)
	return nil
}

func (r *ShopRepositoryImpl) Update(ctx context.Context, shop *entity.Shop) error {
	m := r.mapper.ToModel(shop)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*shop = *r.mapper.ToEntity(m)
	return nil
}

func (r *ShopRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Shop, error) {
	var m model.Shop
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ShopRepositoryImpl) FindOneUnscoped(ctx context.Context, specs ...specification.Specification) (*entity.Shop, error) {
	var m model.Shop
	query := r.applySpecifications(r.db.WithContext(ctx).Unscoped(), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ShopRepositoryImpl) RestoreByDomain(ctx context.Context, domain string) error {
	return r.db.WithContext(ctx).Unscoped().Model(&model.Shop{}).
		Where("domain = ?", domain).
		Update("deleted_at", nil).Error
}

func (r *ShopRepositoryImpl) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Shop{}, id).Error
}

func (r *ShopRepositoryImpl) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.Shop{}, id).Error
}

// ReserveGenerationQuota performs the batch-atomic compare-and-increment.
// A limit below zero means unlimited for that window.
func (r *ShopRepositoryImpl) ReserveGenerationQuota(ctx context.Context, id uuid.UUID, count int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE shops
		SET generation_daily_usage = generation_daily_usage + ?,
		    generation_monthly_usage = generation_monthly_usage + ?
		WHERE id = ?
		  AND (generation_daily_limit < 0 OR generation_daily_usage + ? <= generation_daily_limit)
		  AND (generation_monthly_limit < 0 OR generation_monthly_usage + ? <= generation_monthly_limit)`,
		count, count, id, count, count,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseGenerationQuota gives back a previously reserved share, clamped
// at zero to stay safe against double releases.
func (r *ShopRepositoryImpl) ReleaseGenerationQuota(ctx context.Context, id uuid.UUID, count int) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE shops
		SET generation_daily_usage = GREATEST(generation_daily_usage - ?, 0),
		    generation_monthly_usage = GREATEST(generation_monthly_usage - ?, 0)
		WHERE id = ?`,
		count, count, id,
	).Error
}

func (r *ShopRepositoryImpl) RecordCleanupUsage(ctx context.Context, id uuid.UUID, count int) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE shops
		SET cleanup_daily_usage = cleanup_daily_usage + ?,
		    cleanup_monthly_usage = cleanup_monthly_usage + ?
		WHERE id = ?`,
		count, count, id,
	).Error
}

// RollDailyWindow zeroes the daily counters once per calendar day. The guard
// on last_daily_reset keeps a second roller (or one racing a reservation
// made after the roll) from wiping counters twice.
func (r *ShopRepositoryImpl) RollDailyWindow(ctx context.Context, id uuid.UUID, windowStart time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE shops
		SET generation_daily_usage = 0,
		    cleanup_daily_usage = 0,
		    last_daily_reset = ?
		WHERE id = ? AND last_daily_reset < ?`,
		time.Now(), id, windowStart,
	).Error
}

func (r *ShopRepositoryImpl) RollMonthlyWindow(ctx context.Context, id uuid.UUID, windowStart time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE shops
		SET generation_monthly_usage = 0,
		    cleanup_monthly_usage = 0,
		    last_monthly_reset = ?
		WHERE id = ? AND last_monthly_reset < ?`,
		time.Now(), id, windowStart,
	).Error
}
