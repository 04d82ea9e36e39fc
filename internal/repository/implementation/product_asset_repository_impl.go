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

type ProductAssetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductAssetMapper
}

func NewProductAssetRepository(db *gorm.DB) contract.ProductAssetRepository {
	return &ProductAssetRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductAssetMapper(),
	}
}

func (r *ProductAssetRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProductAssetRepositoryImpl) Create(ctx context.Context, asset *entity.ProductAsset) error {
	m := r.mapper.ToModel(asset)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*asset = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProductAssetRepositoryImpl) Update(ctx context.Context, asset *entity.ProductAsset) error {
	m := r.mapper.ToModel(asset)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*asset = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProductAssetRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProductAsset, error) {
	var m model.ProductAsset
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProductAssetRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductAsset, error) {
	var models []*model.ProductAsset
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProductAssetRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ProductAsset{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ProductAssetRepositoryImpl) DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("shop_id = ?", shopId).Delete(&model.ProductAsset{}).Error
}

func (r *ProductAssetRepositoryImpl) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.AssetStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&model.ProductAsset{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ProductAssetRepositoryImpl) ReclaimStale(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ProductAsset{}).
		Where("id = ? AND status = ? AND updated_at < ?", id, string(entity.AssetStatusPreparing), cutoff).
		Update("updated_at", time.Now())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
