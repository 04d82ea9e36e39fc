package implementation

import (
	"context"
	"errors"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/mapper"
	"ai-roomviz-be/internal/model"
	"ai-roomviz-be/internal/repository/contract"
	"ai-roomviz-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompositeRunRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CompositeRunMapper
}

func NewCompositeRunRepository(db *gorm.DB) contract.CompositeRunRepository {
	return &CompositeRunRepositoryImpl{
		db:     db,
		mapper: mapper.NewCompositeRunMapper(),
	}
}

func (r *CompositeRunRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CompositeRunRepositoryImpl) Create(ctx context.Context, run *entity.CompositeRun) error {
	m := r.mapper.ToModel(run)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*run = *r.mapper.ToEntity(m)
	return nil
}

func (r *CompositeRunRepositoryImpl) Update(ctx context.Context, run *entity.CompositeRun) error {
	m := r.mapper.ToModel(run)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*run = *r.mapper.ToEntity(m)
	return nil
}

func (r *CompositeRunRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CompositeRun, error) {
	var m model.CompositeRun
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CompositeRunRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CompositeRun, error) {
	var models []*model.CompositeRun
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CompositeRunRepositoryImpl) DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("shop_id = ?", shopId).Delete(&model.CompositeRun{}).Error
}

type VariantResultRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VariantResultMapper
}

func NewVariantResultRepository(db *gorm.DB) contract.VariantResultRepository {
	return &VariantResultRepositoryImpl{
		db:     db,
		mapper: mapper.NewVariantResultMapper(),
	}
}

// CreateIdempotent keeps result writes append-only: a second write for the
// same (run, variant key) is a no-op, the first recorded outcome wins.
func (r *VariantResultRepositoryImpl) CreateIdempotent(ctx context.Context, result *entity.VariantResult) error {
	m := r.mapper.ToModel(result)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}, {Name: "variant_key"}},
			DoNothing: true,
		}).
		Create(m).Error; err != nil {
		return err
	}
	*result = *r.mapper.ToEntity(m)
	return nil
}

func (r *VariantResultRepositoryImpl) FindAllByRun(ctx context.Context, runId uuid.UUID) ([]*entity.VariantResult, error) {
	var models []*model.VariantResult
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runId).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *VariantResultRepositoryImpl) DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM variant_results
		WHERE run_id IN (SELECT id FROM composite_runs WHERE shop_id = ?)`,
		shopId,
	).Error
}
