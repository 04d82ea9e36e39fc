package implementation

import (
	"context"
	"time"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/mapper"
	"ai-roomviz-be/internal/model"
	"ai-roomviz-be/internal/repository/contract"
	"ai-roomviz-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MonitorEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MonitorEventMapper
}

func NewMonitorEventRepository(db *gorm.DB) contract.MonitorEventRepository {
	return &MonitorEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewMonitorEventMapper(),
	}
}

func (r *MonitorEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MonitorEventRepositoryImpl) Create(ctx context.Context, event *entity.MonitorEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *MonitorEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MonitorEvent, error) {
	var models []*model.MonitorEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

// DeleteOlderThan deletes one bounded batch. Postgres DELETE has no LIMIT,
// so the batch is selected by id in a subquery.
func (r *MonitorEventRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM monitor_events
		WHERE id IN (
			SELECT id FROM monitor_events WHERE created_at < ? LIMIT ?
		)`,
		cutoff, limit,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *MonitorEventRepositoryImpl) DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("shop_id = ?", shopId).Delete(&model.MonitorEvent{}).Error
}

type MonitorArtifactRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MonitorArtifactMapper
}

func NewMonitorArtifactRepository(db *gorm.DB) contract.MonitorArtifactRepository {
	return &MonitorArtifactRepositoryImpl{
		db:     db,
		mapper: mapper.NewMonitorArtifactMapper(),
	}
}

func (r *MonitorArtifactRepositoryImpl) Create(ctx context.Context, artifact *entity.MonitorArtifact) error {
	m := r.mapper.ToModel(artifact)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*artifact = *r.mapper.ToEntity(m)
	return nil
}

func (r *MonitorArtifactRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MonitorArtifact{}, id).Error
}

func (r *MonitorArtifactRepositoryImpl) FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.MonitorArtifact, error) {
	var models []*model.MonitorArtifact
	if err := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MonitorArtifactRepositoryImpl) DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("shop_id = ?", shopId).Delete(&model.MonitorArtifact{}).Error
}
