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
)

type RoomSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RoomSessionMapper
}

func NewRoomSessionRepository(db *gorm.DB) contract.RoomSessionRepository {
	return &RoomSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewRoomSessionMapper(),
	}
}

func (r *RoomSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RoomSessionRepositoryImpl) Create(ctx context.Context, session *entity.RoomSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *RoomSessionRepositoryImpl) Update(ctx context.Context, session *entity.RoomSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *RoomSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RoomSession, error) {
	var m model.RoomSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RoomSessionRepositoryImpl) DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("shop_id = ?", shopId).Delete(&model.RoomSession{}).Error
}

type RenderJobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RenderJobMapper
}

func NewRenderJobRepository(db *gorm.DB) contract.RenderJobRepository {
	return &RenderJobRepositoryImpl{
		db:     db,
		mapper: mapper.NewRenderJobMapper(),
	}
}

func (r *RenderJobRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RenderJobRepositoryImpl) Create(ctx context.Context, job *entity.RenderJob) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *RenderJobRepositoryImpl) Update(ctx context.Context, job *entity.RenderJob) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *RenderJobRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RenderJob, error) {
	var m model.RenderJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RenderJobRepositoryImpl) DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("shop_id = ?", shopId).Delete(&model.RenderJob{}).Error
}
