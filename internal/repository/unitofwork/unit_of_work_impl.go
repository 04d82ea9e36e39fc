package unitofwork

import (
	"context"
	"fmt"

	"ai-roomviz-be/internal/repository/contract"
	"ai-roomviz-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // The active transaction, or nil when operating outside a tx
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) ShopRepository() contract.ShopRepository {
	return implementation.NewShopRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProductAssetRepository() contract.ProductAssetRepository {
	return implementation.NewProductAssetRepository(u.getDB())
}

func (u *UnitOfWorkImpl) RoomSessionRepository() contract.RoomSessionRepository {
	return implementation.NewRoomSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) RenderJobRepository() contract.RenderJobRepository {
	return implementation.NewRenderJobRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CompositeRunRepository() contract.CompositeRunRepository {
	return implementation.NewCompositeRunRepository(u.getDB())
}

func (u *UnitOfWorkImpl) VariantResultRepository() contract.VariantResultRepository {
	return implementation.NewVariantResultRepository(u.getDB())
}

func (u *UnitOfWorkImpl) MonitorEventRepository() contract.MonitorEventRepository {
	return implementation.NewMonitorEventRepository(u.getDB())
}

func (u *UnitOfWorkImpl) MonitorArtifactRepository() contract.MonitorArtifactRepository {
	return implementation.NewMonitorArtifactRepository(u.getDB())
}
