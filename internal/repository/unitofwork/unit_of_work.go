package unitofwork

import (
	"context"

	"ai-roomviz-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ShopRepository() contract.ShopRepository
	ProductAssetRepository() contract.ProductAssetRepository
	RoomSessionRepository() contract.RoomSessionRepository
	RenderJobRepository() contract.RenderJobRepository
	CompositeRunRepository() contract.CompositeRunRepository
	VariantResultRepository() contract.VariantResultRepository
	MonitorEventRepository() contract.MonitorEventRepository
	MonitorArtifactRepository() contract.MonitorArtifactRepository
}
