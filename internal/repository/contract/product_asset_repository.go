package contract

import (
	"context"
	"time"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ProductAssetRepository interface {
	Create(ctx context.Context, asset *entity.ProductAsset) error
	Update(ctx context.Context, asset *entity.ProductAsset) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProductAsset, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductAsset, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error

	// TransitionStatus performs a conditional claim: the row moves to the
	// target status only if it still holds the expected one. Returns
	// false when another worker won the race.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.AssetStatus) (bool, error)

	// ReclaimStale takes over a preparing row whose worker stopped
	// touching it before the cutoff. Bumping updated_at is the claim:
	// a concurrent reclaimer sees zero rows affected.
	ReclaimStale(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error)
}
