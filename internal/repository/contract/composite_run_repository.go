package contract

import (
	"context"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CompositeRunRepository interface {
	Create(ctx context.Context, run *entity.CompositeRun) error
	Update(ctx context.Context, run *entity.CompositeRun) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CompositeRun, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CompositeRun, error)
	DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error
}

type VariantResultRepository interface {
	// CreateIdempotent inserts the result, silently keeping the first
	// writer's row on a (run, variant key) conflict.
	CreateIdempotent(ctx context.Context, result *entity.VariantResult) error
	FindAllByRun(ctx context.Context, runId uuid.UUID) ([]*entity.VariantResult, error)
	DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error
}
