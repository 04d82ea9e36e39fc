package contract

import (
	"context"
	"time"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MonitorEventRepository interface {
	Create(ctx context.Context, event *entity.MonitorEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MonitorEvent, error)
	// DeleteOlderThan removes at most limit rows created before the
	// cutoff and reports how many went.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)
	DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error
}

type MonitorArtifactRepository interface {
	Create(ctx context.Context, artifact *entity.MonitorArtifact) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.MonitorArtifact, error)
	DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error
}
