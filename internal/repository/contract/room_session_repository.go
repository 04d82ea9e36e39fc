package contract

import (
	"context"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RoomSessionRepository interface {
	Create(ctx context.Context, session *entity.RoomSession) error
	Update(ctx context.Context, session *entity.RoomSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RoomSession, error)
	DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error
}

type RenderJobRepository interface {
	Create(ctx context.Context, job *entity.RenderJob) error
	Update(ctx context.Context, job *entity.RenderJob) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RenderJob, error)
	DeleteAllByShopIdUnscoped(ctx context.Context, shopId uuid.UUID) error
}
