package entity

import (
	"time"

	"github.com/google/uuid"
)

type RenderJobStatus string

const (
	RenderJobStatusQueued     RenderJobStatus = "queued"
	RenderJobStatusProcessing RenderJobStatus = "processing"
	RenderJobStatusCompleted  RenderJobStatus = "completed"
	RenderJobStatusFailed     RenderJobStatus = "failed"
)

type RenderJobKind string

const (
	RenderJobKindCleanup RenderJobKind = "cleanup"
)

// RenderJob is one asynchronous single-image unit of work (currently room
// cleanup). Composite generation runs are tracked by CompositeRun instead.
type RenderJob struct {
	Id             uuid.UUID
	ShopId         uuid.UUID
	SessionId      uuid.UUID
	Kind           RenderJobKind
	Status         RenderJobStatus
	OutputImageRef string
	ErrorCode      string
	ErrorMessage   string
	CreatedAt      time.Time
	CompletedAt    *time.Time
}
