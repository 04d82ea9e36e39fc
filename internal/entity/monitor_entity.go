package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventSeverity string

const (
	SeverityDebug EventSeverity = "debug"
	SeverityInfo  EventSeverity = "info"
	SeverityWarn  EventSeverity = "warn"
	SeverityError EventSeverity = "error"
)

// MonitorEvent is an append-only telemetry row. Purely observational:
// deleting events never affects the render pipeline.
type MonitorEvent struct {
	Id        uuid.UUID
	RunId     *uuid.UUID
	ShopId    uuid.UUID
	Type      string
	Severity  EventSeverity
	Payload   []byte
	CreatedAt time.Time
}

// MonitorArtifact is a TTL'd binary attachment (debug snapshots, raw
// provider responses). The blob is removed before the row on pruning.
type MonitorArtifact struct {
	Id          uuid.UUID
	RunId       uuid.UUID
	ShopId      uuid.UUID
	BlobKey     string
	ByteSize    int64
	ContentType string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
