package entity

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusInFlight RunStatus = "in_flight"
	RunStatusComplete RunStatus = "complete"
	RunStatusPartial  RunStatus = "partial"
	RunStatusFailed   RunStatus = "failed"
)

type VariantStatus string

const (
	VariantStatusSuccess VariantStatus = "success"
	VariantStatusFailed  VariantStatus = "failed"
	VariantStatusTimeout VariantStatus = "timeout"
)

// CompositeRun is one orchestrated multi-variant generation request.
// Placement and resolved-facts snapshots are persisted verbatim for
// replay/debugging.
type CompositeRun struct {
	Id                uuid.UUID
	ShopId            uuid.UUID
	ProductId         string
	SessionId         uuid.UUID
	Status            RunStatus
	PlacementSnapshot []byte
	FactsSnapshot     []byte
	RequestedVariants int
	TotalDurationMs   *int64
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

// VariantResult is one attempt within a run. Owned exclusively by its
// parent; rows are append-only and idempotent per (run, variant key).
type VariantResult struct {
	Id             uuid.UUID
	RunId          uuid.UUID
	VariantKey     string
	Status         VariantStatus
	LatencyMs      *int64
	ErrorMessage   string
	OutputImageRef string
	CreatedAt      time.Time
}

// AggregateRunStatus derives a run's status from its current result set.
// It is a pure function and is always recomputed, never cached:
//
//	in_flight  any variant lacks a terminal result
//	complete   every variant succeeded
//	failed     no variant succeeded
//	partial    otherwise
func AggregateRunStatus(requested int, results []*VariantResult) RunStatus {
	if len(results) < requested {
		return RunStatusInFlight
	}
	successes := 0
	for _, r := range results {
		if r.Status == VariantStatusSuccess {
			successes++
		}
	}
	switch {
	case successes == len(results):
		return RunStatusComplete
	case successes == 0:
		return RunStatusFailed
	default:
		return RunStatusPartial
	}
}
