package entity

import (
	"time"

	"github.com/google/uuid"
)

// AssetStatus is the closed preparation-lifecycle enum for a product asset.
type AssetStatus string

const (
	AssetStatusPending   AssetStatus = "pending"
	AssetStatusPreparing AssetStatus = "preparing"
	AssetStatusReady     AssetStatus = "ready"
	AssetStatusFailed    AssetStatus = "failed"
	AssetStatusLive      AssetStatus = "live"
)

type PrepStrategy string

const (
	PrepStrategyManual PrepStrategy = "manual"
	PrepStrategyBatch  PrepStrategy = "batch"
)

// assetTransitions is the explicit transition table. Anything not listed
// is an invalid transition.
var assetTransitions = map[AssetStatus][]AssetStatus{
	AssetStatusPending:   {AssetStatusPreparing},
	AssetStatusPreparing: {AssetStatusReady, AssetStatusFailed},
	AssetStatusReady:     {AssetStatusLive, AssetStatusPreparing},
	AssetStatusLive:      {AssetStatusReady},
	AssetStatusFailed:    {AssetStatusPending, AssetStatusPreparing},
}

func (s AssetStatus) CanTransitionTo(to AssetStatus) bool {
	for _, allowed := range assetTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s AssetStatus) IsTerminalForWorker() bool {
	return s == AssetStatusReady || s == AssetStatusLive
}

type ProductAsset struct {
	Id               uuid.UUID
	ShopId           uuid.UUID
	ProductId        string
	SourceImageRef   string
	PreparedImageRef string
	ImageVersion     int
	Status           AssetStatus
	PrepStrategy     PrepStrategy
	RetryCount       int
	ErrorMessage     string
	Enabled          bool
	RenderOverrides  []byte

	// Provider-side staged file handle. Nulled whenever the prepared
	// image bytes change.
	ProviderFileURI       string
	ProviderFileExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// InvalidateProviderFile drops the staged provider handle. Callers must
// persist this in the same transaction as the image mutation itself; a
// stale handle is worse than a cache miss.
func (a *ProductAsset) InvalidateProviderFile() {
	a.ProviderFileURI = ""
	a.ProviderFileExpiresAt = nil
}

// ApplyEnabledToggle records the enabled flag and returns the status the
// asset should move to. Only the ready<->live pair is affected; any other
// status keeps its value (the flag is remembered for later promotion).
func (a *ProductAsset) ApplyEnabledToggle(enabled bool) AssetStatus {
	a.Enabled = enabled
	switch {
	case enabled && a.Status == AssetStatusReady:
		return AssetStatusLive
	case !enabled && a.Status == AssetStatusLive:
		return AssetStatusReady
	default:
		return a.Status
	}
}
