package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShopOwnedBy scopes the query to one tenant.
type ShopOwnedBy struct {
	ShopID uuid.UUID
}

func (s ShopOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("shop_id = ?", s.ShopID)
}

// ByProductId filters assets/runs by the origin product identifier.
type ByProductId struct {
	ProductID string
}

func (s ByProductId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("product_id = ?", s.ProductID)
}

// ByDomain filters shops by their stable domain string.
type ByDomain struct {
	Domain string
}

func (s ByDomain) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("domain = ?", s.Domain)
}

// StatusIn filters by a set of status strings.
type StatusIn struct {
	Statuses []string
}

func (s StatusIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

// RetryBelow filters assets still eligible for automatic retry.
type RetryBelow struct {
	Cap int
}

func (s RetryBelow) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("retry_count < ?", s.Cap)
}

// UpdatedBefore filters rows whose last write predates the cutoff, used to
// find claims whose worker went away.
type UpdatedBefore struct {
	Cutoff time.Time
}

func (s UpdatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("updated_at < ?", s.Cutoff)
}

// ByRunId filters variant results and telemetry by parent run.
type ByRunId struct {
	RunID uuid.UUID
}

func (s ByRunId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("run_id = ?", s.RunID)
}
