package contract

import (
	"context"
	"time"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *entity.Shop) error
	Update(ctx context.Context, shop *entity.Shop) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Shop, error)
	// FindOneUnscoped includes soft-deleted (uninstalled) shops, used by
	// the reinstall path.
	FindOneUnscoped(ctx context.Context, specs ...specification.Specification) (*entity.Shop, error)
	RestoreByDomain(ctx context.Context, domain string) error
	// SoftDelete marks the shop uninstalled while keeping its data for a
	// possible reinstall.
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error

	// Quota counter operations. Reserve is a single guarded UPDATE: it
	// adds count to both daily and monthly usage only when both windows
	// stay within their limits, returning false when the guard rejects.
	ReserveGenerationQuota(ctx context.Context, id uuid.UUID, count int) (bool, error)
	ReleaseGenerationQuota(ctx context.Context, id uuid.UUID, count int) error
	RecordCleanupUsage(ctx context.Context, id uuid.UUID, count int) error

	// Window rollovers are conditional on last_*_reset still predating
	// the window start, so a roll can never wipe counters a concurrent
	// reservation just wrote after its own roll.
	RollDailyWindow(ctx context.Context, id uuid.UUID, windowStart time.Time) error
	RollMonthlyWindow(ctx context.Context, id uuid.UUID, windowStart time.Time) error
}
