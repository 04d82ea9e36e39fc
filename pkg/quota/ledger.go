package quota

import (
	"context"
	"fmt"
	"time"

	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/pkg/logger"
	"ai-roomviz-be/internal/repository/specification"
	"ai-roomviz-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// OperationClass determines whether the ledger blocks an over-limit caller
// or only records the usage.
type OperationClass string

const (
	// ClassGeneration covers composite renders and asset preparation.
	// Over-limit callers are rejected.
	ClassGeneration OperationClass = "generation"

	// ClassCleanup covers room cleanup renders. Usage is recorded for
	// billing visibility but never enforced.
	ClassCleanup OperationClass = "cleanup"
)

func (c OperationClass) Blocking() bool {
	return c == ClassGeneration
}

// Ledger handles per-shop usage windows and limits.
type Ledger struct {
	log logger.ILogger
}

func NewLedger(log logger.ILogger) *Ledger {
	return &Ledger{log: log}
}

// rollWindows zeroes counters whose calendar window has passed. Each roll is
// its own conditional UPDATE keyed on the reset timestamp, so it can never
// overwrite counters a concurrent guarded reservation just incremented; the
// in-memory copy rolls too so the rejection metadata stays honest.
func (l *Ledger) rollWindows(ctx context.Context, uow unitofwork.UnitOfWork, shop *entity.Shop) error {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	if shop.LastDailyReset.Before(dayStart) {
		if err := uow.ShopRepository().RollDailyWindow(ctx, shop.Id, dayStart); err != nil {
			return err
		}
		shop.GenerationDailyUsage = 0
		shop.CleanupDailyUsage = 0
		shop.LastDailyReset = now
	}

	if shop.LastMonthlyReset.Before(monthStart) {
		if err := uow.ShopRepository().RollMonthlyWindow(ctx, shop.Id, monthStart); err != nil {
			return err
		}
		shop.GenerationMonthlyUsage = 0
		shop.CleanupMonthlyUsage = 0
		shop.LastMonthlyReset = now
	}

	return nil
}

// Reserve claims count generation units for the shop. Either all count units
// are reserved or none are; a rejection carries the tighter of the two
// windows in the error metadata.
func (l *Ledger) Reserve(ctx context.Context, uow unitofwork.UnitOfWork, shopId uuid.UUID, count int) error {
	shop, err := uow.ShopRepository().FindOne(ctx, specification.ByID{ID: shopId})
	if err != nil {
		return err
	}
	if shop == nil {
		return &dto.NotFoundError{Resource: "shop"}
	}

	if err := l.rollWindows(ctx, uow, shop); err != nil {
		return err
	}

	ok, err := uow.ShopRepository().ReserveGenerationQuota(ctx, shopId, count)
	if err != nil {
		return err
	}
	if !ok {
		return l.exceededError(shop, count)
	}
	return nil
}

// Release returns unused units from a reservation. Counters never go below
// zero.
func (l *Ledger) Release(ctx context.Context, uow unitofwork.UnitOfWork, shopId uuid.UUID, count int) error {
	if count <= 0 {
		return nil
	}
	return uow.ShopRepository().ReleaseGenerationQuota(ctx, shopId, count)
}

// Record tracks usage for a non-blocking class. Cleanup renders always
// proceed; the counters feed billing reports only.
func (l *Ledger) Record(ctx context.Context, uow unitofwork.UnitOfWork, shopId uuid.UUID, class OperationClass, count int) error {
	if class.Blocking() {
		return fmt.Errorf("blocking class %s must go through Reserve", class)
	}
	if err := uow.ShopRepository().RecordCleanupUsage(ctx, shopId, count); err != nil {
		l.log.Warn("quota", "failed to record cleanup usage", map[string]interface{}{
			"shopId": shopId.String(),
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

func (l *Ledger) exceededError(shop *entity.Shop, count int) error {
	now := time.Now()
	dailyReset := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	monthlyReset := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())

	// Report the window that actually rejected the batch. When both would
	// reject, the daily window wins since it resets sooner.
	if shop.GenerationDailyLimit >= 0 && shop.GenerationDailyUsage+count > shop.GenerationDailyLimit {
		return &dto.QuotaExceededError{
			Limit:      shop.GenerationDailyLimit,
			Used:       shop.GenerationDailyUsage,
			ResetAfter: dailyReset,
		}
	}
	return &dto.QuotaExceededError{
		Limit:      shop.GenerationMonthlyLimit,
		Used:       shop.GenerationMonthlyUsage,
		ResetAfter: monthlyReset,
	}
}
