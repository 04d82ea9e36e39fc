package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/repository/contract"
	"ai-roomviz-be/internal/repository/specification"
	"ai-roomviz-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeShopRepo backs the ledger tests with an in-memory shop row and applies
// the same guard semantics as the SQL reserve and conditional rolls.
type fakeShopRepo struct {
	contract.ShopRepository

	shop          *entity.Shop
	released      int
	recorded      int
	rolledDaily   int
	rolledMonthly int
}

func (r *fakeShopRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Shop, error) {
	return r.shop, nil
}

func (r *fakeShopRepo) RollDailyWindow(ctx context.Context, id uuid.UUID, windowStart time.Time) error {
	if !r.shop.LastDailyReset.Before(windowStart) {
		return nil
	}
	r.shop.GenerationDailyUsage = 0
	r.shop.CleanupDailyUsage = 0
	r.shop.LastDailyReset = time.Now()
	r.rolledDaily++
	return nil
}

func (r *fakeShopRepo) RollMonthlyWindow(ctx context.Context, id uuid.UUID, windowStart time.Time) error {
	if !r.shop.LastMonthlyReset.Before(windowStart) {
		return nil
	}
	r.shop.GenerationMonthlyUsage = 0
	r.shop.CleanupMonthlyUsage = 0
	r.shop.LastMonthlyReset = time.Now()
	r.rolledMonthly++
	return nil
}

func (r *fakeShopRepo) ReserveGenerationQuota(ctx context.Context, id uuid.UUID, count int) (bool, error) {
	s := r.shop
	if s.GenerationDailyLimit >= 0 && s.GenerationDailyUsage+count > s.GenerationDailyLimit {
		return false, nil
	}
	if s.GenerationMonthlyLimit >= 0 && s.GenerationMonthlyUsage+count > s.GenerationMonthlyLimit {
		return false, nil
	}
	s.GenerationDailyUsage += count
	s.GenerationMonthlyUsage += count
	return true, nil
}

func (r *fakeShopRepo) ReleaseGenerationQuota(ctx context.Context, id uuid.UUID, count int) error {
	r.released += count
	return nil
}

func (r *fakeShopRepo) RecordCleanupUsage(ctx context.Context, id uuid.UUID, count int) error {
	r.recorded += count
	return nil
}

type fakeUOW struct {
	unitofwork.UnitOfWork

	shopRepo *fakeShopRepo
}

func (u *fakeUOW) ShopRepository() contract.ShopRepository {
	return u.shopRepo
}

func newTestShop(dailyLimit, monthlyLimit int) *entity.Shop {
	return &entity.Shop{
		Id:                     uuid.New(),
		GenerationDailyLimit:   dailyLimit,
		GenerationMonthlyLimit: monthlyLimit,
		LastDailyReset:         time.Now(),
		LastMonthlyReset:       time.Now(),
	}
}

func TestReserveWithinLimits(t *testing.T) {
	shop := newTestShop(10, 100)
	uow := &fakeUOW{shopRepo: &fakeShopRepo{shop: shop}}
	ledger := NewLedger(nopLogger{})

	if err := ledger.Reserve(context.Background(), uow, shop.Id, 4); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if shop.GenerationDailyUsage != 4 || shop.GenerationMonthlyUsage != 4 {
		t.Errorf("usage = %d/%d, want 4/4", shop.GenerationDailyUsage, shop.GenerationMonthlyUsage)
	}
}

func TestReserveBatchIsAtomic(t *testing.T) {
	shop := newTestShop(10, 100)
	shop.GenerationDailyUsage = 8
	shop.GenerationMonthlyUsage = 8
	uow := &fakeUOW{shopRepo: &fakeShopRepo{shop: shop}}
	ledger := NewLedger(nopLogger{})

	err := ledger.Reserve(context.Background(), uow, shop.Id, 4)

	var quotaErr *dto.QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if shop.GenerationDailyUsage != 8 {
		t.Errorf("rejected batch must not consume any units, usage = %d", shop.GenerationDailyUsage)
	}
	if quotaErr.Limit != 10 || quotaErr.Used != 8 {
		t.Errorf("error metadata = limit %d used %d, want 10/8", quotaErr.Limit, quotaErr.Used)
	}
}

func TestReserveRollsDailyWindow(t *testing.T) {
	shop := newTestShop(10, 100)
	shop.GenerationDailyUsage = 10
	shop.GenerationMonthlyUsage = 10
	shop.LastDailyReset = time.Now().AddDate(0, 0, -1)
	repo := &fakeShopRepo{shop: shop}
	uow := &fakeUOW{shopRepo: repo}
	ledger := NewLedger(nopLogger{})

	if err := ledger.Reserve(context.Background(), uow, shop.Id, 3); err != nil {
		t.Fatalf("Reserve after day rollover failed: %v", err)
	}
	if shop.GenerationDailyUsage != 3 {
		t.Errorf("daily usage = %d, want 3 after reset", shop.GenerationDailyUsage)
	}
	if shop.GenerationMonthlyUsage != 13 {
		t.Errorf("monthly usage = %d, want 13 (no monthly reset)", shop.GenerationMonthlyUsage)
	}
	if repo.rolledDaily != 1 {
		t.Errorf("rolled daily %d times, want 1", repo.rolledDaily)
	}

	// A same-day Reserve must not roll again: the conditional guard sees
	// an up-to-date reset timestamp and leaves the counters alone.
	if err := ledger.Reserve(context.Background(), uow, shop.Id, 2); err != nil {
		t.Fatalf("second Reserve failed: %v", err)
	}
	if repo.rolledDaily != 1 {
		t.Errorf("rolled daily %d times after second reserve, want still 1", repo.rolledDaily)
	}
	if shop.GenerationDailyUsage != 5 {
		t.Errorf("daily usage = %d, want 5 (3+2 on the same window)", shop.GenerationDailyUsage)
	}
}

func TestReserveRollsMonthlyWindow(t *testing.T) {
	shop := newTestShop(10, 100)
	shop.GenerationMonthlyUsage = 100
	shop.LastDailyReset = time.Now().AddDate(0, -1, 0)
	shop.LastMonthlyReset = time.Now().AddDate(0, -1, 0)
	uow := &fakeUOW{shopRepo: &fakeShopRepo{shop: shop}}
	ledger := NewLedger(nopLogger{})

	if err := ledger.Reserve(context.Background(), uow, shop.Id, 1); err != nil {
		t.Fatalf("Reserve after month rollover failed: %v", err)
	}
	if shop.GenerationMonthlyUsage != 1 {
		t.Errorf("monthly usage = %d, want 1 after reset", shop.GenerationMonthlyUsage)
	}
}

func TestReserveUnknownShop(t *testing.T) {
	uow := &fakeUOW{shopRepo: &fakeShopRepo{shop: nil}}
	ledger := NewLedger(nopLogger{})

	err := ledger.Reserve(context.Background(), uow, uuid.New(), 1)

	var notFound *dto.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestReleaseIgnoresNonPositiveCounts(t *testing.T) {
	repo := &fakeShopRepo{shop: newTestShop(10, 100)}
	uow := &fakeUOW{shopRepo: repo}
	ledger := NewLedger(nopLogger{})

	if err := ledger.Release(context.Background(), uow, repo.shop.Id, 0); err != nil {
		t.Fatalf("Release(0) returned error: %v", err)
	}
	if err := ledger.Release(context.Background(), uow, repo.shop.Id, -2); err != nil {
		t.Fatalf("Release(-2) returned error: %v", err)
	}
	if repo.released != 0 {
		t.Errorf("released %d units, want 0", repo.released)
	}

	if err := ledger.Release(context.Background(), uow, repo.shop.Id, 3); err != nil {
		t.Fatalf("Release(3) returned error: %v", err)
	}
	if repo.released != 3 {
		t.Errorf("released %d units, want 3", repo.released)
	}
}

func TestRecordRejectsBlockingClass(t *testing.T) {
	repo := &fakeShopRepo{shop: newTestShop(10, 100)}
	uow := &fakeUOW{shopRepo: repo}
	ledger := NewLedger(nopLogger{})

	if err := ledger.Record(context.Background(), uow, repo.shop.Id, ClassGeneration, 1); err == nil {
		t.Fatal("Record must reject blocking classes")
	}
	if repo.recorded != 0 {
		t.Errorf("recorded %d units for a rejected class", repo.recorded)
	}

	if err := ledger.Record(context.Background(), uow, repo.shop.Id, ClassCleanup, 2); err != nil {
		t.Fatalf("Record cleanup failed: %v", err)
	}
	if repo.recorded != 2 {
		t.Errorf("recorded %d units, want 2", repo.recorded)
	}
}

func TestOperationClassBlocking(t *testing.T) {
	if !ClassGeneration.Blocking() {
		t.Error("generation must block over-limit callers")
	}
	if ClassCleanup.Blocking() {
		t.Error("cleanup must never block")
	}
}
