package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/repository/specification"
	"ai-roomviz-be/pkg/provider"
	"ai-roomviz-be/pkg/quota"
	"ai-roomviz-be/pkg/retry"

	"github.com/google/uuid"
)

// FindAll filters the in-memory rows the way the poller queries do.
func (r *fakeAssetRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductAsset, error) {
	statuses := map[string]bool{}
	var updatedBefore *time.Time
	retryCap := -1
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.StatusIn:
			for _, status := range s.Statuses {
				statuses[status] = true
			}
		case specification.UpdatedBefore:
			cutoff := s.Cutoff
			updatedBefore = &cutoff
		case specification.RetryBelow:
			retryCap = s.Cap
		}
	}

	var out []*entity.ProductAsset
	for _, a := range r.assets {
		if len(statuses) > 0 && !statuses[string(a.Status)] {
			continue
		}
		if updatedBefore != nil && (a.UpdatedAt == nil || !a.UpdatedAt.Before(*updatedBefore)) {
			continue
		}
		if retryCap >= 0 && a.RetryCount >= retryCap {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAssetRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.AssetStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, nil
	}
	for _, a := range r.assets {
		if a.Id == id && a.Status == from {
			a.Status = to
			now := time.Now()
			a.UpdatedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAssetRepo) ReclaimStale(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	for _, a := range r.assets {
		if a.Id == id && a.Status == entity.AssetStatusPreparing &&
			a.UpdatedAt != nil && a.UpdatedAt.Before(cutoff) {
			now := time.Now()
			a.UpdatedAt = &now
			r.reclaims++
			return true, nil
		}
	}
	return false, nil
}

type erroringRenderer struct{}

func (erroringRenderer) GenerateComposite(ctx context.Context, room, product provider.ImageInput, prompt string) ([]byte, error) {
	return nil, errors.New("render unavailable")
}

func (erroringRenderer) RemoveBackground(ctx context.Context, product provider.ImageInput, prompt string) ([]byte, error) {
	return nil, errors.New("render unavailable")
}

func (erroringRenderer) CleanupRoom(ctx context.Context, room provider.ImageInput, mask *provider.ImageInput, prompt string) ([]byte, error) {
	return nil, errors.New("render unavailable")
}

func (erroringRenderer) UploadFile(ctx context.Context, data []byte, mimeType string) (*provider.FileHandle, error) {
	return nil, errors.New("render unavailable")
}

type stubTelemetry struct{}

func (stubTelemetry) EmitEvent(ctx context.Context, shopId uuid.UUID, runId *uuid.UUID, eventType string, severity entity.EventSeverity, payload map[string]interface{}) {
}

func (stubTelemetry) StoreArtifact(ctx context.Context, shopId uuid.UUID, runId uuid.UUID, data []byte, contentType string, ttl time.Duration) error {
	return nil
}

func (stubTelemetry) Prune(ctx context.Context, eventMaxAge time.Duration, batchSize int) (int64, int64, error) {
	return 0, 0, nil
}

func TestPollOnceReclaimsStalePreparing(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer source.Close()

	shop := &entity.Shop{
		Id:                     uuid.New(),
		Domain:                 "demo.example.com",
		AccessToken:            "token",
		GenerationDailyLimit:   -1,
		GenerationMonthlyLimit: -1,
		LastDailyReset:         time.Now(),
		LastMonthlyReset:       time.Now(),
	}
	staleAt := time.Now().Add(-time.Hour)
	freshAt := time.Now()
	assetRepo := &fakeAssetRepo{assets: map[string]*entity.ProductAsset{
		"stale": {
			Id:             uuid.New(),
			ShopId:         shop.Id,
			ProductId:      "stale",
			SourceImageRef: source.URL + "/stale.jpg",
			Status:         entity.AssetStatusPreparing,
			UpdatedAt:      &staleAt,
		},
		"fresh": {
			Id:             uuid.New(),
			ShopId:         shop.Id,
			ProductId:      "fresh",
			SourceImageRef: source.URL + "/fresh.jpg",
			Status:         entity.AssetStatusPreparing,
			UpdatedAt:      &freshAt,
		},
	}}
	shopRepo := &fakeShopRepo{shop: shop}

	svc := NewPreparerService(
		nil,
		"prepare",
		&fakeFactory{uow: &fakeUOW{shopRepo: shopRepo, assetRepo: assetRepo}},
		erroringRenderer{},
		nil,
		&fakeCatalog{},
		quota.NewLedger(nopLogger{}),
		nil,
		stubTelemetry{},
		retry.NewPolicy(3),
		time.Minute,
		10,
		10*time.Minute,
	)

	svc.(*preparerService).pollOnce(context.Background())

	if assetRepo.reclaims != 1 {
		t.Fatalf("reclaims = %d, want 1 (stale row only)", assetRepo.reclaims)
	}

	stale := assetRepo.assets["stale"]
	if stale.Status != entity.AssetStatusFailed {
		t.Errorf("reclaimed row status = %s, want failed after the attempt", stale.Status)
	}
	if stale.RetryCount != 1 {
		t.Errorf("reclaimed row retry count = %d, want 1", stale.RetryCount)
	}

	fresh := assetRepo.assets["fresh"]
	if fresh.Status != entity.AssetStatusPreparing {
		t.Errorf("fresh claim status = %s, must stay preparing", fresh.Status)
	}
	if fresh.RetryCount != 0 {
		t.Errorf("fresh claim retry count = %d, want 0", fresh.RetryCount)
	}
}
