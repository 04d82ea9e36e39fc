package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"ai-roomviz-be/internal/constant"
	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/repository/specification"
	"ai-roomviz-be/internal/repository/unitofwork"
	"ai-roomviz-be/pkg/blobstore"
	"ai-roomviz-be/pkg/events"
	pktNats "ai-roomviz-be/pkg/nats"
	"ai-roomviz-be/pkg/provider"
	"ai-roomviz-be/pkg/quota"
	"ai-roomviz-be/pkg/retry"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IPreparerService interface {
	// Consume subscribes to the prepare topic. Messages are a nudge; the
	// database row is the source of truth.
	Consume(ctx context.Context) error

	// StartPoller runs the safety-net loop that picks up pending and
	// retryable rows the nudge missed.
	StartPoller(ctx context.Context)
}

type preparerService struct {
	pubSub          *gochannel.GoChannel
	topicName       string
	uowFactory      unitofwork.RepositoryFactory
	renderer        provider.Renderer
	blobs           *blobstore.Store
	catalogClient   ProductCatalog
	quotaLedger     *quota.Ledger
	eventPub        *pktNats.Publisher
	telemetry       ITelemetryService
	retryPolicy     retry.Policy
	pollInterval    time.Duration
	pollBatchSize   int
	staleClaimAfter time.Duration
}

func NewPreparerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	renderer provider.Renderer,
	blobs *blobstore.Store,
	catalogClient ProductCatalog,
	quotaLedger *quota.Ledger,
	eventPub *pktNats.Publisher,
	telemetry ITelemetryService,
	retryPolicy retry.Policy,
	pollInterval time.Duration,
	pollBatchSize int,
	staleClaimAfter time.Duration,
) IPreparerService {
	return &preparerService{
		pubSub:          pubSub,
		topicName:       topicName,
		uowFactory:      uowFactory,
		renderer:        renderer,
		blobs:           blobs,
		catalogClient:   catalogClient,
		quotaLedger:     quotaLedger,
		eventPub:        eventPub,
		telemetry:       telemetry,
		retryPolicy:     retryPolicy,
		pollInterval:    pollInterval,
		pollBatchSize:   pollBatchSize,
		staleClaimAfter: staleClaimAfter,
	}
}

func (ps *preparerService) Consume(ctx context.Context) error {
	messages, err := ps.pubSub.Subscribe(ctx, ps.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ps.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ps *preparerService) StartPoller(ctx context.Context) {
	ticker := time.NewTicker(ps.pollInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ps.pollOnce(ctx)
			}
		}
	}()
}

func (ps *preparerService) pollOnce(ctx context.Context) {
	uow := ps.uowFactory.NewUnitOfWork(ctx)
	assets, err := uow.ProductAssetRepository().FindAll(ctx,
		specification.StatusIn{Statuses: []string{
			string(entity.AssetStatusPending),
			string(entity.AssetStatusFailed),
		}},
		specification.RetryBelow{Cap: ps.retryPolicy.Cap},
		specification.OrderBy{Field: "created_at", Desc: false},
		specification.Pagination{Limit: ps.pollBatchSize, Offset: 0},
	)
	if err != nil {
		log.Printf("[ERROR] Preparer poll failed: %v", err)
		return
	}

	for _, asset := range assets {
		ps.processAsset(ctx, asset)
	}

	// Preparing rows whose worker died mid-attempt would otherwise be
	// stuck forever; anything untouched past the grace period is fair
	// game again.
	stale, err := uow.ProductAssetRepository().FindAll(ctx,
		specification.StatusIn{Statuses: []string{string(entity.AssetStatusPreparing)}},
		specification.UpdatedBefore{Cutoff: time.Now().Add(-ps.staleClaimAfter)},
		specification.RetryBelow{Cap: ps.retryPolicy.Cap},
		specification.OrderBy{Field: "created_at", Desc: false},
		specification.Pagination{Limit: ps.pollBatchSize, Offset: 0},
	)
	if err != nil {
		log.Printf("[ERROR] Stale-claim sweep failed: %v", err)
		return
	}
	for _, asset := range stale {
		ps.processAsset(ctx, asset)
	}
}

func (ps *preparerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishPrepareAssetMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal prepare message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	shopId, err := uuid.Parse(payload.ShopId)
	if err != nil {
		log.Printf("[ERROR] Invalid shop id in prepare message: %v", err)
		msg.Ack()
		return
	}

	uow := ps.uowFactory.NewUnitOfWork(ctx)
	asset, err := uow.ProductAssetRepository().FindOne(ctx,
		specification.ShopOwnedBy{ShopID: shopId},
		specification.ByProductId{ProductID: payload.ProductId},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to load asset for %s: %v", payload.ProductId, err)
		msg.Nack()
		return
	}
	if asset == nil {
		log.Printf("[WARN] Prepare message for missing asset %s, dropping", payload.ProductId)
		msg.Ack()
		return
	}

	ps.processAsset(ctx, asset)
	msg.Ack()
}

// processAsset claims the row and runs one preparation attempt. Losing the
// claim race is normal and silent.
func (ps *preparerService) processAsset(ctx context.Context, asset *entity.ProductAsset) {
	uow := ps.uowFactory.NewUnitOfWork(ctx)

	var claimed bool
	var err error
	if asset.Status == entity.AssetStatusPreparing {
		// An orphaned claim. Taking it over is bumping updated_at; the
		// cutoff keeps two pollers from both winning.
		claimed, err = uow.ProductAssetRepository().ReclaimStale(ctx, asset.Id, time.Now().Add(-ps.staleClaimAfter))
	} else {
		claimed, err = uow.ProductAssetRepository().TransitionStatus(ctx, asset.Id, asset.Status, entity.AssetStatusPreparing)
	}
	if err != nil {
		log.Printf("[ERROR] Failed to claim asset %s: %v", asset.Id, err)
		return
	}
	if !claimed {
		return
	}
	asset.Status = entity.AssetStatusPreparing

	shop, err := uow.ShopRepository().FindOne(ctx, specification.ByID{ID: asset.ShopId})
	if err != nil || shop == nil {
		ps.failAttempt(ctx, uow, asset, "shop unavailable")
		return
	}

	log.Printf("[INFO] Preparing asset for product %s (attempt %d)", asset.ProductId, asset.RetryCount+1)

	prepared, err := ps.renderAttempt(ctx, asset)
	if err != nil {
		ps.failAttempt(ctx, uow, asset, err.Error())
		return
	}

	newVersion := asset.ImageVersion + 1
	key := fmt.Sprintf("shops/%s/assets/%s/prepared-v%d.png", asset.ShopId, asset.ProductId, newVersion)
	if err := ps.blobs.Upload(ctx, key, prepared, "image/png"); err != nil {
		ps.failAttempt(ctx, uow, asset, err.Error())
		return
	}

	// The image swap and the handle invalidation must land together: a
	// provider handle pointing at the old bytes would poison every render
	// until it expired.
	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction for asset %s: %v", asset.Id, err)
		return
	}
	defer uow.Rollback()

	asset.PreparedImageRef = key
	asset.ImageVersion = newVersion
	asset.ErrorMessage = ""
	asset.InvalidateProviderFile()
	if err := uow.ProductAssetRepository().Update(ctx, asset); err != nil {
		log.Printf("[ERROR] Failed to persist prepared asset %s: %v", asset.Id, err)
		return
	}

	if _, err := uow.ProductAssetRepository().TransitionStatus(ctx, asset.Id, entity.AssetStatusPreparing, entity.AssetStatusReady); err != nil {
		log.Printf("[ERROR] Failed to mark asset %s ready: %v", asset.Id, err)
		return
	}
	asset.Status = entity.AssetStatusReady

	if asset.Enabled {
		if _, err := uow.ProductAssetRepository().TransitionStatus(ctx, asset.Id, entity.AssetStatusReady, entity.AssetStatusLive); err != nil {
			log.Printf("[ERROR] Failed to promote asset %s to live: %v", asset.Id, err)
			return
		}
		asset.Status = entity.AssetStatusLive
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit prepared asset %s: %v", asset.Id, err)
		return
	}

	if asset.Status == entity.AssetStatusLive {
		if err := ps.catalogClient.SyncVisibilityTag(ctx, shop.Domain, shop.AccessToken, asset.ProductId, true); err != nil {
			log.Printf("[WARN] Failed to sync visibility tag for %s: %v", asset.ProductId, err)
		}
	}

	if ps.eventPub != nil {
		evt := events.BaseEvent{
			Type: "ASSET_READY",
			Data: map[string]interface{}{
				"shop_id":    asset.ShopId,
				"product_id": asset.ProductId,
				"version":    asset.ImageVersion,
			},
			OccurredAt: time.Now(),
		}
		if err := ps.eventPub.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish ASSET_READY event: %v", err)
		}
	}

	ps.telemetry.EmitEvent(ctx, asset.ShopId, nil, "asset_prepared", entity.SeverityInfo, map[string]interface{}{
		"product_id": asset.ProductId,
		"version":    asset.ImageVersion,
	})

	log.Printf("[SUCCESS] Asset prepared for product %s (v%d)", asset.ProductId, asset.ImageVersion)
}

func (ps *preparerService) renderAttempt(ctx context.Context, asset *entity.ProductAsset) ([]byte, error) {
	source, err := fetchImage(ctx, asset.SourceImageRef)
	if err != nil {
		return nil, fmt.Errorf("fetch source image: %w", err)
	}

	return ps.renderer.RemoveBackground(ctx,
		provider.ImageInput{MIMEType: "image/jpeg", Data: source},
		constant.BackgroundRemovalPrompt,
	)
}

func (ps *preparerService) failAttempt(ctx context.Context, uow unitofwork.UnitOfWork, asset *entity.ProductAsset, reason string) {
	asset.RetryCount++
	asset.ErrorMessage = reason
	if err := uow.ProductAssetRepository().Update(ctx, asset); err != nil {
		log.Printf("[ERROR] Failed to record attempt failure for %s: %v", asset.Id, err)
		return
	}
	if _, err := uow.ProductAssetRepository().TransitionStatus(ctx, asset.Id, entity.AssetStatusPreparing, entity.AssetStatusFailed); err != nil {
		log.Printf("[ERROR] Failed to park asset %s as failed: %v", asset.Id, err)
		return
	}

	log.Printf("[WARN] Preparation attempt %d failed for product %s: %s", asset.RetryCount, asset.ProductId, reason)

	if ps.retryPolicy.Exhausted(asset.RetryCount) {
		// Permanent failure: give the reserved unit back.
		if err := ps.quotaLedger.Release(ctx, uow, asset.ShopId, 1); err != nil {
			log.Printf("[ERROR] Failed to release quota for %s: %v", asset.ProductId, err)
		}
		ps.telemetry.EmitEvent(ctx, asset.ShopId, nil, "asset_prepare_failed", entity.SeverityError, map[string]interface{}{
			"product_id": asset.ProductId,
			"attempts":   asset.RetryCount,
			"reason":     reason,
		})
	}
}

func fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image, status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
