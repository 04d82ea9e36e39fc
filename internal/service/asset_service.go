package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/pkg/logger"
	"ai-roomviz-be/internal/repository/specification"
	"ai-roomviz-be/internal/repository/unitofwork"
	"ai-roomviz-be/pkg/blobstore"
	"ai-roomviz-be/pkg/quota"
	"ai-roomviz-be/pkg/retry"

	"github.com/google/uuid"
)

// ProductCatalog is the slice of the commerce admin API the asset flow
// needs. *catalog.Client satisfies it.
type ProductCatalog interface {
	FeaturedImage(ctx context.Context, shopDomain, accessToken string, productId string) (string, error)
	SyncVisibilityTag(ctx context.Context, shopDomain, accessToken string, productId string, visible bool) error
}

type IAssetService interface {
	Prepare(ctx context.Context, shopDomain string, req *dto.PrepareAssetRequest) (*dto.PrepareAssetResponse, error)
	BatchPrepare(ctx context.Context, shopDomain string, req *dto.BatchPrepareRequest) (*dto.BatchPrepareResponse, error)
	Status(ctx context.Context, shopDomain string, productId string) (*dto.AssetStatusResponse, error)
	Toggle(ctx context.Context, shopDomain string, req *dto.ToggleAssetRequest) (*dto.ToggleAssetResponse, error)
	Retry(ctx context.Context, shopDomain string, productId string) (*dto.PrepareAssetResponse, error)
}

type assetService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	catalogClient    ProductCatalog
	blobs            *blobstore.Store
	quotaLedger      *quota.Ledger
	retryPolicy      retry.Policy
	log              logger.ILogger
}

func NewAssetService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	catalogClient ProductCatalog,
	blobs *blobstore.Store,
	quotaLedger *quota.Ledger,
	retryPolicy retry.Policy,
	log logger.ILogger,
) IAssetService {
	return &assetService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		catalogClient:    catalogClient,
		blobs:            blobs,
		quotaLedger:      quotaLedger,
		retryPolicy:      retryPolicy,
		log:              log,
	}
}

func resolveShop(ctx context.Context, uow unitofwork.UnitOfWork, domain string) (*entity.Shop, error) {
	shop, err := uow.ShopRepository().FindOne(ctx, specification.ByDomain{Domain: domain})
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, dto.NewNotFoundError("shop")
	}
	return shop, nil
}

// enqueuePrepare validates one product and stages its asset row for the
// preparer. The second return reports whether new billable work was queued:
// an asset already sitting in the queue keeps its earlier reservation, so
// the caller must give the fresh unit back.
func (s *assetService) enqueuePrepare(ctx context.Context, uow unitofwork.UnitOfWork, shop *entity.Shop, productId string) (*entity.ProductAsset, bool, error) {
	featured, err := s.catalogClient.FeaturedImage(ctx, shop.Domain, shop.AccessToken, productId)
	if err != nil {
		return nil, false, err
	}
	if featured == "" {
		return nil, false, dto.NewValidationError("product_id", "No featured image available for this product")
	}

	asset, err := uow.ProductAssetRepository().FindOne(ctx,
		specification.ShopOwnedBy{ShopID: shop.Id},
		specification.ByProductId{ProductID: productId},
	)
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	switch {
	case asset == nil:
		asset = &entity.ProductAsset{
			Id:             uuid.New(),
			ShopId:         shop.Id,
			ProductId:      productId,
			SourceImageRef: featured,
			Status:         entity.AssetStatusPending,
			PrepStrategy:   entity.PrepStrategyManual,
			CreatedAt:      now,
		}
		if err := uow.ProductAssetRepository().Create(ctx, asset); err != nil {
			return nil, false, err
		}

	case asset.Status == entity.AssetStatusPreparing || asset.Status == entity.AssetStatusPending:
		// Already queued, nothing to do.
		return asset, false, nil

	case asset.Status == entity.AssetStatusLive:
		return nil, false, dto.NewValidationError("product_id", "asset is live, disable it before re-preparing")

	case asset.Status == entity.AssetStatusFailed:
		asset.Status = entity.AssetStatusPending
		asset.RetryCount = 0
		asset.ErrorMessage = ""
		asset.SourceImageRef = featured
		if err := uow.ProductAssetRepository().Update(ctx, asset); err != nil {
			return nil, false, err
		}

	default: // ready, a re-prepare
		asset.SourceImageRef = featured
		if err := uow.ProductAssetRepository().Update(ctx, asset); err != nil {
			return nil, false, err
		}
	}

	s.publishPrepareNudge(ctx, shop, productId)

	return asset, true, nil
}

func (s *assetService) publishPrepareNudge(ctx context.Context, shop *entity.Shop, productId string) {
	payload, err := json.Marshal(dto.PublishPrepareAssetMessage{
		ShopId:    shop.Id.String(),
		ProductId: productId,
	})
	if err != nil {
		s.log.Warn("asset", "failed to marshal prepare nudge", map[string]interface{}{
			"productId": productId,
			"error":     err.Error(),
		})
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		// The poller will pick the row up anyway.
		s.log.Warn("asset", "failed to publish prepare nudge", map[string]interface{}{
			"productId": productId,
			"error":     err.Error(),
		})
	}
}

func (s *assetService) Prepare(ctx context.Context, shopDomain string, req *dto.PrepareAssetRequest) (*dto.PrepareAssetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	if err := s.quotaLedger.Reserve(ctx, uow, shop.Id, 1); err != nil {
		return nil, err
	}

	asset, newWork, err := s.enqueuePrepare(ctx, uow, shop, req.ProductId)
	if err != nil || !newWork {
		// A failed enqueue and a duplicate click both leave the fresh
		// unit unused.
		if relErr := s.quotaLedger.Release(ctx, uow, shop.Id, 1); relErr != nil {
			s.log.Error("asset", "failed to release quota after enqueue", map[string]interface{}{
				"shopId": shop.Id.String(),
				"error":  relErr.Error(),
			})
		}
		if err != nil {
			return nil, err
		}
	}

	return &dto.PrepareAssetResponse{
		ProductId: req.ProductId,
		Status:    string(asset.Status),
	}, nil
}

func (s *assetService) BatchPrepare(ctx context.Context, shopDomain string, req *dto.BatchPrepareRequest) (*dto.BatchPrepareResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	// The whole batch reserves upfront: either every item gets a unit or
	// the request is rejected. Per-item failures release their unit.
	if err := s.quotaLedger.Reserve(ctx, uow, shop.Id, len(req.ProductIds)); err != nil {
		return nil, err
	}

	res := &dto.BatchPrepareResponse{Errors: []dto.BatchPrepareItemError{}}
	unused := 0
	for _, productId := range req.ProductIds {
		_, newWork, err := s.enqueuePrepare(ctx, uow, shop, productId)
		if err != nil {
			unused++
			res.Errors = append(res.Errors, dto.BatchPrepareItemError{
				ProductId: productId,
				Error:     err.Error(),
			})
			continue
		}
		if !newWork {
			// Already in the queue under its earlier reservation.
			unused++
		}
		res.Queued++
	}

	if unused > 0 {
		if err := s.quotaLedger.Release(ctx, uow, shop.Id, unused); err != nil {
			s.log.Error("asset", "failed to release unused batch quota", map[string]interface{}{
				"shopId": shop.Id.String(),
				"count":  unused,
				"error":  err.Error(),
			})
		}
	}

	return res, nil
}

func (s *assetService) Status(ctx context.Context, shopDomain string, productId string) (*dto.AssetStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	asset, err := uow.ProductAssetRepository().FindOne(ctx,
		specification.ShopOwnedBy{ShopID: shop.Id},
		specification.ByProductId{ProductID: productId},
	)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, dto.NewNotFoundError("asset")
	}

	res := &dto.AssetStatusResponse{
		ProductId:        asset.ProductId,
		Status:           string(asset.Status),
		Enabled:          asset.Enabled,
		PreparedImageRef: asset.PreparedImageRef,
		ImageVersion:     asset.ImageVersion,
		Error:            asset.ErrorMessage,
		UpdatedAt:        asset.UpdatedAt,
	}

	if asset.PreparedImageRef != "" {
		url, err := s.blobs.SignedURL(ctx, asset.PreparedImageRef, asset.ImageVersion)
		if err != nil {
			// Status stays useful without a URL.
			s.log.Warn("asset", "failed to sign prepared image url", map[string]interface{}{
				"key":   asset.PreparedImageRef,
				"error": err.Error(),
			})
		} else {
			res.PreparedImageURL = url
		}
	}

	return res, nil
}

func (s *assetService) Toggle(ctx context.Context, shopDomain string, req *dto.ToggleAssetRequest) (*dto.ToggleAssetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	asset, err := uow.ProductAssetRepository().FindOne(ctx,
		specification.ShopOwnedBy{ShopID: shop.Id},
		specification.ByProductId{ProductID: req.ProductId},
	)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, dto.NewNotFoundError("asset")
	}

	enabled := *req.Enabled
	newStatus := asset.ApplyEnabledToggle(enabled)
	statusChanged := newStatus != asset.Status
	asset.Status = newStatus
	if err := uow.ProductAssetRepository().Update(ctx, asset); err != nil {
		return nil, err
	}

	if statusChanged {
		visible := asset.Status == entity.AssetStatusLive
		if err := s.catalogClient.SyncVisibilityTag(ctx, shop.Domain, shop.AccessToken, req.ProductId, visible); err != nil {
			// The widget falls back to asset status polling, so a tag
			// drift is tolerable.
			s.log.Warn("asset", "failed to sync visibility tag", map[string]interface{}{
				"productId": req.ProductId,
				"error":     err.Error(),
			})
		}
	}

	return &dto.ToggleAssetResponse{
		ProductId: asset.ProductId,
		Status:    string(asset.Status),
		Enabled:   asset.Enabled,
	}, nil
}

func (s *assetService) Retry(ctx context.Context, shopDomain string, productId string) (*dto.PrepareAssetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	asset, err := uow.ProductAssetRepository().FindOne(ctx,
		specification.ShopOwnedBy{ShopID: shop.Id},
		specification.ByProductId{ProductID: productId},
	)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, dto.NewNotFoundError("asset")
	}
	if asset.Status != entity.AssetStatusFailed {
		return nil, dto.NewValidationError("product_id", "only failed assets can be re-triggered")
	}

	// An exhausted attempt chain gave its quota unit back when it parked
	// the asset, so re-triggering it starts a freshly-reserved one. A
	// chain still below the cap keeps the unit it already holds.
	reserved := s.retryPolicy.Exhausted(asset.RetryCount)
	if reserved {
		if err := s.quotaLedger.Reserve(ctx, uow, shop.Id, 1); err != nil {
			return nil, err
		}
	}

	asset.Status = entity.AssetStatusPending
	asset.RetryCount = 0
	asset.ErrorMessage = ""
	if err := uow.ProductAssetRepository().Update(ctx, asset); err != nil {
		if reserved {
			if relErr := s.quotaLedger.Release(ctx, uow, shop.Id, 1); relErr != nil {
				s.log.Error("asset", "failed to release quota after retry failure", map[string]interface{}{
					"shopId": shop.Id.String(),
					"error":  relErr.Error(),
				})
			}
		}
		return nil, err
	}

	s.publishPrepareNudge(ctx, shop, productId)

	return &dto.PrepareAssetResponse{
		ProductId: productId,
		Status:    string(asset.Status),
	}, nil
}
