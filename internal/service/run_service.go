package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-roomviz-be/internal/constant"
	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/pkg/logger"
	"ai-roomviz-be/internal/repository/specification"
	"ai-roomviz-be/internal/repository/unitofwork"
	"ai-roomviz-be/pkg/provider"
	"ai-roomviz-be/pkg/quota"

	"github.com/google/uuid"
)

type IRunService interface {
	CreateRun(ctx context.Context, shopDomain string, req *dto.CreateRunRequest) (*dto.CreateRunResponse, error)
	GetRun(ctx context.Context, shopDomain string, runId uuid.UUID) (*dto.RunDetailResponse, error)
}

// RunBlobs is the slice of the object store the run engine needs.
// *blobstore.Store satisfies it.
type RunBlobs interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(ctx context.Context, key string, version int) (string, error)
}

// InputStager stages render inputs on the provider's file API.
// *filecache.Cache satisfies it.
type InputStager interface {
	EnsureUploaded(ctx context.Context, key, mimeType, uri string, expiresAt *time.Time) (provider.ImageInput, *provider.FileHandle, error)
}

type runService struct {
	uowFactory     unitofwork.RepositoryFactory
	renderer       provider.Renderer
	blobs          RunBlobs
	fileCache      InputStager
	quotaLedger    *quota.Ledger
	telemetry      ITelemetryService
	variantTimeout time.Duration
	artifactTTL    time.Duration
	log            logger.ILogger
}

func NewRunService(
	uowFactory unitofwork.RepositoryFactory,
	renderer provider.Renderer,
	blobs RunBlobs,
	fileCache InputStager,
	quotaLedger *quota.Ledger,
	telemetry ITelemetryService,
	variantTimeout time.Duration,
	artifactTTL time.Duration,
	log logger.ILogger,
) IRunService {
	return &runService{
		uowFactory:     uowFactory,
		renderer:       renderer,
		blobs:          blobs,
		fileCache:      fileCache,
		quotaLedger:    quotaLedger,
		telemetry:      telemetry,
		variantTimeout: variantTimeout,
		artifactTTL:    artifactTTL,
		log:            log,
	}
}

func (s *runService) CreateRun(ctx context.Context, shopDomain string, req *dto.CreateRunRequest) (*dto.CreateRunResponse, error) {
	seen := map[string]bool{}
	for _, v := range req.Variants {
		if seen[v.Key] {
			return nil, dto.NewValidationError("variants", "duplicate variant key: "+v.Key)
		}
		seen[v.Key] = true
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	session, err := uow.RoomSessionRepository().FindOne(ctx,
		specification.ByID{ID: req.SessionId},
		specification.ShopOwnedBy{ShopID: shop.Id},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, dto.NewNotFoundError("session")
	}
	if session.IsExpired(time.Now()) {
		return nil, dto.NewValidationError("session_id", "session expired")
	}
	if session.OriginalImageRef == "" {
		return nil, dto.NewValidationError("session_id", "no room image attached to this session")
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
	if !asset.Status.IsTerminalForWorker() {
		return nil, dto.NewValidationError("product_id", "asset is not prepared yet")
	}

	// The whole batch reserves upfront. Unused units come back when the
	// run settles.
	if err := s.quotaLedger.Reserve(ctx, uow, shop.Id, len(req.Variants)); err != nil {
		return nil, err
	}

	placementSnapshot, err := json.Marshal(req.Variants)
	if err != nil {
		return nil, err
	}
	factsSnapshot, err := json.Marshal(map[string]interface{}{
		"room_image_ref":     session.CurrentImageRef(),
		"prepared_image_ref": asset.PreparedImageRef,
		"image_version":      asset.ImageVersion,
	})
	if err != nil {
		return nil, err
	}

	run := &entity.CompositeRun{
		Id:                uuid.New(),
		ShopId:            shop.Id,
		ProductId:         req.ProductId,
		SessionId:         session.Id,
		Status:            entity.RunStatusInFlight,
		PlacementSnapshot: placementSnapshot,
		FactsSnapshot:     factsSnapshot,
		RequestedVariants: len(req.Variants),
		CreatedAt:         time.Now(),
	}
	if err := uow.CompositeRunRepository().Create(ctx, run); err != nil {
		if relErr := s.quotaLedger.Release(ctx, uow, shop.Id, len(req.Variants)); relErr != nil {
			s.log.Error("run", "failed to release quota after create failure", map[string]interface{}{
				"shopId": shop.Id.String(),
				"error":  relErr.Error(),
			})
		}
		return nil, err
	}

	go s.executeRun(context.WithoutCancel(ctx), run, session, asset, req.Variants)

	return &dto.CreateRunResponse{
		RunId:  run.Id,
		Status: string(run.Status),
	}, nil
}

// executeRun fans the variants out, joins them, and settles the run row.
func (s *runService) executeRun(ctx context.Context, run *entity.CompositeRun, session *entity.RoomSession, asset *entity.ProductAsset, variants []dto.VariantSpec) {
	started := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	s.telemetry.EmitEvent(ctx, run.ShopId, &run.Id, "run_started", entity.SeverityInfo, map[string]interface{}{
		"product_id": run.ProductId,
		"variants":   len(variants),
	})

	// Stage both inputs once; every variant shares the handles.
	roomInput, roomHandle, err := s.fileCache.EnsureUploaded(ctx, session.CurrentImageRef(), "image/jpeg",
		session.ProviderFileURI, session.ProviderFileExpiresAt)
	if err != nil {
		s.settleAfterInputFailure(ctx, uow, run, variants, err)
		return
	}
	if roomHandle != nil {
		session.ProviderFileURI = roomHandle.URI
		session.ProviderFileExpiresAt = &roomHandle.ExpiresAt
		if err := uow.RoomSessionRepository().Update(ctx, session); err != nil {
			s.log.Warn("run", "failed to persist session file handle", map[string]interface{}{
				"sessionId": session.Id.String(),
				"error":     err.Error(),
			})
		}
	}

	productInput, productHandle, err := s.fileCache.EnsureUploaded(ctx, asset.PreparedImageRef, "image/png",
		asset.ProviderFileURI, asset.ProviderFileExpiresAt)
	if err != nil {
		s.settleAfterInputFailure(ctx, uow, run, variants, err)
		return
	}
	if productHandle != nil {
		asset.ProviderFileURI = productHandle.URI
		asset.ProviderFileExpiresAt = &productHandle.ExpiresAt
		if err := uow.ProductAssetRepository().Update(ctx, asset); err != nil {
			s.log.Warn("run", "failed to persist asset file handle", map[string]interface{}{
				"assetId": asset.Id.String(),
				"error":   err.Error(),
			})
		}
	}

	var wg sync.WaitGroup
	for _, variant := range variants {
		wg.Add(1)
		go func(v dto.VariantSpec) {
			defer wg.Done()
			s.executeVariant(ctx, run, v, roomInput, productInput)
		}(variant)
	}
	wg.Wait()

	s.settleRun(ctx, uow, run, started)
}

func (s *runService) executeVariant(ctx context.Context, run *entity.CompositeRun, variant dto.VariantSpec, room, product provider.ImageInput) {
	vctx, cancel := context.WithTimeout(ctx, s.variantTimeout)
	defer cancel()

	started := time.Now()
	prompt := buildCompositePrompt(variant)

	rendered, err := s.renderer.GenerateComposite(vctx, room, product, prompt)
	latency := time.Since(started).Milliseconds()

	result := &entity.VariantResult{
		Id:         uuid.New(),
		RunId:      run.Id,
		VariantKey: variant.Key,
		LatencyMs:  &latency,
		CreatedAt:  time.Now(),
	}

	switch {
	case err == nil:
		outputRef := fmt.Sprintf("shops/%s/runs/%s/%s.jpg", run.ShopId, run.Id, variant.Key)
		if upErr := s.blobs.Upload(ctx, outputRef, rendered, "image/jpeg"); upErr != nil {
			result.Status = entity.VariantStatusFailed
			result.ErrorMessage = upErr.Error()
		} else {
			result.Status = entity.VariantStatusSuccess
			result.OutputImageRef = outputRef
		}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(vctx.Err(), context.DeadlineExceeded):
		result.Status = entity.VariantStatusTimeout
		result.ErrorMessage = "variant timed out"
	default:
		result.Status = entity.VariantStatusFailed
		result.ErrorMessage = err.Error()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.VariantResultRepository().CreateIdempotent(ctx, result); err != nil {
		s.log.Error("run", "failed to record variant result", map[string]interface{}{
			"runId":   run.Id.String(),
			"variant": variant.Key,
			"error":   err.Error(),
		})
	}
}

// settleAfterInputFailure writes a failed result for every variant so the
// aggregate settles as failed rather than hanging in flight.
func (s *runService) settleAfterInputFailure(ctx context.Context, uow unitofwork.UnitOfWork, run *entity.CompositeRun, variants []dto.VariantSpec, cause error) {
	for _, v := range variants {
		latency := int64(0)
		result := &entity.VariantResult{
			Id:           uuid.New(),
			RunId:        run.Id,
			VariantKey:   v.Key,
			Status:       entity.VariantStatusFailed,
			LatencyMs:    &latency,
			ErrorMessage: cause.Error(),
			CreatedAt:    time.Now(),
		}
		if err := uow.VariantResultRepository().CreateIdempotent(ctx, result); err != nil {
			s.log.Error("run", "failed to record input-failure result", map[string]interface{}{
				"runId":   run.Id.String(),
				"variant": v.Key,
				"error":   err.Error(),
			})
		}
	}
	s.settleRun(ctx, uow, run, run.CreatedAt)
}

func (s *runService) settleRun(ctx context.Context, uow unitofwork.UnitOfWork, run *entity.CompositeRun, started time.Time) {
	results, err := uow.VariantResultRepository().FindAllByRun(ctx, run.Id)
	if err != nil {
		s.log.Error("run", "failed to load results for settlement", map[string]interface{}{
			"runId": run.Id.String(),
			"error": err.Error(),
		})
		return
	}

	successes := 0
	for _, r := range results {
		if r.Status == entity.VariantStatusSuccess {
			successes++
		}
	}

	now := time.Now()
	duration := now.Sub(started).Milliseconds()
	run.Status = entity.AggregateRunStatus(run.RequestedVariants, results)
	run.TotalDurationMs = &duration
	run.CompletedAt = &now
	if err := uow.CompositeRunRepository().Update(ctx, run); err != nil {
		s.log.Error("run", "failed to persist settled run", map[string]interface{}{
			"runId": run.Id.String(),
			"error": err.Error(),
		})
		return
	}

	// Give back what the failed and timed-out variants never used.
	unused := run.RequestedVariants - successes
	if err := s.quotaLedger.Release(ctx, uow, run.ShopId, unused); err != nil {
		s.log.Error("run", "failed to release unused quota", map[string]interface{}{
			"runId": run.Id.String(),
			"count": unused,
			"error": err.Error(),
		})
	}

	s.telemetry.EmitEvent(ctx, run.ShopId, &run.Id, "run_completed", entity.SeverityInfo, map[string]interface{}{
		"status":      string(run.Status),
		"successes":   successes,
		"requested":   run.RequestedVariants,
		"duration_ms": duration,
	})

	if run.Status == entity.RunStatusFailed {
		s.storeFailureArtifact(ctx, run, results)
	}
}

// storeFailureArtifact snapshots a fully-failed run for later inspection.
// The artifact expires on its own; losing it costs nothing but a debug aid.
func (s *runService) storeFailureArtifact(ctx context.Context, run *entity.CompositeRun, results []*entity.VariantResult) {
	reasons := make(map[string]string, len(results))
	for _, r := range results {
		reasons[r.VariantKey] = r.ErrorMessage
	}
	diag, err := json.Marshal(map[string]interface{}{
		"product_id":         run.ProductId,
		"placement_snapshot": json.RawMessage(run.PlacementSnapshot),
		"facts_snapshot":     json.RawMessage(run.FactsSnapshot),
		"variant_errors":     reasons,
	})
	if err != nil {
		return
	}
	if err := s.telemetry.StoreArtifact(ctx, run.ShopId, run.Id, diag, "application/json", s.artifactTTL); err != nil {
		s.log.Warn("run", "failed to store failure artifact", map[string]interface{}{
			"runId": run.Id.String(),
			"error": err.Error(),
		})
	}
}

func buildCompositePrompt(variant dto.VariantSpec) string {
	placementHint := "place the product where it fits the room naturally"
	if len(variant.Placement) > 0 {
		if data, err := json.Marshal(variant.Placement); err == nil {
			placementHint = string(data)
		}
	}
	return fmt.Sprintf(constant.CompositePromptTemplate, placementHint, variant.Prompt)
}

func (s *runService) GetRun(ctx context.Context, shopDomain string, runId uuid.UUID) (*dto.RunDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	run, err := uow.CompositeRunRepository().FindOne(ctx,
		specification.ByID{ID: runId},
		specification.ShopOwnedBy{ShopID: shop.Id},
	)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, dto.NewNotFoundError("run")
	}

	results, err := uow.VariantResultRepository().FindAllByRun(ctx, run.Id)
	if err != nil {
		return nil, err
	}

	res := &dto.RunDetailResponse{
		RunId: run.Id,
		// Always derived from the results, never trusted from the row.
		Status:          string(entity.AggregateRunStatus(run.RequestedVariants, results)),
		TotalDurationMs: run.TotalDurationMs,
		Variants:        make([]dto.VariantResultResponse, 0, len(results)),
		CreatedAt:       run.CreatedAt,
		CompletedAt:     run.CompletedAt,
	}

	for _, r := range results {
		vr := dto.VariantResultResponse{
			VariantKey:     r.VariantKey,
			Status:         string(r.Status),
			LatencyMs:      r.LatencyMs,
			OutputImageRef: r.OutputImageRef,
			Error:          r.ErrorMessage,
		}
		if r.OutputImageRef != "" {
			if url, err := s.blobs.SignedURL(ctx, r.OutputImageRef, 0); err == nil {
				vr.OutputImageURL = url
			}
		}
		res.Variants = append(res.Variants, vr)
	}

	return res, nil
}
