package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-roomviz-be/internal/constant"
	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/pkg/logger"
	"ai-roomviz-be/internal/repository/specification"
	"ai-roomviz-be/internal/repository/unitofwork"
	"ai-roomviz-be/pkg/blobstore"
	"ai-roomviz-be/pkg/filecache"
	"ai-roomviz-be/pkg/provider"
	"ai-roomviz-be/pkg/quota"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type IRoomService interface {
	StartSession(ctx context.Context, shopDomain string) (*dto.StartSessionResponse, error)
	AttachImage(ctx context.Context, shopDomain string, req *dto.AttachImageRequest) (*dto.AttachImageResponse, error)
	CleanupRoom(ctx context.Context, shopDomain string, req *dto.CleanupRoomRequest) (*dto.CleanupRoomResponse, error)
	PollJob(ctx context.Context, shopDomain string, jobId uuid.UUID) (*dto.PollJobResponse, error)
}

type roomService struct {
	uowFactory  unitofwork.RepositoryFactory
	renderer    provider.Renderer
	blobs       *blobstore.Store
	fileCache   *filecache.Cache
	quotaLedger *quota.Ledger
	telemetry   ITelemetryService
	jobCache    *gocache.Cache
	sessionTTL  time.Duration
	log         logger.ILogger
}

func NewRoomService(
	uowFactory unitofwork.RepositoryFactory,
	renderer provider.Renderer,
	blobs *blobstore.Store,
	fileCache *filecache.Cache,
	quotaLedger *quota.Ledger,
	telemetry ITelemetryService,
	sessionTTL time.Duration,
	log logger.ILogger,
) IRoomService {
	return &roomService{
		uowFactory:  uowFactory,
		renderer:    renderer,
		blobs:       blobs,
		fileCache:   fileCache,
		quotaLedger: quotaLedger,
		telemetry:   telemetry,
		jobCache:    gocache.New(5*time.Minute, 10*time.Minute),
		sessionTTL:  sessionTTL,
		log:         log,
	}
}

func (s *roomService) StartSession(ctx context.Context, shopDomain string) (*dto.StartSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	sessionId := uuid.New()
	imageRef := fmt.Sprintf("shops/%s/sessions/%s/room.jpg", shop.Id, sessionId)

	target, err := s.blobs.PresignUpload(ctx, imageRef, "image/jpeg", 15*time.Minute)
	if err != nil {
		return nil, &dto.StorageError{Op: "presign", Key: imageRef, Err: err}
	}

	session := &entity.RoomSession{
		Id:        sessionId,
		ShopId:    shop.Id,
		ExpiresAt: time.Now().Add(s.sessionTTL),
		CreatedAt: time.Now(),
	}
	if err := uow.RoomSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.StartSessionResponse{
		SessionId:    sessionId,
		UploadTarget: target.URL,
		ImageRef:     imageRef,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *roomService) loadSession(ctx context.Context, uow unitofwork.UnitOfWork, shop *entity.Shop, sessionId uuid.UUID) (*entity.RoomSession, error) {
	session, err := uow.RoomSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
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
	return session, nil
}

func (s *roomService) AttachImage(ctx context.Context, shopDomain string, req *dto.AttachImageRequest) (*dto.AttachImageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	session, err := s.loadSession(ctx, uow, shop, req.SessionId)
	if err != nil {
		return nil, err
	}

	exists, err := s.blobs.Exists(ctx, req.ImageRef)
	if err != nil {
		return nil, &dto.StorageError{Op: "head", Key: req.ImageRef, Err: err}
	}
	if !exists {
		return nil, dto.NewValidationError("image_ref", "no uploaded image at this reference")
	}

	// A new photo replaces anything derived from the old one. Its handle
	// invalidation rides the same write.
	session.OriginalImageRef = req.ImageRef
	session.CleanedImageRef = ""
	session.InvalidateProviderFile()
	session.ExpiresAt = time.Now().Add(s.sessionTTL)
	if err := uow.RoomSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	return &dto.AttachImageResponse{
		SessionId: session.Id,
		ImageRef:  session.OriginalImageRef,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *roomService) CleanupRoom(ctx context.Context, shopDomain string, req *dto.CleanupRoomRequest) (*dto.CleanupRoomResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	session, err := s.loadSession(ctx, uow, shop, req.SessionId)
	if err != nil {
		return nil, err
	}
	if session.OriginalImageRef == "" {
		return nil, dto.NewValidationError("session_id", "no room image attached to this session")
	}

	job := &entity.RenderJob{
		Id:        uuid.New(),
		ShopId:    shop.Id,
		SessionId: session.Id,
		Kind:      entity.RenderJobKindCleanup,
		Status:    entity.RenderJobStatusQueued,
		CreatedAt: time.Now(),
	}
	if err := uow.RenderJobRepository().Create(ctx, job); err != nil {
		return nil, err
	}

	// Cleanup usage is recorded, never enforced.
	if err := s.quotaLedger.Record(ctx, uow, shop.Id, quota.ClassCleanup, 1); err != nil {
		s.log.Warn("room", "cleanup usage not recorded", map[string]interface{}{
			"shopId": shop.Id.String(),
			"error":  err.Error(),
		})
	}

	s.jobCache.Set(job.Id.String(), &dto.PollJobResponse{
		JobId:  job.Id,
		Status: string(job.Status),
	}, gocache.DefaultExpiration)

	go s.runCleanupJob(context.WithoutCancel(ctx), job.Id, session.Id, shop.Id, req.MaskRef)

	return &dto.CleanupRoomResponse{JobId: job.Id}, nil
}

// runCleanupJob executes one cleanup render. It owns the job row from
// processing to a terminal state.
func (s *roomService) runCleanupJob(ctx context.Context, jobId, sessionId, shopId uuid.UUID, maskRef string) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.RenderJobRepository().FindOne(ctx, specification.ByID{ID: jobId})
	if err != nil || job == nil {
		log.Printf("[ERROR] Cleanup job %s vanished: %v", jobId, err)
		return
	}
	job.Status = entity.RenderJobStatusProcessing
	if err := uow.RenderJobRepository().Update(ctx, job); err != nil {
		log.Printf("[ERROR] Failed to mark cleanup job %s processing: %v", jobId, err)
		return
	}

	outputRef, renderErr := s.renderCleanup(ctx, uow, sessionId, shopId, maskRef)

	now := time.Now()
	job.CompletedAt = &now
	if renderErr != nil {
		job.Status = entity.RenderJobStatusFailed
		job.ErrorCode = "render_failed"
		job.ErrorMessage = renderErr.Error()
		s.telemetry.EmitEvent(ctx, shopId, nil, "cleanup_failed", entity.SeverityError, map[string]interface{}{
			"job_id": jobId.String(),
			"reason": renderErr.Error(),
		})
	} else {
		job.Status = entity.RenderJobStatusCompleted
		job.OutputImageRef = outputRef
	}
	if err := uow.RenderJobRepository().Update(ctx, job); err != nil {
		log.Printf("[ERROR] Failed to finish cleanup job %s: %v", jobId, err)
		return
	}

	s.jobCache.Set(jobId.String(), &dto.PollJobResponse{
		JobId:    jobId,
		Status:   string(job.Status),
		ImageRef: job.OutputImageRef,
		Error:    job.ErrorMessage,
	}, gocache.DefaultExpiration)
}

func (s *roomService) renderCleanup(ctx context.Context, uow unitofwork.UnitOfWork, sessionId, shopId uuid.UUID, maskRef string) (string, error) {
	session, err := uow.RoomSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", dto.NewNotFoundError("session")
	}

	roomInput, handle, err := s.fileCache.EnsureUploaded(ctx, session.CurrentImageRef(), "image/jpeg",
		session.ProviderFileURI, session.ProviderFileExpiresAt)
	if err != nil {
		return "", err
	}
	if handle != nil {
		session.ProviderFileURI = handle.URI
		session.ProviderFileExpiresAt = &handle.ExpiresAt
		if err := uow.RoomSessionRepository().Update(ctx, session); err != nil {
			return "", err
		}
	}

	prompt := fmt.Sprintf(constant.CleanupPromptTemplate, "")
	var mask *provider.ImageInput
	if maskRef != "" {
		maskData, err := s.blobs.Download(ctx, maskRef)
		if err != nil {
			return "", &dto.StorageError{Op: "download", Key: maskRef, Err: err}
		}
		mask = &provider.ImageInput{MIMEType: "image/png", Data: maskData}
		prompt = fmt.Sprintf(constant.CleanupPromptTemplate, constant.CleanupMaskNote)
	}

	rendered, err := s.renderer.CleanupRoom(ctx, roomInput, mask, prompt)
	if err != nil {
		return "", &dto.ProviderError{Op: "cleanup", Err: err}
	}

	outputRef := fmt.Sprintf("shops/%s/sessions/%s/cleaned-%d.jpg", shopId, sessionId, time.Now().UnixMilli())
	if err := s.blobs.Upload(ctx, outputRef, rendered, "image/jpeg"); err != nil {
		return "", &dto.StorageError{Op: "upload", Key: outputRef, Err: err}
	}

	// The session now renders from the cleaned image, so the staged copy
	// of the old one must die in the same write.
	session.CleanedImageRef = outputRef
	session.InvalidateProviderFile()
	if err := uow.RoomSessionRepository().Update(ctx, session); err != nil {
		return "", err
	}

	return outputRef, nil
}

func (s *roomService) PollJob(ctx context.Context, shopDomain string, jobId uuid.UUID) (*dto.PollJobResponse, error) {
	if cached, found := s.jobCache.Get(jobId.String()); found {
		res := cached.(*dto.PollJobResponse)
		if res.ImageRef != "" && res.ImageURL == "" {
			if url, err := s.blobs.SignedURL(ctx, res.ImageRef, 0); err == nil {
				res.ImageURL = url
			}
		}
		return res, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := resolveShop(ctx, uow, shopDomain)
	if err != nil {
		return nil, err
	}

	job, err := uow.RenderJobRepository().FindOne(ctx,
		specification.ByID{ID: jobId},
		specification.ShopOwnedBy{ShopID: shop.Id},
	)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, dto.NewNotFoundError("job")
	}

	res := &dto.PollJobResponse{
		JobId:    job.Id,
		Status:   string(job.Status),
		ImageRef: job.OutputImageRef,
		Error:    job.ErrorMessage,
	}
	if job.OutputImageRef != "" {
		if url, err := s.blobs.SignedURL(ctx, job.OutputImageRef, 0); err == nil {
			res.ImageURL = url
		}
	}
	return res, nil
}
