package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/pkg/logger"
	"ai-roomviz-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ArtifactBlobs is the slice of the object store the telemetry service
// needs. *blobstore.Store satisfies it.
type ArtifactBlobs interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

type ITelemetryService interface {
	// EmitEvent records a telemetry row. It never returns an error:
	// telemetry must not break the pipeline it observes.
	EmitEvent(ctx context.Context, shopId uuid.UUID, runId *uuid.UUID, eventType string, severity entity.EventSeverity, payload map[string]interface{})

	// StoreArtifact uploads a debug blob and records its TTL'd row.
	StoreArtifact(ctx context.Context, shopId uuid.UUID, runId uuid.UUID, data []byte, contentType string, ttl time.Duration) error

	// Prune removes expired artifacts (blob first, then row) and aged
	// events in bounded batches.
	Prune(ctx context.Context, eventMaxAge time.Duration, batchSize int) (eventsDeleted int64, artifactsDeleted int64, err error)
}

type telemetryService struct {
	uowFactory unitofwork.RepositoryFactory
	blobs      ArtifactBlobs
	log        logger.ILogger
}

func NewTelemetryService(
	uowFactory unitofwork.RepositoryFactory,
	blobs ArtifactBlobs,
	log logger.ILogger,
) ITelemetryService {
	return &telemetryService{
		uowFactory: uowFactory,
		blobs:      blobs,
		log:        log,
	}
}

func (s *telemetryService) EmitEvent(ctx context.Context, shopId uuid.UUID, runId *uuid.UUID, eventType string, severity entity.EventSeverity, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	event := &entity.MonitorEvent{
		Id:        uuid.New(),
		RunId:     runId,
		ShopId:    shopId,
		Type:      eventType,
		Severity:  severity,
		Payload:   data,
		CreatedAt: time.Now(),
	}
	if err := uow.MonitorEventRepository().Create(ctx, event); err != nil {
		s.log.Warn("telemetry", "failed to persist event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func (s *telemetryService) StoreArtifact(ctx context.Context, shopId uuid.UUID, runId uuid.UUID, data []byte, contentType string, ttl time.Duration) error {
	id := uuid.New()
	key := "monitor/" + shopId.String() + "/" + id.String()

	if err := s.blobs.Upload(ctx, key, data, contentType); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	artifact := &entity.MonitorArtifact{
		Id:          id,
		RunId:       runId,
		ShopId:      shopId,
		BlobKey:     key,
		ByteSize:    int64(len(data)),
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(ttl),
		CreatedAt:   time.Now(),
	}
	if err := uow.MonitorArtifactRepository().Create(ctx, artifact); err != nil {
		// Orphaned blobs are worse than missing artifacts; compensate.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.log.Warn("telemetry", "failed to delete orphaned artifact blob", map[string]interface{}{
				"key":   key,
				"error": delErr.Error(),
			})
		}
		return err
	}
	return nil
}

// Prune runs each category on its own: an error in one is logged and ends
// that category, the other still gets its sweep. The first error comes back
// alongside whatever both categories managed to delete.
func (s *telemetryService) Prune(ctx context.Context, eventMaxAge time.Duration, batchSize int) (int64, int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	artifactsDeleted, artifactErr := s.pruneArtifacts(ctx, uow, now, batchSize)
	if artifactErr != nil {
		s.log.Warn("telemetry", "artifact prune aborted", map[string]interface{}{
			"deleted": artifactsDeleted,
			"error":   artifactErr.Error(),
		})
	}

	eventsDeleted, eventErr := s.pruneEvents(ctx, uow, now.Add(-eventMaxAge), batchSize)
	if eventErr != nil {
		s.log.Warn("telemetry", "event prune aborted", map[string]interface{}{
			"deleted": eventsDeleted,
			"error":   eventErr.Error(),
		})
	}

	err := artifactErr
	if err == nil {
		err = eventErr
	}
	return eventsDeleted, artifactsDeleted, err
}

func (s *telemetryService) pruneArtifacts(ctx context.Context, uow unitofwork.UnitOfWork, now time.Time, batchSize int) (int64, error) {
	var deleted int64
	for {
		expired, err := uow.MonitorArtifactRepository().FindExpired(ctx, now, batchSize)
		if err != nil {
			return deleted, err
		}
		if len(expired) == 0 {
			break
		}
		deletedThisPass := 0
		for _, artifact := range expired {
			// Blob first. If the blob delete fails the row stays and
			// the next prune retries it.
			if err := s.blobs.Delete(ctx, artifact.BlobKey); err != nil {
				s.log.Warn("telemetry", "failed to delete artifact blob, keeping row", map[string]interface{}{
					"key":   artifact.BlobKey,
					"error": err.Error(),
				})
				continue
			}
			if err := uow.MonitorArtifactRepository().Delete(ctx, artifact.Id); err != nil {
				return deleted, err
			}
			deletedThisPass++
			deleted++
		}
		// A pass that freed nothing would refetch the same surviving
		// rows forever; leave them for the next prune.
		if deletedThisPass == 0 || len(expired) < batchSize {
			break
		}
	}
	return deleted, nil
}

func (s *telemetryService) pruneEvents(ctx context.Context, uow unitofwork.UnitOfWork, cutoff time.Time, batchSize int) (int64, error) {
	var deleted int64
	for {
		n, err := uow.MonitorEventRepository().DeleteOlderThan(ctx, cutoff, batchSize)
		if err != nil {
			return deleted, err
		}
		deleted += n
		if n < int64(batchSize) {
			break
		}
	}
	return deleted, nil
}
