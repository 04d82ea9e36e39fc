package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/repository/contract"
	"ai-roomviz-be/internal/repository/specification"
	"ai-roomviz-be/internal/repository/unitofwork"
	"ai-roomviz-be/pkg/provider"
	"ai-roomviz-be/pkg/quota"

	"github.com/google/uuid"
)

// scriptedRenderer completes instantly unless the prompt carries the linger
// marker, in which case it blocks until the per-variant deadline fires.
type scriptedRenderer struct{}

func (scriptedRenderer) GenerateComposite(ctx context.Context, room, product provider.ImageInput, prompt string) ([]byte, error) {
	if strings.Contains(prompt, "linger") {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []byte("rendered"), nil
}

func (scriptedRenderer) RemoveBackground(ctx context.Context, product provider.ImageInput, prompt string) ([]byte, error) {
	return nil, errors.New("not a preparation renderer")
}

func (scriptedRenderer) CleanupRoom(ctx context.Context, room provider.ImageInput, mask *provider.ImageInput, prompt string) ([]byte, error) {
	return nil, errors.New("not a cleanup renderer")
}

func (scriptedRenderer) UploadFile(ctx context.Context, data []byte, mimeType string) (*provider.FileHandle, error) {
	return nil, errors.New("not a file-staging renderer")
}

type fakeRunBlobs struct {
	mu      sync.Mutex
	uploads int
}

func (b *fakeRunBlobs) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads++
	return nil
}

func (b *fakeRunBlobs) SignedURL(ctx context.Context, key string, version int) (string, error) {
	return "https://signed.example.com/" + key, nil
}

type fakeStager struct {
	err error
}

func (s *fakeStager) EnsureUploaded(ctx context.Context, key, mimeType, uri string, expiresAt *time.Time) (provider.ImageInput, *provider.FileHandle, error) {
	if s.err != nil {
		return provider.ImageInput{}, nil, s.err
	}
	return provider.ImageInput{FileURI: "files/" + key}, nil, nil
}

type fakeSessionRepo struct {
	contract.RoomSessionRepository

	session *entity.RoomSession
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RoomSession, error) {
	return r.session, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.RoomSession) error {
	r.session = session
	return nil
}

type fakeRunRepo struct {
	contract.CompositeRunRepository

	mu   sync.Mutex
	runs map[uuid.UUID]*entity.CompositeRun
}

func (r *fakeRunRepo) Create(ctx context.Context, run *entity.CompositeRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *run
	r.runs[run.Id] = &stored
	return nil
}

func (r *fakeRunRepo) Update(ctx context.Context, run *entity.CompositeRun) error {
	return r.Create(ctx, run)
}

func (r *fakeRunRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CompositeRun, error) {
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			return r.get(byID.ID), nil
		}
	}
	return nil, nil
}

func (r *fakeRunRepo) get(id uuid.UUID) *entity.CompositeRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil
	}
	snapshot := *run
	return &snapshot
}

type fakeVariantRepo struct {
	contract.VariantResultRepository

	mu      sync.Mutex
	results map[string]*entity.VariantResult
}

func (r *fakeVariantRepo) CreateIdempotent(ctx context.Context, result *entity.VariantResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := result.RunId.String() + "/" + result.VariantKey
	if _, exists := r.results[key]; exists {
		return nil
	}
	stored := *result
	r.results[key] = &stored
	return nil
}

func (r *fakeVariantRepo) FindAllByRun(ctx context.Context, runId uuid.UUID) ([]*entity.VariantResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.VariantResult
	for _, result := range r.results {
		if result.RunId == runId {
			snapshot := *result
			out = append(out, &snapshot)
		}
	}
	return out, nil
}

type runFakeUOW struct {
	fakeUOW

	sessionRepo *fakeSessionRepo
	runRepo     *fakeRunRepo
	variantRepo *fakeVariantRepo
}

func (u *runFakeUOW) RoomSessionRepository() contract.RoomSessionRepository {
	return u.sessionRepo
}

func (u *runFakeUOW) CompositeRunRepository() contract.CompositeRunRepository {
	return u.runRepo
}

func (u *runFakeUOW) VariantResultRepository() contract.VariantResultRepository {
	return u.variantRepo
}

type runFakeFactory struct {
	uow *runFakeUOW
}

func (f *runFakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type recordingTelemetry struct {
	mu        sync.Mutex
	artifacts int
}

func (r *recordingTelemetry) EmitEvent(ctx context.Context, shopId uuid.UUID, runId *uuid.UUID, eventType string, severity entity.EventSeverity, payload map[string]interface{}) {
}

func (r *recordingTelemetry) StoreArtifact(ctx context.Context, shopId uuid.UUID, runId uuid.UUID, data []byte, contentType string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts++
	return nil
}

func (r *recordingTelemetry) Prune(ctx context.Context, eventMaxAge time.Duration, batchSize int) (int64, int64, error) {
	return 0, 0, nil
}

func (r *recordingTelemetry) stored() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.artifacts
}

type runFixture struct {
	service   IRunService
	shopRepo  *fakeShopRepo
	runRepo   *fakeRunRepo
	sessionId uuid.UUID
	telemetry *recordingTelemetry
}

func newRunFixture(t *testing.T, stager *fakeStager) *runFixture {
	t.Helper()

	shop := &entity.Shop{
		Id:                     uuid.New(),
		Domain:                 "demo.example.com",
		AccessToken:            "token",
		GenerationDailyLimit:   100,
		GenerationMonthlyLimit: 1000,
		LastDailyReset:         time.Now(),
		LastMonthlyReset:       time.Now(),
	}
	session := &entity.RoomSession{
		Id:               uuid.New(),
		ShopId:           shop.Id,
		OriginalImageRef: "rooms/r1.jpg",
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	asset := &entity.ProductAsset{
		Id:               uuid.New(),
		ShopId:           shop.Id,
		ProductId:        "p1",
		Status:           entity.AssetStatusReady,
		PreparedImageRef: "assets/p1.png",
		ImageVersion:     1,
	}

	shopRepo := &fakeShopRepo{shop: shop}
	runRepo := &fakeRunRepo{runs: map[uuid.UUID]*entity.CompositeRun{}}
	telemetry := &recordingTelemetry{}
	uow := &runFakeUOW{
		fakeUOW:     fakeUOW{shopRepo: shopRepo, assetRepo: &fakeAssetRepo{assets: map[string]*entity.ProductAsset{"p1": asset}}},
		sessionRepo: &fakeSessionRepo{session: session},
		runRepo:     runRepo,
		variantRepo: &fakeVariantRepo{results: map[string]*entity.VariantResult{}},
	}

	svc := NewRunService(
		&runFakeFactory{uow: uow},
		scriptedRenderer{},
		&fakeRunBlobs{},
		stager,
		quota.NewLedger(nopLogger{}),
		telemetry,
		50*time.Millisecond,
		time.Hour,
		nopLogger{},
	)
	return &runFixture{
		service:   svc,
		shopRepo:  shopRepo,
		runRepo:   runRepo,
		sessionId: session.Id,
		telemetry: telemetry,
	}
}

func waitForSettle(t *testing.T, repo *fakeRunRepo, runId uuid.UUID) *entity.CompositeRun {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if run := repo.get(runId); run != nil && run.CompletedAt != nil {
			return run
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("run never settled")
	return nil
}

func TestRunFanOutPartialWithTimeout(t *testing.T) {
	fx := newRunFixture(t, &fakeStager{})

	res, err := fx.service.CreateRun(context.Background(), "demo.example.com", &dto.CreateRunRequest{
		ProductId: "p1",
		SessionId: fx.sessionId,
		Variants: []dto.VariantSpec{
			{Key: "v1", Prompt: "angle left"},
			{Key: "v2", Prompt: "angle right"},
			{Key: "v3", Prompt: "closeup"},
			{Key: "v4", Prompt: "linger on this one"},
		},
	})
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if fx.shopRepo.dailyUsage() != 4 {
		t.Fatalf("usage after reserve = %d, want 4", fx.shopRepo.dailyUsage())
	}

	run := waitForSettle(t, fx.runRepo, res.RunId)
	if run.Status != entity.RunStatusPartial {
		t.Errorf("settled status = %s, want partial", run.Status)
	}

	detail, err := fx.service.GetRun(context.Background(), "demo.example.com", res.RunId)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if detail.Status != string(entity.RunStatusPartial) {
		t.Errorf("detail status = %s, want partial", detail.Status)
	}
	if len(detail.Variants) != 4 {
		t.Fatalf("got %d variant results, want 4", len(detail.Variants))
	}

	byKey := map[string]dto.VariantResultResponse{}
	for _, v := range detail.Variants {
		byKey[v.VariantKey] = v
	}
	for _, key := range []string{"v1", "v2", "v3"} {
		if byKey[key].Status != string(entity.VariantStatusSuccess) {
			t.Errorf("%s status = %s, want success", key, byKey[key].Status)
		}
		if byKey[key].OutputImageRef == "" {
			t.Errorf("%s missing output image ref", key)
		}
	}
	timedOut := byKey["v4"]
	if timedOut.Status != string(entity.VariantStatusTimeout) {
		t.Errorf("v4 status = %s, want timeout", timedOut.Status)
	}
	if timedOut.LatencyMs == nil {
		t.Error("v4 latency must be recorded up to the deadline")
	}
	if timedOut.OutputImageRef != "" {
		t.Error("v4 must not have an output image")
	}

	// 4 reserved, 1 never used.
	if fx.shopRepo.releasedUnits() != 1 {
		t.Errorf("released %d units, want 1 for the timed-out variant", fx.shopRepo.releasedUnits())
	}
	if fx.shopRepo.dailyUsage() != 3 {
		t.Errorf("usage after settle = %d, want 3", fx.shopRepo.dailyUsage())
	}
	if fx.telemetry.stored() != 0 {
		t.Errorf("partial run must not store a failure artifact, got %d", fx.telemetry.stored())
	}
}

func TestRunInputFailureSettlesFailed(t *testing.T) {
	fx := newRunFixture(t, &fakeStager{err: errors.New("staging unavailable")})

	res, err := fx.service.CreateRun(context.Background(), "demo.example.com", &dto.CreateRunRequest{
		ProductId: "p1",
		SessionId: fx.sessionId,
		Variants: []dto.VariantSpec{
			{Key: "v1"},
			{Key: "v2"},
		},
	})
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	run := waitForSettle(t, fx.runRepo, res.RunId)
	if run.Status != entity.RunStatusFailed {
		t.Errorf("settled status = %s, want failed", run.Status)
	}
	if fx.shopRepo.dailyUsage() != 0 {
		t.Errorf("usage after full failure = %d, want 0", fx.shopRepo.dailyUsage())
	}
	if fx.telemetry.stored() != 1 {
		t.Errorf("failed run must store one diagnostics artifact, got %d", fx.telemetry.stored())
	}
}

func TestCreateRunRejectsDuplicateVariantKeys(t *testing.T) {
	fx := newRunFixture(t, &fakeStager{})

	_, err := fx.service.CreateRun(context.Background(), "demo.example.com", &dto.CreateRunRequest{
		ProductId: "p1",
		SessionId: fx.sessionId,
		Variants: []dto.VariantSpec{
			{Key: "v1"},
			{Key: "v1"},
		},
	})

	var valErr *dto.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if fx.shopRepo.dailyUsage() != 0 {
		t.Errorf("rejected run must not consume quota, usage = %d", fx.shopRepo.dailyUsage())
	}
}
