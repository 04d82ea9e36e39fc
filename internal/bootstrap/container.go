package bootstrap

import (
	"context"
	"log"

	"ai-roomviz-be/internal/config"
	"ai-roomviz-be/internal/controller"
	"ai-roomviz-be/internal/pkg/logger"
	"ai-roomviz-be/internal/repository/unitofwork"
	"ai-roomviz-be/internal/service"
	"ai-roomviz-be/pkg/blobstore"
	"ai-roomviz-be/pkg/catalog"
	"ai-roomviz-be/pkg/filecache"
	"ai-roomviz-be/pkg/provider/gemini"
	"ai-roomviz-be/pkg/quota"
	"ai-roomviz-be/pkg/retry"

	pktNats "ai-roomviz-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssetController       controller.IAssetController
	RoomController        controller.IRoomController
	RunController         controller.IRunController
	MaintenanceController controller.IMaintenanceController
	WebhookController     controller.IWebhookController

	// Background Services (Exposed for main.go to run)
	PreparerService service.IPreparerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis (signed URL cache, best effort)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// Blob storage
	s3Client, err := blobstore.NewClientFromEnv(context.Background(), cfg.Aws.Region)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize S3 client: %v", err)
	}
	blobs := blobstore.NewStore(s3Client, cfg.Aws.Bucket, rdb)

	// Render providers. Compositing and image editing run on different
	// models; the file store is shared on the provider side.
	compositeRenderer, err := gemini.NewClient(context.Background(), cfg.Gemini.ApiKey, cfg.Gemini.CompositeModel)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize composite renderer: %v", err)
	}
	editRenderer, err := gemini.NewClient(context.Background(), cfg.Gemini.ApiKey, cfg.Gemini.ImageEditModel)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize image edit renderer: %v", err)
	}

	catalogClient := catalog.NewClient(cfg.Catalog.ApiVersion)
	quotaLedger := quota.NewLedger(sysLogger)
	fileCache := filecache.NewCache(compositeRenderer, blobs, cfg.Pipeline.FileCacheMargin, sysLogger)
	retryPolicy := retry.NewPolicy(cfg.Pipeline.RetryCap)

	// 3. Services
	publisherService := service.NewPublisherService(cfg.App.PrepareTopic, pubSub)
	telemetryService := service.NewTelemetryService(uowFactory, blobs, sysLogger)

	assetService := service.NewAssetService(
		uowFactory,
		publisherService,
		catalogClient,
		blobs,
		quotaLedger,
		retryPolicy,
		sysLogger,
	)

	preparerService := service.NewPreparerService(
		pubSub,
		cfg.App.PrepareTopic,
		uowFactory,
		editRenderer,
		blobs,
		catalogClient,
		quotaLedger,
		natsPub,
		telemetryService,
		retryPolicy,
		cfg.Pipeline.PollInterval,
		cfg.Pipeline.PollBatchSize,
		cfg.Pipeline.StaleClaimAfter,
	)

	roomService := service.NewRoomService(
		uowFactory,
		editRenderer,
		blobs,
		fileCache,
		quotaLedger,
		telemetryService,
		cfg.Pipeline.SessionTTL,
		sysLogger,
	)

	runService := service.NewRunService(
		uowFactory,
		compositeRenderer,
		blobs,
		fileCache,
		quotaLedger,
		telemetryService,
		cfg.Pipeline.VariantTimeout,
		cfg.Retention.ArtifactTTL,
		sysLogger,
	)

	shopService := service.NewShopService(
		uowFactory,
		cfg.Quota.GenerationDailyLimit,
		cfg.Quota.GenerationMonthlyLimit,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		AssetController: controller.NewAssetController(assetService),
		RoomController:  controller.NewRoomController(roomService),
		RunController:   controller.NewRunController(runService),
		MaintenanceController: controller.NewMaintenanceController(
			telemetryService,
			cfg.Retention.EventMaxAge,
			cfg.Retention.PruneBatchSize,
		),
		WebhookController: controller.NewWebhookController(shopService),

		PreparerService: preparerService,
	}
}
