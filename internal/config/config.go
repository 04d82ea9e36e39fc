package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Aws       AwsConfig
	Gemini    GeminiConfig
	Catalog   CatalogConfig
	Quota     QuotaConfig
	Pipeline  PipelineConfig
	Retention RetentionConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	CronSecret         string
	WebhookSecret      string
	PrepareTopic       string
}

type DatabaseConfig struct {
	Connection string
}

type AwsConfig struct {
	Region string
	Bucket string
}

type GeminiConfig struct {
	ApiKey         string
	CompositeModel string
	ImageEditModel string
}

type CatalogConfig struct {
	ApiVersion string
}

type QuotaConfig struct {
	GenerationDailyLimit   int
	GenerationMonthlyLimit int
}

type PipelineConfig struct {
	RetryCap        int
	VariantTimeout  time.Duration
	PollInterval    time.Duration
	PollBatchSize   int
	StaleClaimAfter time.Duration
	SessionTTL      time.Duration
	FileCacheMargin time.Duration
}

type RetentionConfig struct {
	EventMaxAge    time.Duration
	PruneBatchSize int
	ArtifactTTL    time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			CronSecret:         getEnv("CRON_SECRET", ""),
			WebhookSecret:      getEnv("WEBHOOK_SECRET", ""),
			PrepareTopic:       getEnv("PREPARE_ASSET_TOPIC_NAME", "PREPARE_ASSET"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Aws: AwsConfig{
			Region: getEnv("AWS_REGION", "us-east-1"),
			Bucket: getEnv("AWS_BUCKET_NAME", ""),
		},
		Gemini: GeminiConfig{
			ApiKey:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
			CompositeModel: getEnv("GEMINI_COMPOSITE_MODEL", "gemini-3-pro-image-preview"),
			ImageEditModel: getEnv("GEMINI_IMAGE_EDIT_MODEL", "gemini-2.5-flash-image"),
		},
		Catalog: CatalogConfig{
			ApiVersion: getEnv("CATALOG_API_VERSION", "2024-07"),
		},
		Quota: QuotaConfig{
			GenerationDailyLimit:   getEnvAsInt("QUOTA_GENERATION_DAILY_LIMIT", 50),
			GenerationMonthlyLimit: getEnvAsInt("QUOTA_GENERATION_MONTHLY_LIMIT", 500),
		},
		Pipeline: PipelineConfig{
			RetryCap:        getEnvAsInt("ASSET_RETRY_CAP", 3),
			VariantTimeout:  getEnvAsDuration("VARIANT_TIMEOUT", 90*time.Second),
			PollInterval:    getEnvAsDuration("PREPARE_POLL_INTERVAL", 15*time.Second),
			PollBatchSize:   getEnvAsInt("PREPARE_POLL_BATCH_SIZE", 10),
			StaleClaimAfter: getEnvAsDuration("PREPARE_STALE_CLAIM_AFTER", 10*time.Minute),
			SessionTTL:      getEnvAsDuration("ROOM_SESSION_TTL", 24*time.Hour),
			FileCacheMargin: getEnvAsDuration("FILE_CACHE_EXPIRY_MARGIN", 5*time.Minute),
		},
		Retention: RetentionConfig{
			EventMaxAge:    getEnvAsDuration("MONITOR_EVENT_MAX_AGE", 30*24*time.Hour),
			PruneBatchSize: getEnvAsInt("PRUNE_BATCH_SIZE", 200),
			ArtifactTTL:    getEnvAsDuration("MONITOR_ARTIFACT_TTL", 7*24*time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
