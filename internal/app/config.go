package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/yungbote/scribe-backend/internal/data/db"
	"github.com/yungbote/scribe-backend/internal/modules/scriptgen"
	"github.com/yungbote/scribe-backend/internal/observability"
	"github.com/yungbote/scribe-backend/internal/platform/envutil"
	"github.com/yungbote/scribe-backend/internal/platform/gcp"
	"github.com/yungbote/scribe-backend/internal/platform/imagesearch"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/platform/mcp"
	"github.com/yungbote/scribe-backend/internal/platform/openai"
	"github.com/yungbote/scribe-backend/internal/realtime/bus"
)

const serviceName = "scribe-backend"

type Config struct {
	Port          string        `validate:"required,numeric"`
	ServiceName   string        `validate:"required"`
	CORSOrigins   []string      `validate:"dive,required"`
	ShutdownGrace time.Duration `validate:"gt=0"`
	SSEHeartbeat  time.Duration `validate:"gt=0"`

	DB         db.Config
	OpenAI     openai.Config
	Pexels     imagesearch.PexelsConfig
	DataForSEO imagesearch.DataForSEOConfig
	MCP        mcp.Config
	Bucket     gcp.BucketConfig
	Redis      bus.RedisConfig
	Scriptgen  scriptgen.Config
	Otel       observability.OtelConfig
}

// LoadDotEnv loads .env into the process environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func LoadConfig(log *logger.Logger) (Config, error) {
	log.Info("Loading configuration...")
	cfg := Config{
		Port:          envutil.String("PORT", "8080"),
		ServiceName:   envutil.String("SERVICE_NAME", serviceName),
		CORSOrigins:   envutil.List("CORS_ALLOWED_ORIGINS", nil),
		ShutdownGrace: envutil.Seconds("SHUTDOWN_GRACE_SECONDS", 10*time.Second),
		SSEHeartbeat:  envutil.Seconds("SSE_HEARTBEAT_SECONDS", 30*time.Second),
		DB: db.Config{
			Driver:     strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
			SQLitePath: envutil.String("SQLITE_PATH", "scribe.db"),
			Postgres:   db.PostgresConfigFromEnv(),
		},
		OpenAI:     openai.ConfigFromEnv(),
		Pexels:     imagesearch.PexelsConfigFromEnv(),
		DataForSEO: imagesearch.DataForSEOConfigFromEnv(),
		MCP:        mcp.ConfigFromEnv(),
		Bucket:     gcp.BucketConfigFromEnv(),
		Redis:      bus.RedisConfigFromEnv(),
		Scriptgen:  scriptgen.ConfigFromEnv(),
	}
	cfg.Otel = observability.OtelConfigFromEnv(cfg.ServiceName)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
