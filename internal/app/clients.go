package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/scribe-backend/internal/platform/gcp"
	"github.com/yungbote/scribe-backend/internal/platform/imagesearch"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/platform/mcp"
	"github.com/yungbote/scribe-backend/internal/platform/openai"
	"github.com/yungbote/scribe-backend/internal/realtime/bus"
)

type Clients struct {
	OpenAI         openai.Client
	YouTube        *mcp.Client
	ImageProviders []imagesearch.Provider
	// Bucket and Bus are nil when not configured.
	Bucket gcp.BucketService
	Bus    bus.Bus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Openai
	ai, err := openai.New(log, cfg.OpenAI)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// YouTube MCP
	yt := mcp.NewClient(log, cfg.MCP)
	if !yt.Enabled() {
		log.Warn("YOUTUBE_MCP_SERVER_URL not set; YouTube lookups disabled")
	}

	// Image search
	providers := []imagesearch.Provider{
		imagesearch.NewPexels(cfg.Pexels),
		imagesearch.NewDataForSEO(cfg.DataForSEO),
	}
	for _, p := range providers {
		if !p.Enabled() {
			log.Warn("Image provider not configured", "provider", p.Name())
		}
	}

	// Gcs
	bucket, err := gcp.NewBucketServiceWithConfig(log, cfg.Bucket)
	switch {
	case errors.Is(err, gcp.ErrNoBucket):
		log.Info("GCS_BUCKET_NAME not set; generated images are returned inline only")
		bucket = nil
	case err != nil:
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}

	// Redis
	b, err := bus.NewRedisBus(log, cfg.Redis)
	switch {
	case errors.Is(err, bus.ErrNoRedis):
		log.Info("REDIS_ADDR not set; agent events stay on this instance")
		b = nil
	case err != nil:
		return Clients{}, fmt.Errorf("init redis bus: %w", err)
	}

	return Clients{
		OpenAI:         ai,
		YouTube:        yt,
		ImageProviders: providers,
		Bucket:         bucket,
		Bus:            b,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}
