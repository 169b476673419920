package scriptgen

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/scribe-backend/internal/observability"
	"github.com/yungbote/scribe-backend/internal/platform/envutil"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/platform/openai"
)

var tracer = otel.Tracer("github.com/yungbote/scribe-backend/internal/modules/scriptgen")

type Config struct {
	UseWebTool   bool
	UseFileTool  bool
	PollInterval time.Duration
	PollAttempts int
	// Optional per-stage model overrides.
	ResearchModel  string
	ReasoningModel string
}

func ConfigFromEnv() Config {
	return Config{
		UseWebTool:     envutil.Bool("USE_WEB_TOOL", true),
		UseFileTool:    envutil.Bool("USE_FILE_TOOL", true),
		PollInterval:   time.Second,
		PollAttempts:   30,
		ResearchModel:  envutil.String("SCRIPTGEN_RESEARCH_MODEL", ""),
		ReasoningModel: envutil.String("SCRIPTGEN_REASONING_MODEL", "gpt-4o"),
	}
}

// Pipeline runs the research -> reasoning -> render stages.
type Pipeline struct {
	log     *logger.Logger
	ai      openai.Client
	prompts *Catalog
	metrics *observability.Metrics
	cfg     Config
}

func New(log *logger.Logger, ai openai.Client, prompts *Catalog, metrics *observability.Metrics, cfg Config) (*Pipeline, error) {
	if ai == nil {
		return nil, errors.New("scriptgen: openai client required")
	}
	if prompts == nil {
		return nil, errors.New("scriptgen: prompt catalog required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 30
	}
	return &Pipeline{
		log:     log.With("module", "scriptgen"),
		ai:      ai,
		prompts: prompts,
		metrics: metrics,
		cfg:     cfg,
	}, nil
}

func (p *Pipeline) Prompts() *Catalog { return p.prompts }

// stage opens a span for one pipeline stage; the returned func records the
// outcome on both the span and the stage histogram.
func (p *Pipeline) stage(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "scriptgen."+name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, name+" failed")
		}
		p.metrics.ObservePipelineStage(name, status, time.Since(start))
		span.End()
	}
}
