package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/scribe-backend/internal/observability"
	"github.com/yungbote/scribe-backend/internal/pkg/httpx"
	"github.com/yungbote/scribe-backend/internal/platform/envutil"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

const serviceName = "openai"

var tracer = otel.Tracer("github.com/yungbote/scribe-backend/internal/platform/openai")

type Client interface {
	// GenerateJSON requests strict json_schema output and returns the decoded object.
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
	// GenerateJSONObject requests free-form json_object output.
	GenerateJSONObject(ctx context.Context, system string, user string) (map[string]any, error)
	GenerateText(ctx context.Context, system string, user string) (string, error)
	// StreamText forwards output_text deltas to onDelta and returns the full text.
	StreamText(ctx context.Context, system string, user string, onDelta func(delta string)) (string, error)
	// RunWithTools runs one Responses call with hosted web_search / file_search tools enabled.
	RunWithTools(ctx context.Context, req ToolRequest) (ToolResponse, error)

	GenerateImage(ctx context.Context, req ImageRequest) (ImageGeneration, error)
	Transcribe(ctx context.Context, req TranscriptionRequest) (string, error)

	UploadFile(ctx context.Context, purpose string, fileName string, r io.Reader) (File, error)
	CreateVectorStore(ctx context.Context, name string, fileIDs []string) (VectorStore, error)
	GetVectorStore(ctx context.Context, id string) (VectorStore, error)

	CreateFineTuneJob(ctx context.Context, req FineTuneJobRequest) (FineTuneJob, error)
	ListFineTuneJobs(ctx context.Context, limit int) ([]FineTuneJob, error)
	GetModel(ctx context.Context, id string) (Model, error)
}

type Config struct {
	APIKey          string `validate:"required"`
	BaseURL         string `validate:"omitempty,url"`
	Model           string `validate:"required"`
	ImageModel      string
	ImageSize       string
	ImageQuality    string
	TranscribeModel string
	Timeout         time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration
	// nil leaves temperature to the model default.
	Temperature        *float64
	DisableTemperature bool
}

// ConfigFromEnv reads the OPENAI_* variables.
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey:             envutil.String("OPENAI_API_KEY", ""),
		BaseURL:            envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		Model:              envutil.String("OPENAI_MODEL", "gpt-4o"),
		ImageModel:         envutil.String("OPENAI_IMAGE_MODEL", "dall-e-3"),
		ImageSize:          envutil.String("OPENAI_IMAGE_SIZE", "1024x1024"),
		ImageQuality:       envutil.String("OPENAI_IMAGE_QUALITY", "standard"),
		TranscribeModel:    envutil.String("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		Timeout:            envutil.Seconds("OPENAI_TIMEOUT_SECONDS", 180*time.Second),
		MaxRetries:         envutil.Int("OPENAI_MAX_RETRIES", 4),
		RetryBaseDelay:     time.Second,
		DisableTemperature: envutil.Bool("OPENAI_DISABLE_TEMPERATURE", false),
	}
	if t := envutil.Float("OPENAI_TEMPERATURE", -1); t >= 0 {
		cfg.Temperature = &t
	}
	return cfg
}

type client struct {
	log        *logger.Logger
	cfg        Config
	model      string
	httpClient *http.Client

	// Models that rejected temperature once are not sent it again. Shared across WithModel clones.
	noTemp *noTempSet
}

type noTempSet struct {
	mu     sync.RWMutex
	models map[string]bool
}

func (s *noTempSet) has(model string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.models[normalizeModelKey(model)]
}

func (s *noTempSet) add(model string) {
	s.mu.Lock()
	s.models[normalizeModelKey(model)] = true
	s.mu.Unlock()
}

func NewClient(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = "whisper-1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}
	return &client{
		log:        log.With("service", "OpenAIClient"),
		cfg:        cfg,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		noTemp:     &noTempSet{models: map[string]bool{}},
	}, nil
}

// WithModel returns a client that uses model for text and JSON calls.
// An empty model or a foreign Client implementation is returned unchanged.
func WithModel(base Client, model string) Client {
	model = strings.TrimSpace(model)
	if base == nil || model == "" {
		return base
	}
	c, ok := base.(*client)
	if !ok {
		return base
	}
	clone := *c
	clone.model = model
	return &clone
}

func normalizeModelKey(m string) string {
	return strings.ToLower(strings.TrimSpace(m))
}

func (c *client) temperatureFor(model string) *float64 {
	if c.cfg.DisableTemperature || c.cfg.Temperature == nil || c.noTemp.has(model) {
		return nil
	}
	t := *c.cfg.Temperature
	return &t
}

func isUnsupportedTemperatureMessage(s string) bool {
	msg := strings.ToLower(s)
	if !strings.Contains(msg, "temperature") {
		return false
	}
	for _, frag := range []string{"unsupported parameter", "unknown parameter", "unrecognized parameter", "not supported", "does not support", "only the default", "unsupported_value"} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

func (c *client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// doOnce sends one request and returns the raw body of a 2xx response.
func (c *client) doOnce(ctx context.Context, method, path string, payload []byte, contentType string) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil, httpx.NewStatusError(serviceName, resp)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, raw, nil
}

// doRaw retries transient failures with exponential backoff, honoring Retry-After.
func (c *client) doRaw(ctx context.Context, method, path string, payload []byte, contentType string) (out []byte, err error) {
	ctx, span := tracer.Start(ctx, "openai "+path)
	defer span.End()
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		observability.Current().ObserveUpstream(serviceName, operationName(path), status, time.Since(start))
	}()
	span.SetAttributes(attribute.String("openai.path", path), attribute.String("http.method", method))

	backoff := c.cfg.RetryBaseDelay
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, raw, err := c.doOnce(ctx, method, path, payload, contentType)
		if err == nil {
			span.SetAttributes(attribute.Int("openai.attempts", attempt+1))
			return raw, nil
		}
		if !shouldRetry(method, path, err) || attempt >= c.cfg.MaxRetries {
			span.RecordError(err)
			span.SetStatus(codes.Error, "openai request failed")
			return nil, err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return nil, err
		}
		backoff *= 2
	}
}

// createPaths are POSTs that leave a file, vector store or job behind. A timeout
// or 5xx there may follow a successful create, so only 429 is retried.
var createPaths = map[string]bool{
	"/v1/files":            true,
	"/v1/vector_stores":    true,
	"/v1/fine_tuning/jobs": true,
}

func shouldRetry(method, path string, err error) bool {
	if !httpx.IsRetryableError(err) {
		return false
	}
	if method != http.MethodPost || !createPaths[path] {
		return true
	}
	var se *httpx.StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}

// operationName keeps the first path segment so ids stay out of metric labels.
func operationName(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	return path
}

func (c *client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("openai encode: %w", err)
		}
		payload = b
	}
	raw, err := c.doRaw(ctx, method, path, payload, "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai decode error: %w", err)
	}
	return nil
}

func (c *client) doMultipart(ctx context.Context, path string, payload []byte, contentType string) ([]byte, error) {
	return c.doRaw(ctx, http.MethodPost, path, payload, contentType)
}

func (c *client) doGet(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}
