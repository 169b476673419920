package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yungbote/scribe-backend/internal/observability"
	"github.com/yungbote/scribe-backend/internal/pkg/httpx"
	"github.com/yungbote/scribe-backend/internal/platform/envutil"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

const serviceName = "youtube-mcp"

// Tool names the research pipeline relies on.
const (
	ToolSearchVideos    = "search_youtube_videos"
	ToolVideoLandscape  = "analyze_video_landscape"
	ToolExtractSEO      = "extract_youtube_seo"
	ToolAnalyzeComments = "analyze_video_comments"
)

var ErrNotConfigured = errors.New("youtube mcp server not configured")

type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RPS bounds outbound calls; zero disables limiting.
	RPS float64
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL: envutil.String("YOUTUBE_MCP_SERVER_URL", ""),
		APIKey:  envutil.String("YOUTUBE_MCP_API_KEY", ""),
		Timeout: envutil.Seconds("YOUTUBE_MCP_TIMEOUT_SECONDS", 30*time.Second),
		RPS:     envutil.Float("MCP_RPS", 5),
	}
}

// Client talks to a YouTube MCP server over its HTTP bridge (POST {base}/mcp).
type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(log *logger.Logger, cfg Config) *Client {
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		log:        log.With("service", "YouTubeMCPClient"),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
	}
}

// Enabled reports whether a server URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Tools  []Tool          `json:"tools,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpx.NewStatusError(serviceName, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", serviceName, err)
	}
	return nil
}

func (c *Client) rpc(ctx context.Context, method string, params any) (rpcResponse, error) {
	var out rpcResponse
	start := time.Now()
	err := c.do(ctx, http.MethodPost, "/mcp", rpcRequest{Method: method, Params: params}, &out)
	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.Current().ObserveUpstream(serviceName, method, status, time.Since(start))
	if err != nil {
		return out, err
	}
	if msg := errorMessage(out.Error); msg != "" {
		return out, fmt.Errorf("MCP Error: %s", msg)
	}
	return out, nil
}

// errorMessage accepts {"message": "..."}, a bare string, or any other JSON.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ListTools returns result.tools, or top-level tools for servers that skip the envelope.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	out, err := c.rpc(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	if len(out.Result) > 0 {
		var res struct {
			Tools []Tool `json:"tools"`
		}
		if err := json.Unmarshal(out.Result, &res); err == nil && len(res.Tools) > 0 {
			return res.Tools, nil
		}
	}
	return out.Tools, nil
}

// CallTool invokes a tool and returns its raw result.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("tool name required")
	}
	out, err := c.rpc(ctx, "tools/call", map[string]any{"name": name, "arguments": args})
	if err != nil {
		c.log.Warn("MCP tool call failed", "tool", name, "error", err)
		return nil, err
	}
	return unwrapContent(out.Result), nil
}

// unwrapContent turns an MCP {"content":[{"type":"text","text":"<json>"}]} result into the
// embedded JSON when the text parses; other results pass through.
func unwrapContent(raw json.RawMessage) json.RawMessage {
	var env struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Content) == 0 {
		return raw
	}
	for _, item := range env.Content {
		if item.Type == "text" && json.Valid([]byte(item.Text)) {
			return json.RawMessage(item.Text)
		}
	}
	return raw
}
