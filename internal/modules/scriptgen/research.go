package scriptgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/scribe-backend/internal/platform/openai"
)

const researchFallbackPrefix = "The research agent did not return valid JSON. Raw output:\n"

var ErrVectorStoreFailed = errors.New("vector-store indexing failed")

type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ResearchResult struct {
	WebSummary  *string    `json:"webSummary"`
	FileSummary *string    `json:"fileSummary"`
	Citations   []Citation `json:"citations"`
}

// UploadedFile is one user document to index before research.
type UploadedFile struct {
	Name string
	Data []byte
}

// PrepareVectorStoreForFiles uploads files, creates a vector store over them
// and waits until indexing finishes.
func (p *Pipeline) PrepareVectorStoreForFiles(ctx context.Context, files []UploadedFile) (string, error) {
	if len(files) == 0 {
		return "", errors.New("no files to index")
	}
	ctx, done := p.stage(ctx, "vector_store", attribute.Int("files", len(files)))
	id, err := p.prepareVectorStore(ctx, files)
	done(err)
	return id, err
}

func (p *Pipeline) prepareVectorStore(ctx context.Context, files []UploadedFile) (string, error) {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		up, err := p.ai.UploadFile(ctx, "assistants", f.Name, bytes.NewReader(f.Data))
		if err != nil {
			return "", fmt.Errorf("upload %s: %w", f.Name, err)
		}
		ids = append(ids, up.ID)
	}

	name := fmt.Sprintf("Scribe-VS %d", time.Now().UnixMilli())
	store, err := p.ai.CreateVectorStore(ctx, name, ids)
	if err != nil {
		return "", fmt.Errorf("create vector store: %w", err)
	}
	p.log.Info("vector store created", "vector_store_id", store.ID, "files", len(ids))

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()
	for i := 0; i < p.cfg.PollAttempts; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
		vs, err := p.ai.GetVectorStore(ctx, store.ID)
		if err != nil {
			return "", fmt.Errorf("poll vector store: %w", err)
		}
		switch vs.Status {
		case "completed":
			return store.ID, nil
		case "failed":
			return "", ErrVectorStoreFailed
		}
	}
	waited := time.Duration(p.cfg.PollAttempts) * p.cfg.PollInterval
	return "", fmt.Errorf("vector store still indexing after %s", waited)
}

// PerformResearch runs the research agent with the hosted web and file search
// tools. Tool calls observed in the response are forwarded to onEvent.
func (p *Pipeline) PerformResearch(ctx context.Context, topic, angle, vectorStoreID string, onEvent EmitFunc) (ResearchResult, error) {
	useFile := strings.TrimSpace(vectorStoreID) != "" && p.cfg.UseFileTool
	ctx, done := p.stage(ctx, "research",
		attribute.Bool("tool.web", p.cfg.UseWebTool),
		attribute.Bool("tool.file", useFile),
	)
	res, err := p.performResearch(ctx, topic, angle, vectorStoreID, useFile, onEvent)
	done(err)
	return res, err
}

func (p *Pipeline) performResearch(ctx context.Context, topic, angle, vectorStoreID string, useFile bool, onEvent EmitFunc) (ResearchResult, error) {
	input, err := Render(p.prompts.Research.User, map[string]string{"Topic": topic, "Angle": angle})
	if err != nil {
		return ResearchResult{}, fmt.Errorf("render research prompt: %w", err)
	}
	req := openai.ToolRequest{
		Model:            p.cfg.ResearchModel,
		Instructions:     strings.TrimSpace(p.prompts.Research.System),
		Input:            input,
		WebSearch:        p.cfg.UseWebTool,
		JSONInstructions: true,
	}
	if useFile {
		req.VectorStoreIDs = []string{vectorStoreID}
		req.MaxFileResults = 5
	}

	resp, err := p.ai.RunWithTools(ctx, req)
	for _, call := range resp.Calls {
		onEvent.emit(ToolCallEvent(call.Name, call.Input))
		if call.Output != "" {
			onEvent.emit(ToolResultEvent(call.Name, call.Output))
		}
	}
	if err != nil {
		return ResearchResult{}, fmt.Errorf("research agent: %w", err)
	}

	res := ParseResearchOutput(resp.Text)
	if len(res.Citations) == 0 && len(resp.Citations) > 0 {
		for _, c := range resp.Citations {
			res.Citations = append(res.Citations, Citation{Title: c.Title, URL: c.URL})
		}
	}
	p.log.Info("research complete", "citations", len(res.Citations), "tool_calls", len(resp.Calls))
	return res, nil
}

// ParseResearchOutput decodes the agent's JSON answer. Markdown fences and
// surrounding prose are tolerated; anything else becomes a raw-output summary.
func ParseResearchOutput(raw string) ResearchResult {
	if obj, ok := ExtractJSONObject(raw); ok {
		var res ResearchResult
		if err := json.Unmarshal([]byte(obj), &res); err == nil {
			if res.Citations == nil {
				res.Citations = []Citation{}
			}
			return res
		}
	}
	summary := researchFallbackPrefix + raw
	return ResearchResult{WebSummary: &summary, Citations: []Citation{}}
}

// ExtractJSONObject returns the outermost {...} block of s, after stripping a
// ```json fence if present.
func ExtractJSONObject(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		s = strings.TrimSpace(rest)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

// FallbackResearch is used when research fails outright.
func FallbackResearch() ResearchResult {
	web := "Research unavailable"
	file := "No files processed"
	return ResearchResult{WebSummary: &web, FileSummary: &file, Citations: []Citation{}}
}

func (r ResearchResult) Web() string {
	if r.WebSummary == nil {
		return ""
	}
	return *r.WebSummary
}

func (r ResearchResult) File() string {
	if r.FileSummary == nil {
		return ""
	}
	return *r.FileSummary
}
