package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/scribe-backend/internal/data/repos"
	types "github.com/yungbote/scribe-backend/internal/domain"
	"github.com/yungbote/scribe-backend/internal/modules/scriptgen"
	"github.com/yungbote/scribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/scribe-backend/internal/platform/apierr"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/platform/mcp"
	"github.com/yungbote/scribe-backend/internal/platform/openai"
)

const (
	defaultTargetDuration = 600
	mcpServerYouTube      = "youtube"
	youtubeResultCount    = 5
	landscapeDigestMax    = 4000
)

// YouTubeSource is the slice of the MCP client generation needs.
type YouTubeSource interface {
	Enabled() bool
	SearchVideos(ctx context.Context, query string, maxResults int) ([]mcp.Video, error)
	SearchCaptionedVideos(ctx context.Context, query string, maxResults int) ([]mcp.Video, error)
	AnalyzeLandscape(ctx context.Context, topic string, maxVideos int) (json.RawMessage, error)
}

// FrameFunc receives each frame of a generation stream, already shaped for JSON.
type FrameFunc func(frame any)

type ResearchCompleteFrame struct {
	Type     string                   `json:"type"`
	Research scriptgen.ResearchResult `json:"research"`
}

type FinalFrame struct {
	Type    string         `json:"type"`
	Content map[string]any `json:"content"`
}

type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type YouTubeFrame struct {
	Type        string `json:"type"`
	VideoID     string `json:"videoId,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Subtitles   bool   `json:"subtitles"`
}

func (f FrameFunc) orNop() FrameFunc {
	if f == nil {
		return func(any) {}
	}
	return f
}

func errorFrame(err error) ErrorFrame {
	return ErrorFrame{Type: "error", Error: err.Error()}
}

type GenerateAdvancedInput struct {
	Prompt         string `json:"prompt"`
	TargetDuration int    `json:"targetDuration"`
	McpServer      string `json:"mcpServer"`
	SearchEnabled  bool   `json:"searchEnabled"`
	SessionID      string `json:"sessionId"`
}

func (in *GenerateAdvancedInput) Normalize() error {
	in.Prompt = strings.TrimSpace(in.Prompt)
	if in.Prompt == "" {
		return apierr.BadRequest("missing_prompt", "Prompt is required")
	}
	if in.TargetDuration <= 0 {
		in.TargetDuration = defaultTargetDuration
	}
	return nil
}

type ExploreTopicInput struct {
	Title          string   `json:"title"`
	Idea           string   `json:"idea"`
	McpServer      string   `json:"mcpServer"`
	YoutubeKey     string   `json:"youtubeKey"`
	TargetDuration int      `json:"targetDuration"`
	SearchEnabled  bool     `json:"searchEnabled"`
	CustomScripts  []string `json:"customScripts"`
}

func (in *ExploreTopicInput) Normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Idea = strings.TrimSpace(in.Idea)
	if in.Title == "" && in.Idea == "" {
		return apierr.BadRequest("missing_topic", "Title or idea is required")
	}
	if in.TargetDuration <= 0 {
		in.TargetDuration = defaultTargetDuration
	}
	return nil
}

type ExploreAgentsInput struct {
	Prompt         string `json:"prompt"`
	McpServer      string `json:"mcpServer"`
	YoutubeKey     string `json:"youtubeKey"`
	TargetDuration int    `json:"targetDuration"`
	SearchEnabled  bool   `json:"searchEnabled"`
	SessionID      string `json:"sessionId"`
}

func (in *ExploreAgentsInput) Normalize() error {
	in.Prompt = strings.TrimSpace(in.Prompt)
	if in.Prompt == "" {
		return apierr.BadRequest("missing_prompt", "Prompt is required")
	}
	if in.TargetDuration <= 0 {
		in.TargetDuration = defaultTargetDuration
	}
	return nil
}

type GenerationService interface {
	GenerateAdvancedScript(ctx context.Context, in GenerateAdvancedInput, emit FrameFunc) error
	ExploreTopic(ctx context.Context, in ExploreTopicInput, emit FrameFunc) error
	ExploreTopicAgents(ctx context.Context, in ExploreAgentsInput, emit FrameFunc) error
}

type generationService struct {
	log      *logger.Logger
	pipeline ScriptPipeline
	ai       openai.Client
	youtube  YouTubeSource
	scripts  repos.ScriptRepo
	events   AgentEventService
	now      func() time.Time
}

func NewGenerationService(
	log *logger.Logger,
	pipeline ScriptPipeline,
	ai openai.Client,
	youtube YouTubeSource,
	scripts repos.ScriptRepo,
	events AgentEventService,
) GenerationService {
	if events == nil {
		events = nopAgentEvents{}
	}
	return &generationService{
		log:      log.With("service", "GenerationService"),
		pipeline: pipeline,
		ai:       ai,
		youtube:  youtube,
		scripts:  scripts,
		events:   events,
		now:      time.Now,
	}
}

func (s *generationService) youtubeEnabled(server string) bool {
	return strings.EqualFold(strings.TrimSpace(server), mcpServerYouTube) && s.youtube != nil && s.youtube.Enabled()
}

func (s *generationService) GenerateAdvancedScript(ctx context.Context, in GenerateAdvancedInput, emit FrameFunc) error {
	emit = emit.orNop()
	if err := in.Normalize(); err != nil {
		return err
	}
	sid := in.SessionID

	s.events.Progress(ctx, sid, 0)
	s.events.Thought(ctx, sid, AgentAdvancedResearch, ThoughtReasoning, fmt.Sprintf(`Starting comprehensive research on: "%s"`, in.Prompt))

	research := s.gatherResearch(ctx, in)

	s.events.Progress(ctx, sid, 40)
	s.events.Thought(ctx, sid, AgentAdvancedResearch, ThoughtObservation, fmt.Sprintf("Research completed. Found %d relevant sources.", len(research.Citations)))
	emit(ResearchCompleteFrame{Type: "research_complete", Research: research})

	s.events.AgentChange(ctx, sid, AgentShowrunner)
	s.events.Thought(ctx, sid, AgentShowrunner, ThoughtAction, "Creating detailed production plan based on research...")

	plan, err := s.pipeline.PerformReasoningAndScaffolding(ctx, in.Prompt, in.Prompt, &research, "")
	if err != nil {
		emit(errorFrame(err))
		return err
	}

	s.events.Progress(ctx, sid, 80)
	s.events.Thought(ctx, sid, AgentShowrunner, ThoughtDecision, "Production plan completed. Converting to script format...")

	script, storyline := s.pipeline.Render(ctx, plan, in.TargetDuration)
	content := map[string]any{
		"script":              script,
		"title":               plan.Title,
		"storyline":           storyline,
		"enhancedScript":      scriptgen.ConvertToEnhancedScript(script),
		"productionPlan":      plan,
		"researchResult":      research,
		"prompt":              in.Prompt,
		"targetDuration":      in.TargetDuration,
		"mcpServer":           in.McpServer,
		"searchEnabled":       in.SearchEnabled,
		"createdAt":           s.now().UTC().Format(time.RFC3339Nano),
		"sessionId":           sid,
		"_advancedGeneration": true,
	}

	id, err := s.saveScript(ctx, types.ScriptSourceAdvanced, content)
	if err != nil {
		s.log.Warn("save advanced script failed; returning unsaved result", "error", err)
	} else {
		content["scriptId"] = id
		s.events.Progress(ctx, sid, 100)
		s.events.Thought(ctx, sid, AgentShowrunner, ThoughtDecision, "Script generation complete!")
	}
	emit(FinalFrame{Type: "final", Content: content})
	return nil
}

// gatherResearch runs the research agent and, for the YouTube server, the
// landscape lookup side by side. Research failures degrade to the fallback.
func (s *generationService) gatherResearch(ctx context.Context, in GenerateAdvancedInput) scriptgen.ResearchResult {
	var (
		research  scriptgen.ResearchResult
		landscape json.RawMessage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.pipeline.PerformResearch(gctx, in.Prompt, in.Prompt, "", nil)
		if err != nil {
			s.log.Warn("research failed; using fallback", "error", err)
			r = scriptgen.FallbackResearch()
		}
		research = r
		return nil
	})
	if s.youtubeEnabled(in.McpServer) {
		g.Go(func() error {
			raw, err := s.youtube.AnalyzeLandscape(gctx, in.Prompt, 10)
			if err != nil {
				s.log.Warn("youtube landscape lookup failed", "error", err)
				return nil
			}
			landscape = raw
			return nil
		})
	}
	_ = g.Wait()

	if digest := landscapeDigest(in.Prompt, landscape); digest != "" {
		web := digest
		if existing := strings.TrimSpace(research.Web()); existing != "" {
			web = digest + "\n\n" + existing
		}
		research.WebSummary = &web
	}
	return research
}

func landscapeDigest(topic string, raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	body := truncateRunes(buf.String(), landscapeDigestMax)
	return fmt.Sprintf("YouTube landscape for %q:\n%s", topic, body)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return headRunes(s, max) + "..."
}

func headRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (s *generationService) ExploreTopic(ctx context.Context, in ExploreTopicInput, emit FrameFunc) error {
	emit = emit.orNop()
	if err := in.Normalize(); err != nil {
		return err
	}
	if s.youtubeEnabled(in.McpServer) {
		s.streamYouTube(ctx, firstNonBlank(in.Title, in.Idea), emit)
	}
	if !in.SearchEnabled {
		return nil
	}

	prompts := s.pipeline.Prompts()
	user, err := scriptgen.Render(prompts.ExploreTopic.User, map[string]any{
		"Title":          in.Title,
		"Idea":           in.Idea,
		"TargetDuration": in.TargetDuration,
		"Examples":       strings.Join(nonBlank(in.CustomScripts), "\n\n---\n\n"),
	})
	if err != nil {
		emit(errorFrame(err))
		return err
	}
	obj, err := s.ai.GenerateJSONObject(ctx, prompts.ExploreTopic.System, user)
	if err != nil {
		emit(errorFrame(err))
		return err
	}
	emit(FinalFrame{Type: "final", Content: obj})
	return nil
}

// streamYouTube emits one frame per video. Subtitles is set for videos the
// captions search also returned.
func (s *generationService) streamYouTube(ctx context.Context, query string, emit FrameFunc) {
	var videos, captioned []mcp.Video
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.youtube.SearchVideos(gctx, query, youtubeResultCount)
		videos = v
		return err
	})
	g.Go(func() error {
		v, err := s.youtube.SearchCaptionedVideos(gctx, query, youtubeResultCount)
		if err != nil {
			s.log.Debug("captioned search failed", "error", err)
			return nil
		}
		captioned = v
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("youtube search failed", "error", err)
		return
	}

	withCaptions := make(map[string]bool, len(captioned))
	for _, v := range captioned {
		if v.ID != "" {
			withCaptions[v.ID] = true
		}
	}
	for _, v := range videos {
		emit(YouTubeFrame{
			Type:        "youtube",
			VideoID:     v.ID,
			Title:       v.Title,
			Description: v.Description,
			Thumbnail:   v.ThumbnailURL,
			Subtitles:   v.ID != "" && withCaptions[v.ID],
		})
	}
}

func (s *generationService) ExploreTopicAgents(ctx context.Context, in ExploreAgentsInput, emit FrameFunc) error {
	emit = emit.orNop()
	if err := in.Normalize(); err != nil {
		return err
	}
	sid := in.SessionID
	prompts := s.pipeline.Prompts()

	s.events.Progress(ctx, sid, 0)
	s.events.Thought(ctx, sid, AgentCoordinator, ThoughtReasoning, fmt.Sprintf(`Analyzing user request: "%s..."`, headRunes(in.Prompt, 100)))
	s.events.Progress(ctx, sid, 10)
	s.events.Thought(ctx, sid, AgentCoordinator, ThoughtDecision, fmt.Sprintf("Identified video type and duration: %ds. Delegating to Research Agent...", in.TargetDuration))

	if s.youtubeEnabled(in.McpServer) {
		s.streamYouTube(ctx, in.Prompt, emit)
	}
	if !in.SearchEnabled {
		s.events.Progress(ctx, sid, 100)
		return nil
	}

	s.events.AgentChange(ctx, sid, AgentResearch)
	s.events.Progress(ctx, sid, 20)
	s.events.Thought(ctx, sid, AgentResearch, ThoughtAction, "Starting comprehensive research on the topic...")
	research := s.agentText(ctx, prompts.ExploreAgentsResearch, map[string]any{"Prompt": in.Prompt})
	s.events.Progress(ctx, sid, 35)
	if research == "" {
		s.events.Thought(ctx, sid, AgentResearch, ThoughtObservation, "No research notes available; continuing with the request alone.")
	} else {
		s.events.Thought(ctx, sid, AgentResearch, ThoughtObservation, fmt.Sprintf("Research notes ready (%d words).", len(strings.Fields(research))))
	}

	s.events.AgentChange(ctx, sid, AgentStructure)
	s.events.Progress(ctx, sid, 50)
	s.events.Thought(ctx, sid, AgentStructure, ThoughtReasoning, fmt.Sprintf("Creating optimal structure for %ds video with engaging hook and story arc...", in.TargetDuration))
	structure := s.agentText(ctx, prompts.ExploreAgentsStructure, map[string]any{
		"Prompt":         in.Prompt,
		"TargetDuration": in.TargetDuration,
		"Research":       research,
	})
	s.events.Progress(ctx, sid, 65)
	s.events.Thought(ctx, sid, AgentStructure, ThoughtDecision, "Structure complete: "+firstLine(structure, "default hook, three acts and outro"))

	s.events.AgentChange(ctx, sid, AgentWriting)
	s.events.Progress(ctx, sid, 75)
	s.events.Thought(ctx, sid, AgentWriting, ThoughtAction, "Beginning script writing with engaging conversational style...")
	user, err := scriptgen.Render(prompts.ExploreAgents.User, map[string]any{
		"Prompt":         in.Prompt,
		"TargetDuration": in.TargetDuration,
		"Research":       research,
		"Structure":      structure,
	})
	if err != nil {
		emit(errorFrame(err))
		return err
	}
	obj, err := s.ai.GenerateJSONObject(ctx, prompts.ExploreAgents.System, user)
	if err != nil {
		emit(errorFrame(err))
		return err
	}
	s.events.Progress(ctx, sid, 90)
	s.events.Thought(ctx, sid, AgentWriting, ThoughtObservation, "Script draft complete. Optimizing for retention and engagement...")

	s.events.AgentChange(ctx, sid, AgentCoordinator)
	s.events.Progress(ctx, sid, 95)
	s.events.Thought(ctx, sid, AgentCoordinator, ThoughtDecision, "Finalizing script with all agent inputs. Quality check complete.")

	content := make(map[string]any, len(obj)+7)
	for k, v := range obj {
		content[k] = v
	}
	content["prompt"] = in.Prompt
	content["targetDuration"] = in.TargetDuration
	content["mcpServer"] = in.McpServer
	content["searchEnabled"] = in.SearchEnabled
	content["createdAt"] = s.now().UTC().Format(time.RFC3339Nano)
	content["sessionId"] = sid
	content["_agentGenerated"] = true

	id, err := s.saveScript(ctx, types.ScriptSourceAgents, content)
	if err != nil {
		s.log.Warn("save agent script failed; returning unsaved result", "error", err)
	} else {
		content["scriptId"] = id
	}
	s.events.Progress(ctx, sid, 100)
	emit(FinalFrame{Type: "final", Content: content})
	return nil
}

// agentText runs one helper agent. Failures are logged and yield "".
func (s *generationService) agentText(ctx context.Context, pair scriptgen.PromptPair, data map[string]any) string {
	user, err := scriptgen.Render(pair.User, data)
	if err != nil {
		s.log.Warn("render agent prompt failed", "error", err)
		return ""
	}
	out, err := s.ai.GenerateText(ctx, pair.System, user)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Warn("agent step failed", "error", err)
		}
		return ""
	}
	return strings.TrimSpace(out)
}

// saveScript persists a generation result and returns the new script id.
func (s *generationService) saveScript(ctx context.Context, source string, content map[string]any) (string, error) {
	if s.scripts == nil {
		return "", errors.New("script repository not configured")
	}
	row := &types.Script{
		Title:     stringField(content, "title"),
		Prompt:    stringField(content, "prompt"),
		SessionID: stringField(content, "sessionId"),
		Source:    source,
	}
	if d, ok := content["targetDuration"].(int); ok {
		row.TargetDuration = d
	}
	var err error
	if row.Content, err = jsonColumn(content["script"]); err != nil {
		return "", fmt.Errorf("encode script content: %w", err)
	}
	if row.Storyline, err = jsonColumn(content["storyline"]); err != nil {
		return "", fmt.Errorf("encode storyline: %w", err)
	}
	if row.ProductionPlan, err = jsonColumn(content["productionPlan"]); err != nil {
		return "", fmt.Errorf("encode production plan: %w", err)
	}
	if row.ResearchResult, err = jsonColumn(content["researchResult"]); err != nil {
		return "", fmt.Errorf("encode research: %w", err)
	}
	if row.Metadata, err = jsonColumn(map[string]any{
		"mcpServer":      content["mcpServer"],
		"searchEnabled":  content["searchEnabled"],
		"enhancedScript": content["enhancedScript"],
	}); err != nil {
		return "", err
	}

	created, err := s.scripts.Create(dbctx.Context{Ctx: ctx}, row)
	if err != nil {
		return "", err
	}
	return created.ID.String(), nil
}

func jsonColumn(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func nonBlank(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstLine(s, fallback string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return truncateRunes(t, 120)
		}
	}
	return fallback
}
