package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/scribe-backend/internal/modules/scriptgen"
	"github.com/yungbote/scribe-backend/internal/platform/apierr"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/platform/openai"
)

const (
	maxTypingSuggestions = 3
	minTypingLength      = 10
)

type AnalyzeScriptInput struct {
	Script   string `json:"script"`
	Context  string `json:"context"`
	Duration int    `json:"duration"`
}

type IdeaDetails struct {
	MainConcept      string   `json:"main_concept"`
	KeyPoints        []string `json:"key_points"`
	UniqueAngle      string   `json:"unique_angle"`
	ValueProposition string   `json:"value_proposition"`
}

type ExploreItem struct {
	Topic            string `json:"topic"`
	WhyInteresting   string `json:"why_interesting"`
	PotentialContent string `json:"potential_content"`
}

type ScriptKeywords struct {
	Primary       []string `json:"primary"`
	Secondary     []string `json:"secondary"`
	YoutubeTags   []string `json:"youtube_tags"`
	SearchPhrases []string `json:"search_phrases"`
}

type ScriptAnalysis struct {
	IdeaDetails     IdeaDetails    `json:"idea_details"`
	ThingsToExplore []ExploreItem  `json:"things_to_explore"`
	Keywords        ScriptKeywords `json:"keywords"`
}

type SuggestionType string

const (
	SuggestionGrammar      SuggestionType = "grammar"
	SuggestionStyle        SuggestionType = "style"
	SuggestionIdea         SuggestionType = "idea"
	SuggestionContinuation SuggestionType = "continuation"
)

type Suggestion struct {
	Type   SuggestionType `json:"type"`
	Text   string         `json:"text"`
	Reason string         `json:"reason,omitempty"`
}

type TypingSuggestions struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// ActiveModelSource resolves the model the text assistant should use.
type ActiveModelSource interface {
	ActiveModel(ctx context.Context) (string, error)
}

type AssistantService interface {
	AnalyzeScript(ctx context.Context, in AnalyzeScriptInput) (*ScriptAnalysis, error)
	SelectionAction(ctx context.Context, text, action string) (string, error)
	EnhanceContext(ctx context.Context, text string) (string, error)
	// AnalyzeTyping never fails; any problem yields an empty suggestion list.
	AnalyzeTyping(ctx context.Context, text string) TypingSuggestions
}

type assistantService struct {
	log     *logger.Logger
	ai      openai.Client
	prompts *scriptgen.Catalog
	models  ActiveModelSource
}

func NewAssistantService(log *logger.Logger, ai openai.Client, prompts *scriptgen.Catalog, models ActiveModelSource) AssistantService {
	return &assistantService{
		log:     log.With("service", "AssistantService"),
		ai:      ai,
		prompts: prompts,
		models:  models,
	}
}

// styledClient returns a client bound to the active fine-tuned model, or the
// default client when none is set.
func (s *assistantService) styledClient(ctx context.Context) openai.Client {
	if s.models == nil {
		return s.ai
	}
	model, err := s.models.ActiveModel(ctx)
	if err != nil {
		s.log.Warn("active model lookup failed; using default", "error", err)
		return s.ai
	}
	if model = strings.TrimSpace(model); model == "" {
		return s.ai
	}
	return openai.WithModel(s.ai, model)
}

func (s *assistantService) AnalyzeScript(ctx context.Context, in AnalyzeScriptInput) (*ScriptAnalysis, error) {
	if strings.TrimSpace(in.Script) == "" {
		return nil, apierr.BadRequest("missing_script", "Script is required")
	}
	user, err := scriptgen.Render(s.prompts.AnalyzeScript.User, in)
	if err != nil {
		return nil, apierr.Internal("prompt_render_failed", err)
	}
	obj, err := s.ai.GenerateJSONObject(ctx, s.prompts.AnalyzeScript.System, user)
	if err != nil {
		return nil, apierr.Internal("analyze_failed", fmt.Errorf("Failed to analyze script: %w", err))
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, apierr.Internal("analyze_failed", err)
	}
	var out ScriptAnalysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apierr.Internal("analyze_failed", fmt.Errorf("Failed to analyze script: %w", err))
	}
	out.normalize()
	return &out, nil
}

func (a *ScriptAnalysis) normalize() {
	if a.IdeaDetails.KeyPoints == nil {
		a.IdeaDetails.KeyPoints = []string{}
	}
	if a.ThingsToExplore == nil {
		a.ThingsToExplore = []ExploreItem{}
	}
	for _, list := range []*[]string{&a.Keywords.Primary, &a.Keywords.Secondary, &a.Keywords.YoutubeTags, &a.Keywords.SearchPhrases} {
		if *list == nil {
			*list = []string{}
		}
	}
}

func (s *assistantService) SelectionAction(ctx context.Context, text, action string) (string, error) {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(action) == "" {
		return "", apierr.BadRequest("missing_text_or_action", "Missing text or action")
	}
	out, err := s.styledClient(ctx).GenerateText(ctx, s.prompts.SelectionActionPrompt(action), text)
	if err != nil {
		s.log.Warn("selection action failed", "action", action, "error", err)
		return "", apierr.Internal("selection_action_failed", errors.New("Failed to process request with AI."))
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", apierr.Internal("empty_completion", errors.New("AI did not return any text."))
	}
	return out, nil
}

func (s *assistantService) EnhanceContext(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apierr.BadRequest("missing_text", "Text is required")
	}
	user, err := scriptgen.Render(s.prompts.EnhanceContext.User, map[string]string{"Text": text})
	if err != nil {
		return "", apierr.Internal("prompt_render_failed", err)
	}
	out, err := s.styledClient(ctx).GenerateText(ctx, s.prompts.EnhanceContext.System, user)
	if err != nil {
		s.log.Warn("enhance context failed", "error", err)
		return "", apierr.Internal("enhance_failed", errors.New("Failed to enhance text"))
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", apierr.Internal("enhance_failed", errors.New("Failed to enhance text"))
	}
	return out, nil
}

func (s *assistantService) AnalyzeTyping(ctx context.Context, text string) TypingSuggestions {
	empty := TypingSuggestions{Suggestions: []Suggestion{}}
	if len([]rune(strings.TrimSpace(text))) < minTypingLength {
		return empty
	}
	user, err := scriptgen.Render(s.prompts.AnalyzeTyping.User, map[string]string{"Text": text})
	if err != nil {
		return empty
	}
	obj, err := s.ai.GenerateJSONObject(ctx, s.prompts.AnalyzeTyping.System, user)
	if err != nil {
		s.log.Debug("typing analysis failed", "error", err)
		return empty
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return empty
	}
	var parsed TypingSuggestions
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return empty
	}

	out := make([]Suggestion, 0, maxTypingSuggestions)
	for _, sg := range parsed.Suggestions {
		if strings.TrimSpace(sg.Text) == "" {
			continue
		}
		switch sg.Type {
		case SuggestionGrammar, SuggestionStyle, SuggestionIdea, SuggestionContinuation:
		default:
			continue
		}
		out = append(out, sg)
		if len(out) == maxTypingSuggestions {
			break
		}
	}
	return TypingSuggestions{Suggestions: out}
}
