package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/yungbote/scribe-backend/internal/data/repos/testutil"
	"github.com/yungbote/scribe-backend/internal/modules/scriptgen"
)

type staticModel struct {
	model string
	err   error
}

func (m staticModel) ActiveModel(context.Context) (string, error) { return m.model, m.err }

func newAssistant(t *testing.T, ai *fakeAI, models ActiveModelSource) AssistantService {
	t.Helper()
	catalog, err := scriptgen.EmbeddedCatalog()
	if err != nil {
		t.Fatalf("EmbeddedCatalog: %v", err)
	}
	return NewAssistantService(testutil.Logger(t), ai, catalog, models)
}

func TestAnalyzeScriptFillsEmptyLists(t *testing.T) {
	ai := &fakeAI{jsonObj: map[string]any{
		"idea_details": map[string]any{"main_concept": "tides"},
	}}
	res, err := newAssistant(t, ai, nil).AnalyzeScript(context.Background(), AnalyzeScriptInput{Script: "the moon pulls"})
	if err != nil {
		t.Fatalf("AnalyzeScript: %v", err)
	}
	if res.IdeaDetails.MainConcept != "tides" {
		t.Fatalf("main concept: %q", res.IdeaDetails.MainConcept)
	}
	if res.ThingsToExplore == nil || res.Keywords.YoutubeTags == nil || res.IdeaDetails.KeyPoints == nil {
		t.Fatalf("lists should be empty, not nil: %+v", res)
	}

	_, err = newAssistant(t, ai, nil).AnalyzeScript(context.Background(), AnalyzeScriptInput{})
	wantAPIError(t, err, http.StatusBadRequest, "Script is required")
}

func TestSelectionAction(t *testing.T) {
	svc := newAssistant(t, &fakeAI{text: "  shorter  "}, staticModel{err: errors.New("db down")})
	out, err := svc.SelectionAction(context.Background(), "a long sentence", "shorten")
	if err != nil || out != "shorter" {
		t.Fatalf("SelectionAction: out=%q err=%v", out, err)
	}

	_, err = svc.SelectionAction(context.Background(), "", "shorten")
	wantAPIError(t, err, http.StatusBadRequest, "Missing text or action")

	empty := newAssistant(t, &fakeAI{text: " "}, nil)
	_, err = empty.SelectionAction(context.Background(), "x", "shorten")
	wantAPIError(t, err, http.StatusInternalServerError, "AI did not return any text.")
}

func TestEnhanceContext(t *testing.T) {
	svc := newAssistant(t, &fakeAI{text: "richer"}, staticModel{model: ""})
	out, err := svc.EnhanceContext(context.Background(), "plain")
	if err != nil || out != "richer" {
		t.Fatalf("EnhanceContext: out=%q err=%v", out, err)
	}
	_, err = svc.EnhanceContext(context.Background(), " ")
	wantAPIError(t, err, http.StatusBadRequest, "Text is required")
}

func TestAnalyzeTypingFiltersSuggestions(t *testing.T) {
	ai := &fakeAI{jsonObj: map[string]any{"suggestions": []any{
		map[string]any{"type": "grammar", "text": "fix a"},
		map[string]any{"type": "bogus", "text": "drop"},
		map[string]any{"type": "style", "text": ""},
		map[string]any{"type": "idea", "text": "fix b"},
		map[string]any{"type": "continuation", "text": "fix c"},
		map[string]any{"type": "style", "text": "fix d"},
	}}}
	svc := newAssistant(t, ai, nil)

	got := svc.AnalyzeTyping(context.Background(), "short")
	if got.Suggestions == nil || len(got.Suggestions) != 0 {
		t.Fatalf("short text should give empty suggestions: %+v", got)
	}

	got = svc.AnalyzeTyping(context.Background(), "this is long enough text")
	if len(got.Suggestions) != maxTypingSuggestions {
		t.Fatalf("suggestions: want=%d got=%d", maxTypingSuggestions, len(got.Suggestions))
	}
	if got.Suggestions[0].Text != "fix a" || got.Suggestions[1].Text != "fix b" || got.Suggestions[2].Text != "fix c" {
		t.Fatalf("unexpected suggestions: %+v", got.Suggestions)
	}

	ai.jsonErr = errors.New("down")
	got = svc.AnalyzeTyping(context.Background(), "this is long enough text")
	if len(got.Suggestions) != 0 {
		t.Fatalf("failures should give empty suggestions")
	}
}
