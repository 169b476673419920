package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/scribe-backend/internal/data/repos/testutil"
	"github.com/yungbote/scribe-backend/internal/modules/scriptgen"
)

func collect() (*[]scriptgen.AgentStreamEvent, scriptgen.EmitFunc) {
	var events []scriptgen.AgentStreamEvent
	return &events, func(ev scriptgen.AgentStreamEvent) { events = append(events, ev) }
}

func statusMessages(events []scriptgen.AgentStreamEvent) []string {
	var out []string
	for _, ev := range events {
		if ev.Type == scriptgen.EventStatus {
			out = append(out, ev.Message)
		}
	}
	return out
}

func TestAdvancedResearchHappyPath(t *testing.T) {
	web := "web findings"
	p := &fakePipeline{
		research: scriptgen.ResearchResult{WebSummary: &web, Citations: []scriptgen.Citation{{Title: "Src", URL: "https://src"}}},
		plan:     scriptgen.ProductionPlan{Title: "Plan"},
	}
	svc := NewResearchService(testutil.Logger(t), p)
	events, emit := collect()

	plan, err := svc.AdvancedResearch(context.Background(), AdvancedResearchInput{
		Topic: "t",
		Files: []scriptgen.UploadedFile{{Name: "a.txt", Data: []byte("x")}, {Name: "empty.txt"}},
	}, emit)
	if err != nil {
		t.Fatalf("AdvancedResearch: %v", err)
	}
	if plan == nil || plan.Title != "Plan" {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if len(p.files) != 1 {
		t.Fatalf("empty uploads should be dropped, got %d files", len(p.files))
	}

	msgs := statusMessages(*events)
	want := []string{
		"Starting research phase...",
		"Uploading 1 file(s) to vector store...",
		"Vector store ready: vs_test",
		"## Web Research\nweb findings",
		"### Citations\n- [Src](https://src)",
		"All research agents completed. Starting reasoning phase...",
		"Process complete.",
	}
	if strings.Join(msgs, "|") != strings.Join(want, "|") {
		t.Fatalf("status messages:\nwant=%q\n got=%q", want, msgs)
	}
	last := (*events)[len(*events)-2]
	if last.Type != scriptgen.EventFinalOutput {
		t.Fatalf("final output should precede completion, got %s", last.Type)
	}
}

func TestAdvancedResearchReasoningFailureCompletes(t *testing.T) {
	p := &fakePipeline{planErr: errors.New("bad plan")}
	svc := NewResearchService(testutil.Logger(t), p)
	events, emit := collect()

	_, err := svc.AdvancedResearch(context.Background(), AdvancedResearchInput{Topic: "t"}, emit)
	if err == nil || err.Error() != "bad plan" {
		t.Fatalf("want bad plan error, got %v", err)
	}
	errorsSeen := 0
	for _, ev := range *events {
		if ev.Type == scriptgen.EventError {
			errorsSeen++
		}
	}
	if errorsSeen != 1 {
		t.Fatalf("error should be emitted once, got %d", errorsSeen)
	}
	if msgs := statusMessages(*events); msgs[len(msgs)-1] != "Process complete." {
		t.Fatalf("stream should still complete: %q", msgs)
	}
}

func TestAdvancedResearchVectorStoreFailure(t *testing.T) {
	p := &fakePipeline{storeErr: scriptgen.ErrVectorStoreFailed}
	svc := NewResearchService(testutil.Logger(t), p)
	events, emit := collect()

	_, err := svc.AdvancedResearch(context.Background(), AdvancedResearchInput{
		Files: []scriptgen.UploadedFile{{Name: "a.pdf", Data: []byte("x")}},
	}, emit)
	if !errors.Is(err, scriptgen.ErrVectorStoreFailed) {
		t.Fatalf("want vector store error, got %v", err)
	}
	last := (*events)[len(*events)-1]
	if last.Type != scriptgen.EventError {
		t.Fatalf("last event: want error got %s", last.Type)
	}
}
