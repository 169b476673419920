package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/scribe-backend/internal/modules/scriptgen"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

// ScriptPipeline is the part of scriptgen.Pipeline the services drive.
type ScriptPipeline interface {
	Prompts() *scriptgen.Catalog
	PrepareVectorStoreForFiles(ctx context.Context, files []scriptgen.UploadedFile) (string, error)
	PerformResearch(ctx context.Context, topic, angle, vectorStoreID string, onEvent scriptgen.EmitFunc) (scriptgen.ResearchResult, error)
	PerformReasoningAndScaffolding(ctx context.Context, topic, angle string, research *scriptgen.ResearchResult, exampleScript string) (scriptgen.ProductionPlan, error)
	Render(ctx context.Context, plan scriptgen.ProductionPlan, targetDuration int) (string, scriptgen.Storyline)
}

type AdvancedResearchInput struct {
	Topic              string
	Angle              string
	ExampleScriptsText string
	Files              []scriptgen.UploadedFile
}

type ResearchService interface {
	// AdvancedResearch streams status, tool and final events through emit.
	// It returns the error that ended the run, if any, after emitting it.
	AdvancedResearch(ctx context.Context, in AdvancedResearchInput, emit scriptgen.EmitFunc) (*scriptgen.ProductionPlan, error)
}

type researchService struct {
	log      *logger.Logger
	pipeline ScriptPipeline
}

func NewResearchService(log *logger.Logger, pipeline ScriptPipeline) ResearchService {
	return &researchService{log: log.With("service", "ResearchService"), pipeline: pipeline}
}

func (s *researchService) AdvancedResearch(ctx context.Context, in AdvancedResearchInput, emit scriptgen.EmitFunc) (*scriptgen.ProductionPlan, error) {
	send := func(ev scriptgen.AgentStreamEvent) {
		if emit != nil {
			emit(ev)
		}
	}

	plan, err := s.run(ctx, in, send)
	if err != nil {
		s.log.Warn("advanced research failed", "topic", in.Topic, "error", err)
		var reported *reportedError
		if !errors.As(err, &reported) {
			send(scriptgen.ErrorEvent(err))
		}
		return nil, err
	}
	return plan, nil
}

// reportedError marks a failure the stream has already carried.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func (s *researchService) run(ctx context.Context, in AdvancedResearchInput, send scriptgen.EmitFunc) (*scriptgen.ProductionPlan, error) {
	send(scriptgen.StatusEvent("Starting research phase..."))

	files := nonEmptyFiles(in.Files)
	vectorStoreID := ""
	if len(files) > 0 {
		send(scriptgen.StatusEvent(fmt.Sprintf("Uploading %d file(s) to vector store...", len(files))))
		id, err := s.pipeline.PrepareVectorStoreForFiles(ctx, files)
		if err != nil {
			return nil, err
		}
		vectorStoreID = id
		send(scriptgen.StatusEvent("Vector store ready: " + id))
	}

	research, err := s.pipeline.PerformResearch(ctx, in.Topic, in.Angle, vectorStoreID, send)
	if err != nil {
		return nil, err
	}
	for _, msg := range ResearchDigest(research) {
		send(scriptgen.StatusEvent(msg))
	}

	send(scriptgen.StatusEvent("All research agents completed. Starting reasoning phase..."))
	plan, err := s.pipeline.PerformReasoningAndScaffolding(ctx, in.Topic, in.Angle, &research, in.ExampleScriptsText)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		// A bad plan is reported but the run still completes.
		send(scriptgen.ErrorEvent(err))
		send(scriptgen.StatusEvent("Process complete."))
		return nil, &reportedError{err: err}
	}
	send(scriptgen.FinalOutputEvent(plan))
	send(scriptgen.StatusEvent("Process complete."))
	return &plan, nil
}

// ResearchDigest renders the research result as the status messages shown in the UI.
func ResearchDigest(r scriptgen.ResearchResult) []string {
	var out []string
	if s := strings.TrimSpace(r.Web()); s != "" {
		out = append(out, "## Web Research\n"+s)
	}
	if s := strings.TrimSpace(r.File()); s != "" {
		out = append(out, "## File Research\n"+s)
	}
	if len(r.Citations) > 0 {
		lines := make([]string, 0, len(r.Citations))
		for _, c := range r.Citations {
			lines = append(lines, fmt.Sprintf("- [%s](%s)", c.Title, c.URL))
		}
		out = append(out, "### Citations\n"+strings.Join(lines, "\n"))
	}
	return out
}

func nonEmptyFiles(files []scriptgen.UploadedFile) []scriptgen.UploadedFile {
	out := make([]scriptgen.UploadedFile, 0, len(files))
	for _, f := range files {
		if len(f.Data) > 0 {
			out = append(out, f)
		}
	}
	return out
}
