package scriptgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/scribe-backend/internal/platform/openai"
)

type reasoningPrompt struct {
	Topic         string
	Angle         string
	WebSummary    string
	FileSummary   string
	Citations     string
	ExampleScript string
}

// ReasoningPrompt renders the structured showrunner prompt, substituting the
// placeholder text for any research part that is missing.
func (c *Catalog) ReasoningPrompt(topic, angle string, research *ResearchResult, exampleScript string) (string, error) {
	in := reasoningPrompt{
		Topic:         topic,
		Angle:         angle,
		WebSummary:    "No web research available",
		FileSummary:   "No file research available",
		Citations:     "N/A",
		ExampleScript: "No example script was provided.",
	}
	if research != nil {
		if s := strings.TrimSpace(research.Web()); s != "" {
			in.WebSummary = s
		}
		if s := strings.TrimSpace(research.File()); s != "" {
			in.FileSummary = s
		}
		if len(research.Citations) > 0 {
			lines := make([]string, 0, len(research.Citations))
			for _, c := range research.Citations {
				lines = append(lines, fmt.Sprintf("- %s: %s", c.Title, c.URL))
			}
			in.Citations = strings.Join(lines, "\n")
		}
	}
	if s := strings.TrimSpace(exampleScript); s != "" {
		in.ExampleScript = s
	}
	return Render(c.Showrunner.User, in)
}

// ShowrunnerInstructions renders the system prompt with the methodology and schema inlined.
func (c *Catalog) ShowrunnerInstructions() (string, error) {
	schema, err := indentJSON(PlanJSONSchema())
	if err != nil {
		return "", err
	}
	return Render(c.Showrunner.System, map[string]string{
		"Methodology": c.MethodologyJSON(),
		"Schema":      schema,
	})
}

// PerformReasoningAndScaffolding asks the showrunner model for a production
// plan and validates it. An invalid plan is an error.
func (p *Pipeline) PerformReasoningAndScaffolding(ctx context.Context, topic, angle string, research *ResearchResult, exampleScript string) (ProductionPlan, error) {
	ctx, done := p.stage(ctx, "reasoning")
	plan, err := p.performReasoning(ctx, topic, angle, research, exampleScript)
	done(err)
	return plan, err
}

func (p *Pipeline) performReasoning(ctx context.Context, topic, angle string, research *ResearchResult, exampleScript string) (ProductionPlan, error) {
	system, err := p.prompts.ShowrunnerInstructions()
	if err != nil {
		return ProductionPlan{}, fmt.Errorf("render showrunner instructions: %w", err)
	}
	user, err := p.prompts.ReasoningPrompt(topic, angle, research, exampleScript)
	if err != nil {
		return ProductionPlan{}, fmt.Errorf("render showrunner prompt: %w", err)
	}

	client := openai.WithModel(p.ai, p.cfg.ReasoningModel)
	obj, err := client.GenerateJSON(ctx, system, user, PlanSchemaName, PlanJSONSchema())
	if err != nil {
		return ProductionPlan{}, fmt.Errorf("showrunner agent: %w", err)
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return ProductionPlan{}, err
	}
	plan, err := DecodeProductionPlan(raw)
	if err != nil {
		return ProductionPlan{}, err
	}
	p.log.Info("production plan ready", "title", plan.Title, "sections", len(plan.Sections))
	return plan, nil
}
