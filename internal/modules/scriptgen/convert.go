package scriptgen

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

var sectionShares = map[string]float64{
	SectionHookIntro: 0.10,
	SectionAd:        0.05,
	SectionBody:      0.75,
	SectionOutro:     0.10,
}

const defaultSectionShare = 0.25

// SectionDuration is the section's share of the target duration, in whole seconds.
func SectionDuration(s Section, total int) int {
	share, ok := sectionShares[s.Nom]
	if !ok {
		share = defaultSectionShare
	}
	return int(math.Floor(float64(total) * share))
}

// Description is the prose rendered for non-body sections and used as storyline contenu.
func (s Section) Description() string {
	switch {
	case s.Hook != nil:
		return strings.Join(s.Hook.Objectifs, "\n")
	case s.Ad != nil:
		return s.Ad.Suggestion
	case s.Outro != nil:
		return strings.Join(s.Outro.Contenu, "\n")
	case s.Body != nil:
		parts := make([]string, 0, len(s.Body.Acts))
		for _, a := range s.Body.Acts {
			if c := strings.TrimSpace(a.Contenu); c != "" {
				parts = append(parts, c)
			}
		}
		return strings.Join(parts, "\n\n")
	}
	return ""
}

// ConvertPlanToScript renders a plan as timed script text:
//
//	0-60 seconds: (Hook & Introduction)
//	...
func ConvertPlanToScript(plan ProductionPlan, targetDuration int) string {
	var b strings.Builder
	cursor := 0
	for _, s := range plan.Sections {
		end := cursor + SectionDuration(s, targetDuration)
		fmt.Fprintf(&b, "%d-%d seconds: (%s)\n", cursor, end, s.Nom)
		if s.Body != nil {
			for _, seq := range s.Body.Sequences {
				fmt.Fprintf(&b, "[%s]\n%s\n", seq.Visuals, seq.Objectif)
				if seq.Payoff != "" {
					b.WriteString(seq.Payoff)
					b.WriteString("\n")
				}
				b.WriteString("\n")
			}
		} else if d := s.Description(); d != "" {
			b.WriteString(d)
			b.WriteString("\n\n")
		}
		cursor = end
	}
	return strings.TrimSpace(b.String())
}

type StorylineSection struct {
	Nom       string   `json:"nom"`
	DureeSec  int      `json:"duree_sec"`
	Objectifs []string `json:"objectifs"`
	Contenu   string   `json:"contenu"`
}

type Storyline struct {
	Sections []StorylineSection `json:"sections"`
}

func StorylineFromPlan(plan ProductionPlan, targetDuration int) Storyline {
	out := Storyline{Sections: make([]StorylineSection, 0, len(plan.Sections))}
	for _, s := range plan.Sections {
		objectifs := []string{}
		switch {
		case s.Body != nil:
			for _, seq := range s.Body.Sequences {
				objectifs = append(objectifs, seq.Objectif)
			}
		case s.Hook != nil:
			objectifs = append(objectifs, s.Hook.Objectifs...)
		}
		out.Sections = append(out.Sections, StorylineSection{
			Nom:       s.Nom,
			DureeSec:  SectionDuration(s, targetDuration),
			Objectifs: objectifs,
			Contenu:   s.Description(),
		})
	}
	return out
}

// Render produces the script text and storyline for plan under a render span.
func (p *Pipeline) Render(ctx context.Context, plan ProductionPlan, targetDuration int) (string, Storyline) {
	_, done := p.stage(ctx, "render",
		attribute.Int("sections", len(plan.Sections)),
		attribute.Int("target_duration", targetDuration),
	)
	script := ConvertPlanToScript(plan, targetDuration)
	storyline := StorylineFromPlan(plan, targetDuration)
	done(nil)
	return script, storyline
}
