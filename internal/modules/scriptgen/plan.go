package scriptgen

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Section names. They double as the JSON discriminator.
const (
	SectionHookIntro = "Hook & Introduction"
	SectionAd        = "Ad (optionnel)"
	SectionBody      = "Body"
	SectionOutro     = "Outro & CTA"
)

var validate = validator.New()

type ProductionPlan struct {
	Title    string    `json:"title"`
	Angle    string    `json:"angle"`
	Hook     string    `json:"hook"`
	Sections []Section `json:"sections" validate:"min=4,dive"`
}

// Section is a tagged union over the four section shapes; exactly one of the
// pointers matches Nom.
type Section struct {
	Nom   string
	Hook  *HookIntro
	Ad    *AdPlacement
	Body  *Body
	Outro *Outro
}

type HookIntro struct {
	DureeMaxSec float64  `json:"duree_max_sec"`
	Objectifs   []string `json:"objectifs"`
}

type AdPlacement struct {
	FenetreInsertionSec []float64 `json:"fenetre_insertion_sec" validate:"len=2"`
	Roles               []string  `json:"roles"`
	Suggestion          string    `json:"suggestion"`
}

type Body struct {
	DureeMoyenneSec  float64        `json:"duree_moyenne_sec"`
	Acts             []Act          `json:"acts" validate:"len=3,dive"`
	Sequences        []PlanSequence `json:"sequences" validate:"min=1,dive"`
	PrincipeOpenLoop string         `json:"principe_open_loop"`
}

type Act struct {
	Acte     string  `json:"acte"`
	DureeSec float64 `json:"duree_sec"`
	Contenu  string  `json:"contenu"`
}

type PlanSequence struct {
	Objectif       string `json:"objectif"`
	Stake          string `json:"stake"`
	Payoff         string `json:"payoff"`
	Type           string `json:"type" validate:"oneof=action education"`
	OpenLoopToNext bool   `json:"open_loop_to_next"`
	Visuals        string `json:"visuals"`
}

type Outro struct {
	DureeMoyenneSec float64  `json:"duree_moyenne_sec"`
	Contenu         []string `json:"contenu"`
}

func HookSection(h HookIntro) Section { return Section{Nom: SectionHookIntro, Hook: &h} }

func AdSection(a AdPlacement) Section { return Section{Nom: SectionAd, Ad: &a} }

func BodySection(b Body) Section { return Section{Nom: SectionBody, Body: &b} }

func OutroSection(o Outro) Section { return Section{Nom: SectionOutro, Outro: &o} }

func (s Section) MarshalJSON() ([]byte, error) {
	switch s.Nom {
	case SectionHookIntro:
		if s.Hook == nil {
			break
		}
		return json.Marshal(struct {
			Nom string `json:"nom"`
			*HookIntro
		}{s.Nom, s.Hook})
	case SectionAd:
		if s.Ad == nil {
			break
		}
		return json.Marshal(struct {
			Nom string `json:"nom"`
			*AdPlacement
		}{s.Nom, s.Ad})
	case SectionBody:
		if s.Body == nil {
			break
		}
		return json.Marshal(struct {
			Nom string `json:"nom"`
			*Body
		}{s.Nom, s.Body})
	case SectionOutro:
		if s.Outro == nil {
			break
		}
		return json.Marshal(struct {
			Nom string `json:"nom"`
			*Outro
		}{s.Nom, s.Outro})
	default:
		return nil, fmt.Errorf("unknown section nom %q", s.Nom)
	}
	return nil, fmt.Errorf("section %q has no payload", s.Nom)
}

func (s *Section) UnmarshalJSON(data []byte) error {
	var head struct {
		Nom string `json:"nom"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	out := Section{Nom: head.Nom}
	var err error
	switch head.Nom {
	case SectionHookIntro:
		out.Hook = &HookIntro{}
		err = json.Unmarshal(data, out.Hook)
	case SectionAd:
		out.Ad = &AdPlacement{}
		err = json.Unmarshal(data, out.Ad)
	case SectionBody:
		out.Body = &Body{}
		err = json.Unmarshal(data, out.Body)
	case SectionOutro:
		out.Outro = &Outro{}
		err = json.Unmarshal(data, out.Outro)
	default:
		return fmt.Errorf("unknown section nom %q", head.Nom)
	}
	if err != nil {
		return fmt.Errorf("section %q: %w", head.Nom, err)
	}
	*s = out
	return nil
}

func (s Section) payloadMatches() bool {
	switch s.Nom {
	case SectionHookIntro:
		return s.Hook != nil && s.Ad == nil && s.Body == nil && s.Outro == nil
	case SectionAd:
		return s.Ad != nil && s.Hook == nil && s.Body == nil && s.Outro == nil
	case SectionBody:
		return s.Body != nil && s.Hook == nil && s.Ad == nil && s.Outro == nil
	case SectionOutro:
		return s.Outro != nil && s.Hook == nil && s.Ad == nil && s.Body == nil
	}
	return false
}

// Validate checks struct tags and the discriminator of every section.
func (p ProductionPlan) Validate() error {
	for i, s := range p.Sections {
		if !s.payloadMatches() {
			return fmt.Errorf("sections[%d]: payload does not match nom %q", i, s.Nom)
		}
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid production plan: %w", err)
	}
	return nil
}

// DecodeProductionPlan decodes and validates a plan from raw JSON.
func DecodeProductionPlan(raw []byte) (ProductionPlan, error) {
	var plan ProductionPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return ProductionPlan{}, fmt.Errorf("decode production plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return ProductionPlan{}, err
	}
	return plan, nil
}

type NarrativeScaffold struct {
	Title     string             `json:"title"`
	Angle     string             `json:"angle"`
	Hook      string             `json:"hook"`
	Sequences []ScaffoldSequence `json:"sequences" validate:"min=1,dive"`
}

type ScaffoldSequence struct {
	Objectif       string `json:"objectif"`
	Stake          string `json:"stake"`
	Payoff         string `json:"payoff"`
	Type           string `json:"type" validate:"oneof=education action entertainment intro outro"`
	Visuals        string `json:"visuals"`
	OpenLoopToNext bool   `json:"open_loop_to_next"`
}

func (n NarrativeScaffold) Validate() error {
	if err := validate.Struct(n); err != nil {
		return fmt.Errorf("invalid narrative scaffold: %w", err)
	}
	return nil
}

// PlanSchemaName is the json_schema name sent with the reasoning request.
const PlanSchemaName = "production_plan"

// PlanJSONSchema is the strict-mode schema for ProductionPlan. Strict mode
// requires every property listed in required and additionalProperties=false,
// so cardinality rules are enforced by Validate after decoding.
func PlanJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}
	num := map[string]any{"type": "number"}
	strList := map[string]any{"type": "array", "items": str}
	constNom := func(nom string) map[string]any {
		return map[string]any{"type": "string", "enum": []any{nom}}
	}

	act := object(map[string]any{
		"acte":      str,
		"duree_sec": num,
		"contenu":   str,
	})
	sequence := object(map[string]any{
		"objectif":          str,
		"stake":             str,
		"payoff":            str,
		"type":              map[string]any{"type": "string", "enum": []any{"action", "education"}},
		"open_loop_to_next": map[string]any{"type": "boolean"},
		"visuals":           str,
	})

	hook := object(map[string]any{
		"nom":           constNom(SectionHookIntro),
		"duree_max_sec": num,
		"objectifs":     strList,
	})
	ad := object(map[string]any{
		"nom":                   constNom(SectionAd),
		"fenetre_insertion_sec": map[string]any{"type": "array", "items": num},
		"roles":                 strList,
		"suggestion":            str,
	})
	body := object(map[string]any{
		"nom":                constNom(SectionBody),
		"duree_moyenne_sec":  num,
		"acts":               map[string]any{"type": "array", "items": act},
		"sequences":          map[string]any{"type": "array", "items": sequence},
		"principe_open_loop": str,
	})
	outro := object(map[string]any{
		"nom":               constNom(SectionOutro),
		"duree_moyenne_sec": num,
		"contenu":           strList,
	})

	return object(map[string]any{
		"title": str,
		"angle": str,
		"hook":  str,
		"sections": map[string]any{
			"type":  "array",
			"items": map[string]any{"anyOf": []any{hook, ad, body, outro}},
		},
	})
}

func object(props map[string]any) map[string]any {
	required := make([]any, 0, len(props))
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}
