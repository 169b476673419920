package scriptgen

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

const promptsOverrideEnv = "SCRIPTGEN_PROMPTS_YAML"

//go:embed prompts.yaml
var promptsFS embed.FS

type PromptPair struct {
	System string `yaml:"system" validate:"required"`
	User   string `yaml:"user" validate:"required"`
}

// Catalog holds every prompt template the pipeline and the assistant routes use.
type Catalog struct {
	Name                   string            `yaml:"catalog"`
	Version                int               `yaml:"version"`
	Research               PromptPair        `yaml:"research"`
	Showrunner             PromptPair        `yaml:"showrunner"`
	Methodology            map[string]any    `yaml:"methodology" validate:"required"`
	AnalyzeScript          PromptPair        `yaml:"analyze_script"`
	SelectionActions       map[string]string `yaml:"selection_actions" validate:"required,dive,required"`
	EnhanceContext         PromptPair        `yaml:"enhance_context"`
	AnalyzeTyping          PromptPair        `yaml:"analyze_typing"`
	ExploreTopic           PromptPair        `yaml:"explore_topic"`
	ExploreAgents          PromptPair        `yaml:"explore_agents"`
	ExploreAgentsResearch  PromptPair        `yaml:"explore_agents_research"`
	ExploreAgentsStructure PromptPair        `yaml:"explore_agents_structure"`
}

var (
	catalogOnce  sync.Once
	catalogCache *Catalog
	catalogErr   error
)

// LoadCatalog returns the prompt catalog. An override file named by
// SCRIPTGEN_PROMPTS_YAML wins when it parses and validates; otherwise the
// embedded catalog is used and a warning is logged.
func LoadCatalog(log *logger.Logger) (*Catalog, error) {
	catalogOnce.Do(func() {
		catalogCache, catalogErr = loadCatalog(log)
	})
	return catalogCache, catalogErr
}

func loadCatalog(log *logger.Logger) (*Catalog, error) {
	if path := strings.TrimSpace(os.Getenv(promptsOverrideEnv)); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var c *Catalog
			c, err = ParseCatalog(data)
			if err == nil {
				return c, nil
			}
		}
		if log != nil {
			log.Warn("scriptgen: prompt override invalid; using embedded catalog", "path", path, "error", err)
		}
	}
	return EmbeddedCatalog()
}

// EmbeddedCatalog parses the catalog compiled into the binary.
func EmbeddedCatalog() (*Catalog, error) {
	data, err := promptsFS.ReadFile("prompts.yaml")
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}
	if err := validateCatalog(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func validateCatalog(c *Catalog) error {
	if strings.TrimSpace(c.Name) != "scriptgen" {
		return fmt.Errorf("unexpected catalog: %q", c.Name)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid prompt catalog: %w", err)
	}
	if _, ok := c.SelectionActions["other"]; !ok {
		return errors.New("selection_actions.other is required")
	}
	for name, pair := range map[string]PromptPair{
		"research":   c.Research,
		"showrunner": c.Showrunner,
	} {
		if _, err := parseTemplate(pair.System); err != nil {
			return fmt.Errorf("%s.system: %w", name, err)
		}
		if _, err := parseTemplate(pair.User); err != nil {
			return fmt.Errorf("%s.user: %w", name, err)
		}
	}
	return nil
}

func parseTemplate(text string) (*template.Template, error) {
	return template.New("prompt").Option("missingkey=zero").Parse(text)
}

// Render executes a catalog template against data and trims the result.
func Render(text string, data any) (string, error) {
	t, err := parseTemplate(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// MethodologyJSON is the methodology block embedded in the showrunner instructions.
func (c *Catalog) MethodologyJSON() string {
	s, err := indentJSON(c.Methodology)
	if err != nil {
		return "{}"
	}
	return s
}

// indentJSON marshals v for inclusion in a prompt, leaving & < > unescaped.
func indentJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// SelectionActionPrompt returns the system prompt for action, falling back to "other".
func (c *Catalog) SelectionActionPrompt(action string) string {
	if p, ok := c.SelectionActions[strings.ToLower(strings.TrimSpace(action))]; ok {
		return p
	}
	return c.SelectionActions["other"]
}
