package scriptgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

func TestEmbeddedCatalog(t *testing.T) {
	cat, err := EmbeddedCatalog()
	if err != nil {
		t.Fatalf("EmbeddedCatalog: %v", err)
	}
	if !strings.Contains(cat.MethodologyJSON(), "feedback_loop_permanent") {
		t.Fatalf("methodology: %s", cat.MethodologyJSON())
	}
	if cat.SelectionActionPrompt("Rewrite") != cat.SelectionActions["rewrite"] {
		t.Fatal("action lookup should be case-insensitive")
	}
	if cat.SelectionActionPrompt("haiku") != cat.SelectionActions["other"] {
		t.Fatal("unknown action should use the default prompt")
	}
}

func TestParseCatalogRejectsIncomplete(t *testing.T) {
	if _, err := ParseCatalog([]byte("catalog: scriptgen\nversion: 1\n")); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := ParseCatalog([]byte("catalog: other\n")); err == nil {
		t.Fatal("expected catalog name error")
	}
}

func TestLoadCatalogFallsBackOnBadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte(":::not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(promptsOverrideEnv, path)

	cat, err := loadCatalog(logger.Nop())
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	if cat.Name != "scriptgen" || cat.Research.System == "" {
		t.Fatalf("expected embedded catalog, got %+v", cat)
	}
}

func TestLoadCatalogUsesValidOverride(t *testing.T) {
	embedded, err := promptsFS.ReadFile("prompts.yaml")
	if err != nil {
		t.Fatal(err)
	}
	custom := strings.Replace(string(embedded), "Produce the JSON now.", "Answer in JSON.", 1)
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte(custom), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(promptsOverrideEnv, path)

	cat, err := loadCatalog(logger.Nop())
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	if !strings.Contains(cat.Research.User, "Answer in JSON.") {
		t.Fatalf("override not applied: %q", cat.Research.User)
	}
}

func TestRenderAnalyzeScriptOptionalLines(t *testing.T) {
	cat, err := EmbeddedCatalog()
	if err != nil {
		t.Fatal(err)
	}
	out, err := Render(cat.AnalyzeScript.User, map[string]any{"Script": "S", "Context": "", "Duration": 0})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "Contexte additionnel") || strings.Contains(out, "Durée cible") {
		t.Fatalf("optional lines should be omitted:\n%s", out)
	}
}
