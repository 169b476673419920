package promptstyle

import "strings"

const marker = "SCRIBE_PROMPT_STYLE_V1"

// ApplySystem prepends the shared writing-room guidance to a system prompt.
// Prompts that already carry the marker are returned unchanged.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou work inside Scribe, a writing room for YouTube video scripts.")
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nGround claims in the provided research; never invent sources or citations.")
	switch mode {
	case "json":
		b.WriteString("\nReturn a single JSON object that conforms to the requested shape, with no prose or code fences.")
	case "edit":
		b.WriteString("\nReturn only the edited text, without preamble or commentary.")
	default:
		b.WriteString("\nWrite for the ear: short sentences, concrete images, no filler.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return b.String()
}
