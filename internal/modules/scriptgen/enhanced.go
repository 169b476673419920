package scriptgen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	sectionHeaderRe = regexp.MustCompile(`(?s)^(\d+)-(\d+)\s*seconds?:\s*(.*)$`)
	bracketVisualRe = regexp.MustCompile(`\[([^\]]+)\]`)
	sentenceEndRe   = regexp.MustCompile(`[.!?]`)
)

// EnhancedSection is one timed block of an editor script.
type EnhancedSection struct {
	Timestamp         string `json:"timestamp"`
	Content           string `json:"content"`
	Duration          int    `json:"duration"`
	VisualDescription string `json:"visualDescription"`
}

// ConvertToEnhancedScript splits flat "start-end seconds:" text into sections.
// Blocks without a header belong to the preceding section; blocks before the
// first header are dropped.
func ConvertToEnhancedScript(text string) []EnhancedSection {
	out := []EnhancedSection{}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if m := sectionHeaderRe.FindStringSubmatch(block); m != nil {
			start, _ := strconv.Atoi(m[1])
			end, _ := strconv.Atoi(m[2])
			out = append(out, EnhancedSection{
				Timestamp: FormatTimestamp(start),
				Content:   strings.TrimSpace(m[3]),
				Duration:  end - start,
			})
			continue
		}
		if len(out) == 0 {
			continue
		}
		last := &out[len(out)-1]
		if last.Content == "" {
			last.Content = block
		} else {
			last.Content += "\n\n" + block
		}
	}
	for i := range out {
		out[i].VisualDescription = ExtractVisualDescription(out[i].Content)
	}
	return out
}

const maxVisualRunes = 100

// ExtractVisualDescription returns the first bracketed cue, else the first sentence.
func ExtractVisualDescription(content string) string {
	if m := bracketVisualRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	first := strings.TrimSpace(sentenceEndRe.Split(content, 2)[0])
	if first != "" {
		return first
	}
	if r := []rune(content); len(r) > maxVisualRunes {
		return string(r[:maxVisualRunes])
	}
	return content
}

// FormatTimestamp renders seconds as mm:ss.
func FormatTimestamp(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
