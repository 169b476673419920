package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	if !redactionOn() {
		t.Skip("LOG_REDACTION_ENABLED is off")
	}
	out := sanitizeKVs([]any{
		"api_key", "sk-abcdefghijklmnopqrstuvwxyz",
		"session_id", "sess-123",
		"prompt", "a short prompt",
		"note", "sk-abcdefghijklmnopqrstuvwxyz0123",
		"dangling",
	})
	if len(out) != 9 {
		t.Fatalf("len: want=9 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("api_key: want redacted got=%v", out[1])
	}
	if s, _ := out[3].(string); !strings.HasPrefix(s, "hash:") || len(s) != len("hash:")+12 {
		t.Fatalf("session_id: want hash got=%v", out[3])
	}
	if out[5] != "a short prompt" {
		t.Fatalf("prompt: want untouched got=%v", out[5])
	}
	if out[7] != "[REDACTED]" {
		t.Fatalf("note: want redacted key-shaped value got=%v", out[7])
	}
	if out[8] != "dangling" {
		t.Fatalf("dangling key: got=%v", out[8])
	}
}

func TestSanitizeClipsLongValues(t *testing.T) {
	if !redactionOn() {
		t.Skip("LOG_REDACTION_ENABLED is off")
	}
	long := strings.Repeat("word ", 1000)
	out := sanitizeKVs([]any{"transcript", long})
	s, _ := out[1].(string)
	if len(s) >= len(long) || !strings.Contains(s, "bytes)") {
		t.Fatalf("expected clipped value, got len=%d", len(s))
	}
}

func TestSanitizeNestedMap(t *testing.T) {
	if !redactionOn() {
		t.Skip("LOG_REDACTION_ENABLED is off")
	}
	out := sanitizeKVs([]any{"request", map[string]any{"password": "x", "topic": "rome"}})
	m, ok := out[1].(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", out[1])
	}
	if m["password"] != "[REDACTED]" || m["topic"] != "rome" {
		t.Fatalf("unexpected map: %#v", m)
	}
}
