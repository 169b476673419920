package envutil

import (
	"testing"
	"time"
)

func TestBool(t *testing.T) {
	cases := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"false", true, false},
		{"OFF", true, false},
		{"yes", false, true},
		{"maybe", false, false},
	}
	for _, tc := range cases {
		t.Setenv("SCRIBE_TEST_BOOL", tc.raw)
		if got := Bool("SCRIBE_TEST_BOOL", tc.def); got != tc.want {
			t.Fatalf("Bool(%q, %v): want=%v got=%v", tc.raw, tc.def, tc.want, got)
		}
	}
}

func TestNumbers(t *testing.T) {
	t.Setenv("SCRIBE_TEST_INT", "42")
	t.Setenv("SCRIBE_TEST_BAD", "nope")
	t.Setenv("SCRIBE_TEST_FLOAT", "0.5")
	t.Setenv("SCRIBE_TEST_SECS", "3")
	if got := Int("SCRIBE_TEST_INT", 1); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	if got := Int("SCRIBE_TEST_BAD", 7); got != 7 {
		t.Fatalf("Int fallback: want=7 got=%d", got)
	}
	if got := Float("SCRIBE_TEST_FLOAT", 0); got != 0.5 {
		t.Fatalf("Float: want=0.5 got=%v", got)
	}
	if got := Seconds("SCRIBE_TEST_SECS", time.Minute); got != 3*time.Second {
		t.Fatalf("Seconds: want=3s got=%v", got)
	}
	if got := Seconds("SCRIBE_TEST_UNSET", time.Minute); got != time.Minute {
		t.Fatalf("Seconds default: want=1m got=%v", got)
	}
}

func TestList(t *testing.T) {
	t.Setenv("SCRIBE_TEST_LIST", " a, ,b ,")
	got := List("SCRIBE_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got=%v", got)
	}
}
