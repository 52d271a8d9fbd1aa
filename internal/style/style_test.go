package style

import (
	"strings"
	"testing"
)

func TestVariantLine(t *testing.T) {
	active := VariantLine("work", true)
	if !strings.Contains(active, "*") || !strings.Contains(active, "work") {
		t.Errorf("active line = %q, want marker and name", active)
	}

	idle := VariantLine("home", false)
	if strings.Contains(idle, "*") {
		t.Errorf("inactive line = %q, want no marker", idle)
	}
	if !strings.HasPrefix(idle, "  ") {
		t.Errorf("inactive line = %q, want blank marker column", idle)
	}
}

func TestIdentity(t *testing.T) {
	if got, want := Identity("Ada Lovelace", "ada@example.com"), "Ada Lovelace <ada@example.com>"; got != want {
		t.Errorf("Identity = %q, want %q", got, want)
	}
}
