package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	if err != nil {
		t.Fatalf("ParseLevel returned error: %v", err)
	}
	if lvl != zerolog.WarnLevel {
		t.Fatalf("default level = %v, want warn", lvl)
	}
	lvl, err = ParseLevel(" DEBUG ")
	if err != nil || lvl != zerolog.DebugLevel {
		t.Fatalf("ParseLevel(DEBUG) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Str("date", "2026-10-16").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "2026-10-16") {
		t.Fatalf("warn message missing fields: %s", out)
	}
}
