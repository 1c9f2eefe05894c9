package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevelOf(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"fatal":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}

	for input, want := range tests {
		if got := levelOf(input); got != want {
			t.Fatalf("levelOf(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNew_JSONCarriesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Level: "debug", Output: &buf})

	component := log.With().Str("component", "outbox").Logger()
	component.Debug().Str("document_id", "TX-1").Msg("published")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one json entry, got %q: %v", buf.String(), err)
	}
	for field, want := range map[string]string{
		"service":     "gobooks",
		"component":   "outbox",
		"document_id": "TX-1",
		"level":       "debug",
		"message":     "published",
	} {
		if entry[field] != want {
			t.Fatalf("expected %s=%q, got %v", field, want, entry[field])
		}
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("expected timestamp in %q", buf.String())
	}
}

func TestNew_ConsoleIsHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "Console", Output: &buf})

	log.Info().Msg("document submitted")

	out := strings.TrimSpace(buf.String())
	if strings.HasPrefix(out, "{") {
		t.Fatalf("expected console output, got %q", out)
	}
	if !strings.Contains(out, "document submitted") {
		t.Fatalf("expected message in output, got %q", out)
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Level: "warn", Output: &buf})

	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info entry to be filtered, got %q", buf.String())
	}

	log.Warn().Msg("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected warn entry, got %q", buf.String())
	}
}
