package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tcs := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"verbose": zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"notice":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"silent":  zerolog.Disabled,
	}
	for in, want := range tcs {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "json", "info")
	if err != nil {
		t.Fatal(err)
	}
	log.Debug().Msg("hidden")
	log.Info().Str("algorithm", "jsf64").Msg("opened")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["message"] != "opened" || rec["algorithm"] != "jsf64" || rec["level"] != "info" {
		t.Fatalf("record=%v", rec)
	}
	if _, ok := rec["time"]; !ok {
		t.Fatal("missing timestamp")
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(Console(&buf, true))
	log.Warn().Msg("careful")
	if got := buf.String(); !strings.Contains(got, "WRN") || !strings.Contains(got, "careful") {
		t.Fatalf("console output %q", got)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Fatal("expected format error")
	}
	if _, err := New(&bytes.Buffer{}, "json", "loud"); err == nil {
		t.Fatal("expected level error")
	}
}
