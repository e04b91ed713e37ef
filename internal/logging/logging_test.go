package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/logtail"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"verbose": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shelf.log")
	logger, closer, err := New(Options{Path: path, Level: "info"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug().Msg("hidden")
	logger.Info().Str("component", "cart").Msg("cart loaded")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines, err := logtail.Read(path, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line above debug, got %v", lines)
	}
	entry := logtail.ParseLine(lines[0])
	if entry.Level != "INFO" || entry.Component != "cart" || entry.Message != "cart loaded" || entry.Time.IsZero() {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if !strings.Contains(lines[0], `"service":"shelf"`) {
		t.Fatalf("missing service field: %s", lines[0])
	}
}

func TestNew_DevelopmentConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Out: &buf, Level: "debug", Development: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug().Msg("hello")
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") || !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}

func TestNew_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, _, err := New(Options{Path: filepath.Join(blocker, "shelf.log")}); err == nil {
		t.Fatal("expected error when the log dir is a file")
	}
}
