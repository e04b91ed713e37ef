package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every log line.
const ServiceName = "shelf"

// Options configure New.
type Options struct {
	// Path is the log file. Empty writes to Out instead.
	Path string
	// Out is used when Path is empty; nil means stderr.
	Out   io.Writer
	Level string
	// Development switches to the human-readable console format.
	Development bool
}

// New builds the application logger. The returned closer releases the log
// file and is never nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var (
		out    io.Writer = opts.Out
		closer io.Closer = nopCloser{}
	)
	if path := strings.TrimSpace(opts.Path); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		out, closer = file, file
	}
	if out == nil {
		out = os.Stderr
	}

	if opts.Development {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
			NoColor:    opts.Path != "",
		}
	}

	logger := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
	return logger, closer, nil
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
