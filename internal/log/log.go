// Package log configures the process-wide slog logger.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options mirrors the Log section of the configuration.
type Options struct {
	Level    string
	Encoding string // json or text
	File     string // optional; records are written to both stderr and the file
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// NewHandler builds a handler writing to w with the given encoding.
func NewHandler(w io.Writer, encoding string, level slog.Leveler) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(encoding) {
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log encoding %q", encoding)
	}
}

// Setup installs the default logger. The returned closer releases the log file,
// if one was opened.
func Setup(opts Options) (io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	stderr, err := NewHandler(os.Stderr, opts.Encoding, level)
	if err != nil {
		return nil, err
	}
	if opts.File == "" {
		slog.SetDefault(slog.New(stderr))
		return io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	file, err := NewHandler(f, opts.Encoding, level)
	if err != nil {
		f.Close()
		return nil, err
	}
	slog.SetDefault(slog.New(slogmulti.Fanout(stderr, file)))
	return f, nil
}
