// Package errlog opens the error log that remote failures are written to.
package errlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// EnvDebug forces debug level logging when set to a non-empty value.
const EnvDebug = "OLSD_DEBUG"

// Open appends text records to the file at path, creating it and its parent
// directory when needed. The returned func closes the file.
func Open(path string, level slog.Level) (*slog.Logger, func(), error) {
	handler, closer, err := OpenHandler(path, level)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(handler), closer, nil
}

// OpenHandler is Open without the logger wrapper, for use with Fanout.
func OpenHandler(path string, level slog.Level) (slog.Handler, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening error log: %w", err)
	}
	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: EffectiveLevel(level)})
	return handler, func() { file.Close() }, nil
}

// EffectiveLevel applies the OLSD_DEBUG override.
func EffectiveLevel(level slog.Level) slog.Level {
	if os.Getenv(EnvDebug) != "" {
		return slog.LevelDebug
	}
	return level
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Fanout is a slog.Handler that sends each record to multiple underlying
// handlers. A record is enabled if any sub-handler is enabled for its level.
type Fanout []slog.Handler

func (handlers Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers Fanout) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(Fanout, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers Fanout) WithGroup(name string) slog.Handler {
	derived := make(Fanout, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
