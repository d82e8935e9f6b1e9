// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
)

type runKey struct{}

// Run identifies the invocation a log line belongs to.
type Run struct {
	ID      string // YYYYMMDD_HHMMSS, shared by every artifact of the run
	UUID    string
	Command string
}

// ContextWithRun attaches run identity to ctx.
func ContextWithRun(ctx context.Context, run Run) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runKey{}, run)
}

// RunFromContext returns the run attached by ContextWithRun.
func RunFromContext(ctx context.Context) (Run, bool) {
	if ctx == nil {
		return Run{}, false
	}
	run, ok := ctx.Value(runKey{}).(Run)
	return run, ok
}

// WithContext adds the non-empty run fields found in ctx to logger.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	run, ok := RunFromContext(ctx)
	if !ok {
		return logger
	}
	b := logger.With()
	for _, f := range [...]struct{ key, val string }{
		{FieldRunID, run.ID},
		{FieldRunUUID, run.UUID},
		{FieldCommand, run.Command},
	} {
		if f.val != "" {
			b = b.Str(f.key, f.val)
		}
	}
	return b.Logger()
}

// WithComponentFromContext is WithComponent enriched with the run in ctx.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return WithContext(ctx, WithComponent(component))
}
