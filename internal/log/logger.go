package log

import (
	"context"

	"github.com/go-logr/logr"
)

// FromContext returns the logger in ctx, or a logger that discards everything.
func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}

func WithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// ForPhase returns the context logger tagged with a composition phase name.
func ForPhase(ctx context.Context, phase string) logr.Logger {
	return FromContext(ctx).WithName("composition").WithValues("phase", phase)
}
