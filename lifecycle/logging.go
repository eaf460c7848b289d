package lifecycle

import (
	"context"
	"log/slog"
	"time"
)

// Logger provides logging hooks for transition dispatch.
type Logger interface {
	TransitionStarted(ctx context.Context, family, transition string, from, to State)
	TransitionCompleted(ctx context.Context, family, transition string, from, to State, duration time.Duration)
	TransitionFailed(ctx context.Context, family, transition string, from, to State, err error)
	CallbackStarted(ctx context.Context, kind Kind, name string)
	CallbackCompleted(ctx context.Context, kind Kind, name string, duration time.Duration, err error)
}

// DefaultLogger implements Logger using slog. Transitions log at info,
// per-callback events at debug.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger backed by the process-wide slog default.
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		logger: slog.Default(),
	}
}

// NewSlogLogger creates a logger backed by the given slog logger.
func NewSlogLogger(logger *slog.Logger) *DefaultLogger {
	return &DefaultLogger{
		logger: logger,
	}
}

func (l *DefaultLogger) TransitionStarted(ctx context.Context, family, transition string, from, to State) {
	l.logger.InfoContext(ctx, "Transition started",
		"family", family,
		"transition", transition,
		"from", string(from),
		"to", string(to),
	)
}

func (l *DefaultLogger) TransitionCompleted(
	ctx context.Context,
	family, transition string,
	from, to State,
	duration time.Duration,
) {
	l.logger.InfoContext(ctx, "Transition completed",
		"family", family,
		"transition", transition,
		"from", string(from),
		"to", string(to),
		"duration_ms", duration.Milliseconds(),
	)
}

func (l *DefaultLogger) TransitionFailed(
	ctx context.Context,
	family, transition string,
	from, to State,
	err error,
) {
	l.logger.ErrorContext(ctx, "Transition failed",
		"family", family,
		"transition", transition,
		"from", string(from),
		"to", string(to),
		"error", err,
	)
}

func (l *DefaultLogger) CallbackStarted(ctx context.Context, kind Kind, name string) {
	l.logger.DebugContext(ctx, "Callback started",
		"kind", string(kind),
		"callback", name,
	)
}

func (l *DefaultLogger) CallbackCompleted(
	ctx context.Context,
	kind Kind,
	name string,
	duration time.Duration,
	err error,
) {
	if err != nil {
		l.logger.ErrorContext(ctx, "Callback completed with error",
			"kind", string(kind),
			"callback", name,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)

		return
	}

	l.logger.DebugContext(ctx, "Callback completed",
		"kind", string(kind),
		"callback", name,
		"duration_ms", duration.Milliseconds(),
	)
}

// NopLogger discards every event.
type NopLogger struct{}

// NewNopLogger creates a logger that discards every event.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (*NopLogger) TransitionStarted(context.Context, string, string, State, State) {}
func (*NopLogger) TransitionCompleted(context.Context, string, string, State, State, time.Duration) {
}
func (*NopLogger) TransitionFailed(context.Context, string, string, State, State, error) {}
func (*NopLogger) CallbackStarted(context.Context, Kind, string)                         {}
func (*NopLogger) CallbackCompleted(context.Context, Kind, string, time.Duration, error) {}
