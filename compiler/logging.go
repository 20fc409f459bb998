package compiler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type runIDKey struct{}

// withRun returns ctx carrying a run id, keeping one that is already set so
// the stages of Run share it.
func withRun(ctx context.Context) (context.Context, string) {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return ctx, id
	}
	id := uuid.Must(uuid.NewV7()).String()
	return context.WithValue(ctx, runIDKey{}, id), id
}

// RunID returns the run id carried by ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// logStage logs the start and end of a pipeline stage, including duration
// and error status.
func logStage(ctx context.Context, logger *slog.Logger, stage string, fn func() error, attrs ...slog.Attr) error {
	start := time.Now()
	base := append([]slog.Attr{
		slog.String("run_id", RunID(ctx)),
		slog.String("stage", stage),
	}, attrs...)

	logger.LogAttrs(ctx, slog.LevelDebug, "stage started", base...)

	err := fn()
	duration := time.Since(start)

	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "stage failed",
			append(base, slog.Duration("duration", duration), slog.Any("error", err))...)
	} else {
		logger.LogAttrs(ctx, slog.LevelInfo, "stage completed",
			append(base, slog.Duration("duration", duration))...)
	}
	return err
}
