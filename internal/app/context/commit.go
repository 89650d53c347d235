package appctx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen11/go-entity-routing/internal/platform/logging"
)

// Commit executes the staged writes in order. When one fails, the writes
// that completed before it are rolled back in reverse order; rollback
// failures are logged and do not change the returned error.
//
// The RequestContext is marked committed whatever the outcome. A second
// call returns ErrAlreadyCommitted.
func (rc *RequestContext) Commit(ctx context.Context) error {
	rc.mu.Lock()
	if rc.committed {
		rc.mu.Unlock()
		return ErrAlreadyCommitted
	}
	rc.committed = true
	queue := rc.queue
	rc.mu.Unlock()

	logger := logging.FromContext(ctx)

	for i, q := range queue {
		logger.DebugContext(ctx, "executing staged write",
			slog.String("operation", "RequestContext.Commit"),
			slog.Int("step", i+1),
			slog.Int("total", len(queue)),
			slog.String("action", q.action.Description()),
		)

		if err := q.action.Execute(ctx); err != nil {
			logger.ErrorContext(ctx, "staged write failed, rolling back",
				slog.String("operation", "RequestContext.Commit"),
				slog.Int("failed_step", i+1),
				slog.String("action", q.action.Description()),
				slog.Any("error", err),
			)
			rollback(ctx, queue[:i], logger)
			return fmt.Errorf("executing %s: %w", q.action.Description(), err)
		}
	}

	return nil
}

func rollback(ctx context.Context, done []queued, logger *slog.Logger) {
	for i := len(done) - 1; i >= 0; i-- {
		a := done[i].action
		if err := a.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "rollback failed",
				slog.String("operation", "RequestContext.Commit"),
				slog.Int("step", i+1),
				slog.String("action", a.Description()),
				slog.Any("error", err),
			)
		}
	}
}
