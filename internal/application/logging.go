package application

import (
	"context"
	"log/slog"

	"github.com/example/conference-assistant/internal/logging"
)

// loggerFrom resolves the logger for an operation: a logger carried on the
// context wins over the coordinator's own, so callers can scope attributes
// per request.
func (c *Coordinator) loggerFrom(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return c.logger
}
