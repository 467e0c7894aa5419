package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/applytrack/pkg/logger"
)

// LoggerExtractor adds the request id to every log record written with the
// request context.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
