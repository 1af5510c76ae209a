package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Zap logs every lifecycle step at debug level and failed steps at warn.
func Zap(logger *zap.Logger) Trace {
	return func(ctx context.Context, step string, subjects ...any) func(...any) {
		start := time.Now()
		return func(results ...any) {
			fields := []zap.Field{
				zap.String("step", step),
				zap.Duration("elapsed", time.Since(start)),
			}
			if len(subjects) > 0 {
				if named, ok := subjects[0].(interface{ DisplayName() string }); ok {
					fields = append(fields, zap.String("subject", named.DisplayName()))
				}
			}
			if err := firstError(results); err != nil {
				logger.Warn("lifecycle step failed", append(fields, zap.Error(err))...)
				return
			}
			logger.Debug("lifecycle step", fields...)
		}
	}
}
