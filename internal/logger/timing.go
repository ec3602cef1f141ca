// internal/logger/timing.go
package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID stores the request id for downstream log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Time logs the duration of op at debug level when the returned func runs.
//
//	defer logger.Time(ctx, log, "geocode.cache.GetMany")(&err)
func Time(ctx context.Context, log *zap.Logger, op string) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		fields := []zap.Field{
			zap.String("op", op),
			zap.Duration("dur", time.Since(start)),
		}
		if id := RequestID(ctx); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if errp != nil && *errp != nil {
			log.Warn("operation failed", append(fields, zap.Error(*errp))...)
			return
		}
		log.Debug("operation done", fields...)
	}
}
