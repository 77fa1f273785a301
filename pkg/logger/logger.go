package logger

import (
	"context"

	"go.uber.org/zap"

	"mailtriage/pkg/trace"
)

// NewLogger builds the production zap logger shared by all binaries.
func NewLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}

// WithTrace 带上 context 里的 trace_id，方便跨服务串联日志
func WithTrace(ctx context.Context, l *zap.Logger) *zap.Logger {
	if traceID := trace.FromContext(ctx); traceID != "" {
		return l.With(zap.String("trace_id", traceID))
	}
	return l
}
