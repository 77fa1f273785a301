package mq

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

type TypedHandlerFunc func(ctx context.Context, data json.RawMessage) error

type Router struct {
	routes map[string]TypedHandlerFunc
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		routes: make(map[string]TypedHandlerFunc),
		logger: logger,
	}
}

func (r *Router) Register(eventType string, h TypedHandlerFunc) {
	r.routes[eventType] = h
}

func (r *Router) Handle(ctx context.Context, evt Event) error {
	h, ok := r.routes[evt.Type]
	if !ok {
		r.logger.Warn("no handler for event", zap.String("type", evt.Type))
		return nil
	}

	// 可选：panic 防御
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("router panic recovered", zap.Any("panic", rec))
		}
	}()

	// 真正处理事件
	return h(ctx, evt.Data)
}
