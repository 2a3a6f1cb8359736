package tracing

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const (
	traceIDCtxKey ctxKey = iota
	prefixCtxKey
)

func WithTraceID(ctx context.Context) context.Context {
	if _, ok := ctx.Value(traceIDCtxKey).(string); ok {
		return ctx
	}

	traceID := generateTraceID()

	return context.WithValue(ctx, traceIDCtxKey, traceID)
}

func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(traceIDCtxKey).(string)
	if !ok {
		return ""
	}

	return traceID
}

// WithPrefix tags ctx with the prefix being swept.
func WithPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, prefixCtxKey, prefix)
}

func GetPrefix(ctx context.Context) string {
	prefix, _ := ctx.Value(prefixCtxKey).(string)
	return prefix
}

func generateTraceID() string {
	v, _ := uuid.NewV7()
	return v.String()
}
