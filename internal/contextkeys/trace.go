package contextkeys

import "context"

type traceIDKeyType struct{}

var traceIDKey = traceIDKeyType{}

// ContextWithTraceID stores the trace id in ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext returns the trace id or an empty string.
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}
