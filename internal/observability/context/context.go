package context

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	batchIDKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithBatchID tags ctx with the import batch being processed.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey, batchID)
}

func BatchIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(batchIDKey).(string)
	return v
}

// Gin context keys set by handlers and read by the request middlewares.
const (
	GinKeyRequestID = "request_id"
	GinKeyDataset   = "dataset"
	GinKeyBatchID   = "batch_id"
	GinKeyFileName  = "file_name"
)
