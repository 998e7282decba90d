package types

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID attaches the correlation ID assigned by the request ID
// middleware.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the correlation ID, or "" outside a request scope.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
