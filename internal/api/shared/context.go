package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// ContextKey is the type for context values set by the API layer.
type ContextKey string

// Context keys for various values.
const (
	// UserTokenContextKey is the context key for the authenticated user's token.
	UserTokenContextKey ContextKey = "userToken"

	// TraceIDKey is the key for the trace ID in the request context.
	TraceIDKey ContextKey = "traceID"

	// traceIDLength is the number of random bytes in a trace ID.
	traceIDLength = 16 // 32 hex characters
)

// SetTraceID adds a freshly generated trace ID to the context, used to
// correlate logs and error responses for one request.
func SetTraceID(ctx context.Context) context.Context {
	b := make([]byte, traceIDLength)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(b)
	return context.WithValue(ctx, TraceIDKey, hex.EncodeToString(b))
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SetUserToken stores the authenticated user's token in the context.
func SetUserToken(ctx context.Context, userToken string) context.Context {
	return context.WithValue(ctx, UserTokenContextKey, userToken)
}

// GetUserToken retrieves the authenticated user's token from the context.
// The second return value is false when no authenticated user is present.
func GetUserToken(ctx context.Context) (string, bool) {
	userToken, ok := ctx.Value(UserTokenContextKey).(string)
	if !ok || userToken == "" {
		return "", false
	}
	return userToken, true
}
