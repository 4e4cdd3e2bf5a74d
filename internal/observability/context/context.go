package context

import (
	"context"
	"strings"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	ownerIDKey   ctxKey = "owner_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithOwnerID records the authenticated owner for log correlation.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, strings.TrimSpace(ownerID))
}

func OwnerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(ownerIDKey).(string)
	return value
}
