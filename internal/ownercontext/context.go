package ownercontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// OwnerContextKey is the request context key for the authenticated owner ID.
type OwnerContextKey struct{}

// WithOwnerID stores the owner ID in the context.
func WithOwnerID(ctx context.Context, ownerID snowflake.ID) context.Context {
	return context.WithValue(ctx, OwnerContextKey{}, ownerID)
}

// OwnerIDFromContext returns the owner ID from context, if set.
func OwnerIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(OwnerContextKey{}).(snowflake.ID)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// ActorContextKey is the request context key for the authenticated API key ID.
type ActorContextKey struct{}

// WithActor records which API key is acting on behalf of the owner.
func WithActor(ctx context.Context, apiKeyID string) context.Context {
	return context.WithValue(ctx, ActorContextKey{}, apiKeyID)
}

// ActorFromContext returns the acting API key ID, or "" for system work.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(ActorContextKey{}).(string)
	return actor
}
