// Package context carries request-scoped identifiers used for log and span
// enrichment.
package context

import (
	"context"
	"strings"
)

type requestIDKey struct{}
type actorKey struct{}

type actor struct {
	id   string
	role string
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithActor records the member acting on the request, as asserted by the
// upstream gateway.
func WithActor(ctx context.Context, memberID, role string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor{
		id:   strings.TrimSpace(memberID),
		role: strings.TrimSpace(role),
	})
}

func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	if v, ok := ctx.Value(actorKey{}).(actor); ok {
		return v.id, v.role
	}
	return "", ""
}
