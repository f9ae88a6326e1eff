// Package context carries request-scoped identifiers that logging needs
// but that the application layer must not depend on.
package context

import "context"

type key int

const (
	requestIDKey key = iota
	actorIDKey
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	return value(ctx, requestIDKey)
}

// WithActorID records the authenticated account behind the request.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actorIDKey, id)
}

func GetActorID(ctx context.Context) string {
	return value(ctx, actorIDKey)
}

func value(ctx context.Context, k key) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(k).(string)
	return s
}
