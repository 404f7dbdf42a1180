package service

import "context"

// SystemActor is recorded on events raised without an identified user.
const SystemActor = "system"

type actorKey struct{}

// WithActor returns a context carrying the user performing the operation.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting user, or SystemActor.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return SystemActor
}
