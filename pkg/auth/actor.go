package auth

import (
	"context"

	pkgerrors "questnote/pkg/errors"
)

// Actor identifies who is driving the current request or UI session.
// Authenticated actors carry a durable identity id; anonymous actors may
// carry a previously-issued local id.
type Actor struct {
	ID            string
	LocalID       string
	Email         string
	Authenticated bool
}

type contextKey string

const actorContextKey contextKey = "questnote.actor"

// SetActorInContext attaches the actor to the context.
func SetActorInContext(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// GetActorFromContext extracts the actor placed by the auth middleware.
func GetActorFromContext(ctx context.Context) (*Actor, error) {
	actor, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok || actor == nil {
		return nil, pkgerrors.NewUnauthorizedError("no actor in context")
	}
	return actor, nil
}
