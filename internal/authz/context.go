package authz

import (
	"context"

	"github.com/thenoetrevino/tablero/internal/types"
)

type actorKey struct{}

// WithActor returns a context carrying the user performing the request
func WithActor(ctx context.Context, user types.UserID) context.Context {
	return context.WithValue(ctx, actorKey{}, user)
}

// ActorFrom returns the user stored by WithActor, or "" when none is set
func ActorFrom(ctx context.Context) types.UserID {
	user, _ := ctx.Value(actorKey{}).(types.UserID)
	return user
}
