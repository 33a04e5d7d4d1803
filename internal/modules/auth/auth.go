package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/georgemunganga/vendor-categories/internal/modules/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	ParseToken(tokenString string) (*Actor, error)
}

// Actor is the authenticated identity performing a request.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the actor may edit any account.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == user.RoleAdmin
}

// UserIDOrNil returns the actor's id, or uuid.Nil for an anonymous request.
func (a *Actor) UserIDOrNil() uuid.UUID {
	if a == nil {
		return uuid.Nil
	}
	return a.UserID
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by the Authenticate middleware.
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(*Actor)
	return actor, ok && actor != nil
}
