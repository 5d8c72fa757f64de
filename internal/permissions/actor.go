package permissions

import (
	"context"
	"fmt"
	"strings"
)

// Domain selects which table a query is evaluated against.
type Domain string

const (
	DomainFront Domain = "front"
	DomainBack  Domain = "back"
)

// ParseDomain accepts "front" or "back" (case-insensitive).
func ParseDomain(value string) (Domain, error) {
	switch Domain(strings.ToLower(strings.TrimSpace(value))) {
	case DomainFront:
		return DomainFront, nil
	case DomainBack:
		return DomainBack, nil
	default:
		return "", fmt.Errorf("permission: unknown domain %q", value)
	}
}

// Actor is the authenticated principal a query is evaluated for.
type Actor struct {
	UserID    string `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	TableName string `json:"tableName,omitempty"`
}

// IsZero reports whether no identity is present.
func (a Actor) IsZero() bool {
	return a == Actor{}
}

type actorContextKey struct{}

// WithActor attaches the actor to ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the actor attached by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
