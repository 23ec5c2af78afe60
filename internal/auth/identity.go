// Package auth carries the authenticated caller through request contexts.
package auth

import "context"

// Identity is the authenticated user attached to a request. Handlers
// and services read it instead of re-parsing the token.
type Identity struct {
	ID        string
	Email     string
	IsPremium bool
}

type contextKey struct{}

func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the caller identity, or ok=false for anonymous
// requests.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
