package provider

import (
	"context"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

type contextKey struct{}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user *auth.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the authenticated user placed by the middleware.
func UserFromContext(ctx context.Context) (*auth.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*auth.User)
	return user, ok
}
