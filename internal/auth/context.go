// ABOUTME: Session identity propagated through context to every agent invocation.
// ABOUTME: Read-only to agents; used to personalize outgoing artifacts without re-asking.

package auth

import "context"

// UserContext is the immutable per-session identity attached to every agent
// invocation.
type UserContext struct {
	UserID   string
	FullName string
}

// userContextKey is the key type for storing UserContext in context.Context.
type userContextKey struct{}

// WithUser returns a new context with the UserContext attached.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the UserContext from the context, returning nil
// if not present.
func UserFromContext(ctx context.Context) *UserContext {
	val := ctx.Value(userContextKey{})
	if val == nil {
		return nil
	}
	user, ok := val.(*UserContext)
	if !ok {
		return nil
	}
	return user
}
