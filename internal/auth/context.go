package auth

import "context"

// Principal captures the authenticated identity propagated through the
// request context. It is resolved once per request and never mutated.
type Principal struct {
	// PID is the principal identifier returned by the SSO ticket exchange.
	PID string
	// Role is the RBAC role resolved for the principal.
	Role string
}

type principalContextKey struct{}

// SetPrincipal stores the authenticated principal on the context for downstream consumers.
func SetPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext retrieves the authenticated principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(Principal)
	return principal, ok
}
