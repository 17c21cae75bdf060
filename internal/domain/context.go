package domain

import "context"

type ctxKey int

const (
	principalKey ctxKey = iota
	elevatedKey
)

// WithPrincipal stores the authenticated caller in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the authenticated caller, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// Elevated marks ctx so data access uses the service role instead of the
// caller's token. Only gestor-gated operations and background jobs use it.
func Elevated(ctx context.Context) context.Context {
	return context.WithValue(ctx, elevatedKey, true)
}

// IsElevated reports whether ctx was marked with Elevated.
func IsElevated(ctx context.Context) bool {
	v, _ := ctx.Value(elevatedKey).(bool)
	return v
}
