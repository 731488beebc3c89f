package contextkeys

import (
	"context"

	"listing-service/internal/core/domain"
)

type principalKeyType struct{}

var principalKey = principalKeyType{}

// ContextWithPrincipal stores the authenticated caller in ctx.
func ContextWithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Principal)
	return p, ok && p != nil
}
