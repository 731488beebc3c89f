package port

import (
	"context"

	"listing-service/internal/core/domain"
)

// TokenVerifierPort turns a bearer token into a principal.
type TokenVerifierPort interface {
	Verify(ctx context.Context, token string) (*domain.Principal, error)
}
