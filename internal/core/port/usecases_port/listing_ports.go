package usecases_port

import (
	"context"

	"listing-service/internal/core/domain"

	"github.com/google/uuid"
)

type GetListingUseCasePort interface {
	Execute(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.Listing, error)
}

type CreateListingUseCasePort interface {
	Execute(ctx context.Context, principal *domain.Principal, listing *domain.Listing) (*domain.Listing, error)
}

type UpdateListingUseCasePort interface {
	Execute(ctx context.Context, principal *domain.Principal, id uuid.UUID, listing *domain.Listing) (*domain.Listing, error)
}

type SetVerificationUseCasePort interface {
	Execute(ctx context.Context, principal *domain.Principal, id uuid.UUID, verified bool) (*domain.Listing, error)
}

type RecordEngagementUseCasePort interface {
	Execute(ctx context.Context, event domain.EngagementEvent) error
}
