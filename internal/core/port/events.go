package port

import (
	"context"

	"listing-service/internal/core/domain"
)

type ListingEventsPort interface {
	PublishListingSaved(ctx context.Context, event domain.ListingSavedEvent) error
}
