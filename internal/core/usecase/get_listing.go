package usecase

import (
	"context"
	"errors"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
)

type GetListingUseCase struct {
	store port.ListingStorePort
}

func NewGetListingUseCase(store port.ListingStorePort) *GetListingUseCase {
	return &GetListingUseCase{store: store}
}

// Execute returns a listing. Unverified listings are visible only to their
// owner and to admins; everybody else gets ErrListingNotFound.
func (uc *GetListingUseCase) Execute(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetListing", "listing_id": id.String()})

	listing, err := uc.store.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrListingNotFound) {
			ucLogger.Error("Failed to load listing", err, nil)
		}
		return nil, err
	}

	if !listing.Verified && !listing.IsOwnedBy(principal) {
		ucLogger.Debug("Hiding unverified listing", nil)
		return nil, domain.ErrListingNotFound
	}
	return listing, nil
}
