package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
)

type CreateListingUseCase struct {
	store    port.ListingStorePort
	profiles port.ProfileStorePort
	events   port.ListingEventsPort
	now      func() time.Time
}

func NewCreateListingUseCase(store port.ListingStorePort, profiles port.ProfileStorePort, events port.ListingEventsPort) *CreateListingUseCase {
	return &CreateListingUseCase{store: store, profiles: profiles, events: events, now: time.Now}
}

// Execute persists a new listing owned by the caller. New listings start unverified.
func (uc *CreateListingUseCase) Execute(ctx context.Context, principal *domain.Principal, listing *domain.Listing) (*domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "CreateListing"})

	if principal == nil {
		return nil, domain.ErrForbidden
	}
	ucLogger.Info("Use case started", port.Fields{"user_id": principal.UserID.String(), "kind": string(listing.Kind)})

	listing.Normalize()
	if err := listing.Validate(); err != nil {
		ucLogger.Warn("Listing failed validation", port.Fields{"error": err.Error()})
		return nil, err
	}

	if listing.Kind == domain.KindProject {
		if err := requireVerifiedBuilder(ctx, uc.profiles, principal); err != nil {
			ucLogger.Warn("Project rejected", port.Fields{"error": err.Error()})
			return nil, err
		}
	}

	now := uc.now().UTC()
	listing.ID = uuid.New()
	listing.OwnerID = principal.UserID
	listing.Verified = false
	listing.Counters = domain.Counters{}
	listing.CreatedAt = now
	listing.UpdatedAt = now

	if err := uc.store.Create(ctx, listing); err != nil {
		ucLogger.Error("Failed to create listing", err, nil)
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	publishSaved(ctx, ucLogger, uc.events, listing, domain.ActionCreated)

	ucLogger.Info("Use case finished successfully", port.Fields{"listing_id": listing.ID.String()})
	return listing, nil
}

type UpdateListingUseCase struct {
	store    port.ListingStorePort
	profiles port.ProfileStorePort
	events   port.ListingEventsPort
	cache    port.FacetCachePort
	now      func() time.Time
}

func NewUpdateListingUseCase(store port.ListingStorePort, profiles port.ProfileStorePort, events port.ListingEventsPort, cache port.FacetCachePort) *UpdateListingUseCase {
	return &UpdateListingUseCase{store: store, profiles: profiles, events: events, cache: cache, now: time.Now}
}

// Execute replaces the listing document. Lifecycle metadata (owner,
// verification, counters, creation time) is kept from the stored version.
func (uc *UpdateListingUseCase) Execute(ctx context.Context, principal *domain.Principal, id uuid.UUID, listing *domain.Listing) (*domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "UpdateListing", "listing_id": id.String()})
	ucLogger.Info("Use case started", nil)

	if principal == nil {
		return nil, domain.ErrForbidden
	}

	existing, err := uc.store.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrListingNotFound) {
			ucLogger.Error("Failed to load listing", err, nil)
		}
		return nil, err
	}
	if !existing.IsOwnedBy(principal) {
		ucLogger.Warn("Update attempted by non-owner", port.Fields{"user_id": principal.UserID.String()})
		return nil, domain.ErrForbidden
	}
	if listing.Kind == "" {
		listing.Kind = existing.Kind
	}
	if listing.Kind != existing.Kind {
		return nil, domain.ErrKindMismatch
	}

	listing.Normalize()
	if err := listing.Validate(); err != nil {
		ucLogger.Warn("Listing failed validation", port.Fields{"error": err.Error()})
		return nil, err
	}

	if listing.Kind == domain.KindProject && !principal.IsAdmin() {
		if err := requireVerifiedBuilder(ctx, uc.profiles, principal); err != nil {
			return nil, err
		}
	}

	listing.ID = existing.ID
	listing.OwnerID = existing.OwnerID
	listing.Verified = existing.Verified
	listing.Counters = existing.Counters
	listing.CreatedAt = existing.CreatedAt
	listing.UpdatedAt = uc.now().UTC()

	if err := uc.store.Replace(ctx, listing); err != nil {
		if !errors.Is(err, domain.ErrListingNotFound) {
			ucLogger.Error("Failed to replace listing", err, nil)
			return nil, fmt.Errorf("failed to update listing: %w", err)
		}
		return nil, err
	}

	if listing.Verified {
		invalidateFacets(ctx, ucLogger, uc.cache, listing.Kind)
	}
	publishSaved(ctx, ucLogger, uc.events, listing, domain.ActionUpdated)

	ucLogger.Info("Use case finished successfully", nil)
	return listing, nil
}

func requireVerifiedBuilder(ctx context.Context, profiles port.ProfileStorePort, principal *domain.Principal) error {
	profile, err := profiles.GetByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.ErrNotVerifiedBuilder
		}
		return fmt.Errorf("failed to load builder profile: %w", err)
	}
	if !profile.IsVerifiedBuilder() {
		return domain.ErrNotVerifiedBuilder
	}
	return nil
}
