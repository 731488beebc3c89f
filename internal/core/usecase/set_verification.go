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

type SetVerificationUseCase struct {
	store  port.ListingStorePort
	events port.ListingEventsPort
	cache  port.FacetCachePort
	now    func() time.Time
}

func NewSetVerificationUseCase(store port.ListingStorePort, events port.ListingEventsPort, cache port.FacetCachePort) *SetVerificationUseCase {
	return &SetVerificationUseCase{store: store, events: events, cache: cache, now: time.Now}
}

// Execute is the moderation gate: only admins flip the verified flag.
func (uc *SetVerificationUseCase) Execute(ctx context.Context, principal *domain.Principal, id uuid.UUID, verified bool) (*domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "SetVerification",
		"listing_id": id.String(),
		"verified":   verified,
	})

	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	ucLogger.Info("Use case started", nil)

	listing, err := uc.store.SetVerified(ctx, id, verified, uc.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, err
		}
		ucLogger.Error("Failed to update verification", err, nil)
		return nil, fmt.Errorf("failed to update verification: %w", err)
	}

	invalidateFacets(ctx, ucLogger, uc.cache, listing.Kind)
	publishSaved(ctx, ucLogger, uc.events, listing, domain.ActionVerificationChanged)

	ucLogger.Info("Use case finished successfully", nil)
	return listing, nil
}
