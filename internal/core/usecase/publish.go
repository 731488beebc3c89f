package usecase

import (
	"context"

	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

// publishSaved reports a committed write. The write is not rolled back if publishing fails.
func publishSaved(ctx context.Context, logger port.LoggerPort, events port.ListingEventsPort, listing *domain.Listing, action domain.SaveAction) {
	if events == nil {
		return
	}
	if err := events.PublishListingSaved(ctx, domain.NewListingSavedEvent(listing, action)); err != nil {
		logger.Warn("Failed to publish listing.saved event", port.Fields{
			"listing_id": listing.ID.String(),
			"action":     string(action),
			"error":      err.Error(),
		})
	}
}

func invalidateFacets(ctx context.Context, logger port.LoggerPort, cache port.FacetCachePort, kind domain.Kind) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, domain.CatalogForKind(kind)); err != nil {
		logger.Warn("Failed to invalidate facet cache", port.Fields{"error": err.Error()})
	}
}
