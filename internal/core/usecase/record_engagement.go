package usecase

import (
	"context"
	"errors"
	"fmt"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
)

type RecordEngagementUseCase struct {
	store port.ListingStorePort
}

func NewRecordEngagementUseCase(store port.ListingStorePort) *RecordEngagementUseCase {
	return &RecordEngagementUseCase{store: store}
}

// Execute moves the counter that matches the event. Events for unknown
// listings are dropped without error so they are not retried forever.
func (uc *RecordEngagementUseCase) Execute(ctx context.Context, event domain.EngagementEvent) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "RecordEngagement",
		"listing_id": event.ListingID.String(),
		"type":       string(event.Type),
	})

	if event.ListingID == uuid.Nil {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidEngagement)
	}
	field, delta, err := event.Counter()
	if err != nil {
		return err
	}

	if err := uc.store.IncrementCounter(ctx, event.ListingID, field, delta); err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			ucLogger.Warn("Engagement for unknown listing dropped", nil)
			return nil
		}
		ucLogger.Error("Failed to increment counter", err, nil)
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}

	ucLogger.Debug("Counter updated", port.Fields{"counter": string(field), "delta": delta})
	return nil
}
