package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SaveAction string

const (
	ActionCreated             SaveAction = "created"
	ActionUpdated             SaveAction = "updated"
	ActionVerificationChanged SaveAction = "verification_changed"
)

// ListingSavedEvent is published after every successful write.
type ListingSavedEvent struct {
	ListingID  uuid.UUID  `json:"listing_id"`
	Kind       Kind       `json:"kind"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Action     SaveAction `json:"action"`
	Verified   bool       `json:"verified"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func NewListingSavedEvent(l *Listing, action SaveAction) ListingSavedEvent {
	return ListingSavedEvent{
		ListingID:  l.ID,
		Kind:       l.Kind,
		OwnerID:    l.OwnerID,
		Action:     action,
		Verified:   l.Verified,
		OccurredAt: time.Now().UTC(),
	}
}

type CounterField string

const (
	CounterViews     CounterField = "views"
	CounterFavorites CounterField = "favorites"
	CounterInquiries CounterField = "inquiries"
)

type EngagementType string

const (
	EngagementView       EngagementType = "view"
	EngagementFavorite   EngagementType = "favorite"
	EngagementUnfavorite EngagementType = "unfavorite"
	EngagementInquiry    EngagementType = "inquiry"
)

// EngagementEvent is produced by other services when users interact with a listing.
type EngagementEvent struct {
	ListingID  uuid.UUID      `json:"listing_id"`
	Type       EngagementType `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Counter maps the event to the counter it moves and by how much.
func (e EngagementEvent) Counter() (CounterField, int64, error) {
	switch e.Type {
	case EngagementView:
		return CounterViews, 1, nil
	case EngagementFavorite:
		return CounterFavorites, 1, nil
	case EngagementUnfavorite:
		return CounterFavorites, -1, nil
	case EngagementInquiry:
		return CounterInquiries, 1, nil
	default:
		return "", 0, fmt.Errorf("%w: unknown type %q", ErrInvalidEngagement, e.Type)
	}
}
