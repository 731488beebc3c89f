package port

import (
	"context"
	"time"

	"listing-service/internal/core/domain"

	"github.com/google/uuid"
)

// ListingStorePort is the write side of the listing store.
type ListingStorePort interface {
	Create(ctx context.Context, listing *domain.Listing) error
	// Replace overwrites the whole document by id. Returns domain.ErrListingNotFound if absent.
	Replace(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool, at time.Time) (*domain.Listing, error)
	// IncrementCounter moves one engagement counter; the result never drops below zero.
	IncrementCounter(ctx context.Context, id uuid.UUID, field domain.CounterField, delta int64) error
}

// ProfileStorePort reads the agents and builders directory.
type ProfileStorePort interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

// CatalogStorePort executes backend-neutral list queries.
type CatalogStorePort interface {
	Count(ctx context.Context, q domain.ListQuery) (int64, error)
	FindPage(ctx context.Context, q domain.ListQuery) ([]interface{}, error)
	Distinct(ctx context.Context, q domain.ListQuery, facet domain.FacetSpec) ([]string, error)
}

// StorePort is everything a store backend provides.
type StorePort interface {
	ListingStorePort
	ProfileStorePort
	CatalogStorePort
}
