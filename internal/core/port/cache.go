package port

import (
	"context"

	"listing-service/internal/core/domain"
)

// FacetCachePort caches facet sets per catalog.
type FacetCachePort interface {
	Get(ctx context.Context, catalog string) (domain.Facets, bool, error)
	Set(ctx context.Context, catalog string, facets domain.Facets) error
	Invalidate(ctx context.Context, catalogs ...string) error
}

// GeocodeCachePort caches upstream geocoder answers by normalised query.
type GeocodeCachePort interface {
	Get(ctx context.Context, query string) ([]domain.GeoCandidate, bool, error)
	Set(ctx context.Context, query string, candidates []domain.GeoCandidate) error
}
