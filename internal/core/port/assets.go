package port

import (
	"context"

	"listing-service/internal/core/domain"
)

// AssetStoragePort persists an uploaded image and returns its public URL.
type AssetStoragePort interface {
	Save(ctx context.Context, folder string, file domain.MediaFile) (string, error)
}

// GeocodeProviderPort is the upstream geocoding service.
type GeocodeProviderPort interface {
	Search(ctx context.Context, query string) ([]domain.GeoCandidate, error)
}
