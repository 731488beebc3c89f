package port

import (
	"context"

	"listing-service/internal/core/domain"

	"github.com/google/uuid"
)

// Credential is an opaque bearer token passed explicitly to every
// authenticated collaborator call.
type Credential string

// AssetUploaderPort uploads one file to the asset collaborator.
type AssetUploaderPort interface {
	Upload(ctx context.Context, cred Credential, file domain.MediaFile, folder string) (string, error)
}

// GeocoderPort resolves a free-text address. The endpoint is public.
type GeocoderPort interface {
	Geocode(ctx context.Context, query string) ([]domain.GeoCandidate, error)
}

// ListingWriterPort performs the single create or replace call of a submission.
type ListingWriterPort interface {
	Create(ctx context.Context, cred Credential, listing *domain.Listing) (*domain.Listing, error)
	Update(ctx context.Context, cred Credential, id uuid.UUID, listing *domain.Listing) (*domain.Listing, error)
}
