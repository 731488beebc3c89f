package usecases_port

import (
	"context"

	"listing-service/internal/core/domain"
)

type UploadAssetUseCasePort interface {
	Execute(ctx context.Context, principal *domain.Principal, folder string, file domain.MediaFile) (string, error)
}

type GeocodeUseCasePort interface {
	Execute(ctx context.Context, query string) ([]domain.GeoCandidate, error)
}
