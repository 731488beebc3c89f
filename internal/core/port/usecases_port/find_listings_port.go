package usecases_port

import (
	"context"
	"net/url"

	"listing-service/internal/core/domain"
)

type FindListingsUseCasePort interface {
	Execute(ctx context.Context, catalog string, params url.Values) (*domain.ListResult, error)
}
