package usecase

import (
	"context"
	"fmt"
	"strings"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

type GeocodeUseCase struct {
	provider port.GeocodeProviderPort
	cache    port.GeocodeCachePort
}

// NewGeocodeUseCase creates the geocoding proxy. cache may be nil.
func NewGeocodeUseCase(provider port.GeocodeProviderPort, cache port.GeocodeCachePort) *GeocodeUseCase {
	return &GeocodeUseCase{provider: provider, cache: cache}
}

func normalizeGeocodeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// Execute returns zero or more candidates for a free-text address.
func (uc *GeocodeUseCase) Execute(ctx context.Context, query string) ([]domain.GeoCandidate, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	key := normalizeGeocodeQuery(query)
	ucLogger := logger.WithFields(port.Fields{"use_case": "Geocode", "query": key})

	if key == "" {
		return []domain.GeoCandidate{}, nil
	}

	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, key)
		if err != nil {
			ucLogger.Warn("Geocode cache read failed", port.Fields{"error": err.Error()})
		} else if ok {
			return cached, nil
		}
	}

	candidates, err := uc.provider.Search(ctx, key)
	if err != nil {
		ucLogger.Error("Upstream geocoder failed", err, nil)
		return nil, fmt.Errorf("geocode %q: %w", key, err)
	}
	if candidates == nil {
		candidates = []domain.GeoCandidate{}
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, candidates); err != nil {
			ucLogger.Warn("Geocode cache write failed", port.Fields{"error": err.Error()})
		}
	}

	ucLogger.Info("Geocode resolved", port.Fields{"candidates": len(candidates)})
	return candidates, nil
}
