package redis_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/redis/go-redis/v9"
)

const (
	facetKeyPrefix   = "listing-service:facets:"
	geocodeKeyPrefix = "listing-service:geocode:"
)

func facetKey(catalog string) string { return facetKeyPrefix + catalog }

func geocodeKey(query string) string { return geocodeKeyPrefix + query }

// FacetCache stores facet sets per catalog as JSON strings with a TTL.
type FacetCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

var _ port.FacetCachePort = (*FacetCache)(nil)

func NewFacetCache(rdb redis.Cmdable, ttl time.Duration) *FacetCache {
	return &FacetCache{rdb: rdb, ttl: ttl}
}

func (c *FacetCache) Get(ctx context.Context, catalog string) (domain.Facets, bool, error) {
	var facets domain.Facets
	ok, err := getJSON(ctx, c.rdb, facetKey(catalog), &facets)
	if err != nil || !ok {
		return nil, false, err
	}
	return facets, true, nil
}

func (c *FacetCache) Set(ctx context.Context, catalog string, facets domain.Facets) error {
	return setJSON(ctx, c.rdb, facetKey(catalog), facets, c.ttl)
}

func (c *FacetCache) Invalidate(ctx context.Context, catalogs ...string) error {
	if len(catalogs) == 0 {
		return nil
	}
	keys := make([]string, len(catalogs))
	for i, name := range catalogs {
		keys[i] = facetKey(name)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate facets: %w", err)
	}
	return nil
}

// GeocodeCache stores upstream geocoder answers by normalised query.
type GeocodeCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

var _ port.GeocodeCachePort = (*GeocodeCache)(nil)

func NewGeocodeCache(rdb redis.Cmdable, ttl time.Duration) *GeocodeCache {
	return &GeocodeCache{rdb: rdb, ttl: ttl}
}

func (c *GeocodeCache) Get(ctx context.Context, query string) ([]domain.GeoCandidate, bool, error) {
	var candidates []domain.GeoCandidate
	ok, err := getJSON(ctx, c.rdb, geocodeKey(query), &candidates)
	if err != nil || !ok {
		return nil, false, err
	}
	return candidates, true, nil
}

func (c *GeocodeCache) Set(ctx context.Context, query string, candidates []domain.GeoCandidate) error {
	return setJSON(ctx, c.rdb, geocodeKey(query), candidates, c.ttl)
}

func getJSON(ctx context.Context, rdb redis.Cmdable, key string, dest interface{}) (bool, error) {
	data, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, rdb redis.Cmdable, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
