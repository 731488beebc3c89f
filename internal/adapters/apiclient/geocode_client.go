package apiclient_adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"listing-service/internal/core/domain"

	"github.com/hashicorp/go-retryablehttp"
)

// GeocodeClient implements port.GeocoderPort against GET /geocode.
type GeocodeClient struct {
	*client
}

func NewGeocodeClient(cfg Config) (*GeocodeClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GeocodeClient{client: c}, nil
}

func (c *GeocodeClient) Geocode(ctx context.Context, query string) ([]domain.GeoCandidate, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/geocode?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	var out []domain.GeoCandidate
	if err := c.do(ctx, req, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}
