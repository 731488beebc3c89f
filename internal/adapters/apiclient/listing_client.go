package apiclient_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// ListingClient implements port.ListingWriterPort against the listings API.
type ListingClient struct {
	*client
}

func NewListingClient(cfg Config) (*ListingClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	// Writes are never retried.
	c.http.RetryMax = 0
	return &ListingClient{client: c}, nil
}

func (c *ListingClient) Create(ctx context.Context, cred port.Credential, listing *domain.Listing) (*domain.Listing, error) {
	return c.send(ctx, cred, http.MethodPost, c.baseURL+"/listings", listing)
}

func (c *ListingClient) Update(ctx context.Context, cred port.Credential, id uuid.UUID, listing *domain.Listing) (*domain.Listing, error) {
	return c.send(ctx, cred, http.MethodPut, c.baseURL+"/listings/"+id.String(), listing)
}

// Get fetches a listing for editing.
func (c *ListingClient) Get(ctx context.Context, cred port.Credential, id uuid.UUID) (*domain.Listing, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/listings/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	var out domain.Listing
	if err := c.do(ctx, req, cred, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ListingClient) send(ctx context.Context, cred port.Credential, method, url string, listing *domain.Listing) (*domain.Listing, error) {
	body, err := json.Marshal(listing)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out domain.Listing
	if err := c.do(ctx, req, cred, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
