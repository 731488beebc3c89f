package rest

import "listing-service/internal/core/domain"

// ListResponse is the paginated envelope returned by every list endpoint.
type ListResponse struct {
	Items      []interface{}     `json:"items"`
	Filters    domain.Facets     `json:"filters"`
	Pagination domain.Pagination `json:"pagination"`
}

func newListResponse(res *domain.ListResult) ListResponse {
	items := res.Items
	if items == nil {
		items = []interface{}{}
	}
	filters := res.Filters
	if filters == nil {
		filters = domain.Facets{}
	}
	return ListResponse{Items: items, Filters: filters, Pagination: res.Pagination}
}

type VerificationRequest struct {
	Verified *bool `json:"verified"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
