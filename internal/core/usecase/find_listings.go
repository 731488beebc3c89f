package usecase

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"golang.org/x/sync/errgroup"
)

type FindListingsUseCase struct {
	store port.CatalogStorePort
	cache port.FacetCachePort
}

// NewFindListingsUseCase creates the query use case. cache may be nil.
func NewFindListingsUseCase(store port.CatalogStorePort, cache port.FacetCachePort) *FindListingsUseCase {
	return &FindListingsUseCase{store: store, cache: cache}
}

// Execute returns one page of verified records of the catalog, the total
// count for the same predicate and the facet sets of the whole catalog.
func (uc *FindListingsUseCase) Execute(ctx context.Context, catalog string, params url.Values) (*domain.ListResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "FindListings",
		"catalog":  catalog,
	})

	spec, err := domain.LookupCatalog(catalog)
	if err != nil {
		ucLogger.Warn("Unknown catalog requested", nil)
		return nil, err
	}

	q := spec.BuildQuery(params)
	ucLogger.Info("Use case started", port.Fields{
		"page":    q.Page,
		"limit":   q.Limit,
		"filters": len(q.Filters),
		"sort_by": q.Sort.Path,
	})

	// facets never fail the request, so they run outside the errgroup
	facetsCh := make(chan domain.Facets, 1)
	go func() {
		facetsCh <- uc.facets(ctx, spec, ucLogger)
	}()

	var (
		total int64
		items []interface{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.store.Count(gctx, q)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		page, err := uc.store.FindPage(gctx, q)
		if err != nil {
			return fmt.Errorf("find page: %w", err)
		}
		items = page
		return nil
	})
	if err := g.Wait(); err != nil {
		ucLogger.Error("Failed to query catalog", err, nil)
		return nil, fmt.Errorf("failed to query %s: %w", catalog, err)
	}

	if items == nil {
		items = []interface{}{}
	}

	result := &domain.ListResult{
		Items:      items,
		Filters:    <-facetsCh,
		Pagination: domain.NewPagination(total, q.Page, q.Limit),
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total":         total,
		"items_on_page": len(items),
	})
	return result, nil
}

// facets reads the cached facet set or computes every facet concurrently.
// A failing facet degrades to an empty list and the result is not cached.
func (uc *FindListingsUseCase) facets(ctx context.Context, spec domain.CatalogSpec, logger port.LoggerPort) domain.Facets {
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, spec.Name)
		if err != nil {
			logger.Warn("Facet cache read failed, computing facets", port.Fields{"error": err.Error()})
		} else if ok {
			logger.Debug("Facet cache hit", nil)
			return cached
		}
	}

	base := spec.FacetQuery()
	facets := make(domain.Facets, len(spec.Facets))
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		degraded bool
	)
	for _, f := range spec.Facets {
		wg.Add(1)
		go func(f domain.FacetSpec) {
			defer wg.Done()
			values, err := uc.store.Distinct(ctx, base, f)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Facet query failed, returning empty list", port.Fields{"facet": f.Name, "error": err.Error()})
				degraded = true
				values = nil
			}
			if values == nil {
				values = []string{}
			}
			facets[f.Name] = values
		}(f)
	}
	wg.Wait()

	if uc.cache != nil && !degraded {
		if err := uc.cache.Set(ctx, spec.Name, facets); err != nil {
			logger.Warn("Failed to write facet cache", port.Fields{"error": err.Error()})
		}
	}
	return facets
}
