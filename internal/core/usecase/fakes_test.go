package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"listing-service/internal/core/domain"

	"github.com/google/uuid"
)

// memoryStore evaluates ListQuery against JSON documents held in memory.
type memoryStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*domain.Listing
	profiles []*domain.Profile

	countErr      error
	pageErr       error
	distinctErr   map[string]error
	createErr     error
	distinctCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{listings: map[uuid.UUID]*domain.Listing{}, distinctErr: map[string]error{}}
}

func (s *memoryStore) Create(_ context.Context, l *domain.Listing) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.listings[l.ID] = &cp
	return nil
}

func (s *memoryStore) Replace(_ context.Context, l *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[l.ID]; !ok {
		return domain.ErrListingNotFound
	}
	cp := *l
	s.listings[l.ID] = &cp
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *memoryStore) SetVerified(_ context.Context, id uuid.UUID, verified bool, at time.Time) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	l.Verified = verified
	l.UpdatedAt = at
	cp := *l
	return &cp, nil
}

func (s *memoryStore) IncrementCounter(_ context.Context, id uuid.UUID, field domain.CounterField, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return domain.ErrListingNotFound
	}
	var c *int64
	switch field {
	case domain.CounterViews:
		c = &l.Counters.Views
	case domain.CounterFavorites:
		c = &l.Counters.Favorites
	default:
		c = &l.Counters.Inquiries
	}
	*c += delta
	if *c < 0 {
		*c = 0
	}
	return nil
}

func (s *memoryStore) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	for _, p := range s.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

type doc struct {
	id   string
	raw  interface{}
	tree map[string]interface{}
}

func (s *memoryStore) docs(c domain.Collection) []doc {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []doc
	add := func(id string, v interface{}) {
		b, _ := json.Marshal(v)
		var tree map[string]interface{}
		_ = json.Unmarshal(b, &tree)
		out = append(out, doc{id: id, raw: v, tree: tree})
	}
	if c == domain.CollectionProfiles {
		for _, p := range s.profiles {
			add(p.ID.String(), *p)
		}
	} else {
		for _, l := range s.listings {
			add(l.ID.String(), *l)
		}
	}
	return out
}

func lookup(tree map[string]interface{}, path string) interface{} {
	var cur interface{} = tree
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func matches(d doc, q domain.ListQuery) bool {
	for _, c := range q.Where() {
		v := lookup(d.tree, c.Path)
		switch c.Op {
		case domain.OpEq:
			if v != c.Value {
				return false
			}
		case domain.OpContains:
			list, _ := v.([]interface{})
			found := false
			for _, item := range list {
				if item == c.Value {
					found = true
				}
			}
			if !found {
				return false
			}
		case domain.OpGte, domain.OpLte:
			n, ok := v.(float64)
			if !ok {
				return false
			}
			if c.Op == domain.OpGte && n < c.Value.(float64) {
				return false
			}
			if c.Op == domain.OpLte && n > c.Value.(float64) {
				return false
			}
		}
	}
	if q.Search != "" {
		hit := false
		for _, f := range q.SearchFields {
			if s, ok := lookup(d.tree, f).(string); ok && strings.Contains(strings.ToLower(s), strings.ToLower(q.Search)) {
				hit = true
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func (s *memoryStore) filtered(q domain.ListQuery) []doc {
	var out []doc
	for _, d := range s.docs(q.Collection) {
		if matches(d, q) {
			out = append(out, d)
		}
	}
	return out
}

func (s *memoryStore) Count(_ context.Context, q domain.ListQuery) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return int64(len(s.filtered(q))), nil
}

func (s *memoryStore) FindPage(_ context.Context, q domain.ListQuery) ([]interface{}, error) {
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	docs := s.filtered(q)
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := lookup(docs[i].tree, q.Sort.Path), lookup(docs[j].tree, q.Sort.Path)
		if a == b {
			return docs[i].id < docs[j].id
		}
		less := false
		switch av := a.(type) {
		case float64:
			bv, _ := b.(float64)
			less = av < bv
		case string:
			bv, _ := b.(string)
			less = av < bv
		}
		if q.Sort.Desc {
			return !less
		}
		return less
	})
	skip := int(q.Skip())
	if skip >= len(docs) {
		return []interface{}{}, nil
	}
	end := skip + q.Limit
	if end > len(docs) {
		end = len(docs)
	}
	out := make([]interface{}, 0, end-skip)
	for _, d := range docs[skip:end] {
		out = append(out, d.raw)
	}
	return out, nil
}

func (s *memoryStore) Distinct(_ context.Context, q domain.ListQuery, f domain.FacetSpec) ([]string, error) {
	s.mu.Lock()
	s.distinctCalls++
	err := s.distinctErr[f.Name]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, d := range s.filtered(q) {
		switch v := lookup(d.tree, f.Path).(type) {
		case string:
			if v != "" {
				seen[v] = true
			}
		case []interface{}:
			for _, item := range v {
				if str, ok := item.(string); ok {
					seen[str] = true
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

type memoryFacetCache struct {
	data        map[string]domain.Facets
	invalidated []string
	getErr      error
}

func newMemoryFacetCache() *memoryFacetCache {
	return &memoryFacetCache{data: map[string]domain.Facets{}}
}

func (c *memoryFacetCache) Get(_ context.Context, catalog string) (domain.Facets, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	f, ok := c.data[catalog]
	return f, ok, nil
}

func (c *memoryFacetCache) Set(_ context.Context, catalog string, f domain.Facets) error {
	c.data[catalog] = f
	return nil
}

func (c *memoryFacetCache) Invalidate(_ context.Context, catalogs ...string) error {
	for _, name := range catalogs {
		delete(c.data, name)
		c.invalidated = append(c.invalidated, name)
	}
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []domain.ListingSavedEvent
	err    error
}

func (r *recordingEvents) PublishListingSaved(_ context.Context, e domain.ListingSavedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

var errStoreDown = errors.New("store unavailable")
