package domain

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type Collection string

const (
	CollectionListings Collection = "listings"
	CollectionProfiles Collection = "profiles"
)

type FieldType int

const (
	FieldText FieldType = iota
	FieldNumber
	FieldList
	FieldBool
	// FieldTime is an RFC 3339 timestamp. It is only used for sorting.
	FieldTime
)

type Operator string

const (
	OpEq       Operator = "eq"
	OpContains Operator = "contains"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
)

// Condition is a backend-neutral predicate on a dotted document path.
type Condition struct {
	Path  string
	Type  FieldType
	Op    Operator
	Value interface{}
}

// FilterSpec binds a request parameter to a condition on a path.
type FilterSpec struct {
	Param string
	Path  string
	Type  FieldType
	Op    Operator
}

// FacetSpec names a distinct-value set returned next to the results.
type FacetSpec struct {
	Name string
	Path string
	Type FieldType
}

type SortSpec struct {
	Path string
	Type FieldType
	Desc bool
}

// ListQuery is what a store adapter translates into SQL or BSON.
type ListQuery struct {
	Catalog    string
	Collection Collection

	Base    []Condition
	Filters []Condition

	Search       string
	SearchFields []string

	// Near holds geohash prefixes; a record matches if its geohash starts with any of them.
	Near []string

	Sort  SortSpec
	Page  int
	Limit int
}

// Skip is (page-1)*limit, saturating at math.MaxInt64 so a page far past the
// end still yields an empty page instead of a negative offset.
func (q ListQuery) Skip() int64 {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	pages, limit := int64(q.Page-1), int64(q.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

// Where returns the base predicate followed by the request filters.
func (q ListQuery) Where() []Condition {
	out := make([]Condition, 0, len(q.Base)+len(q.Filters))
	out = append(out, q.Base...)
	return append(out, q.Filters...)
}

// CatalogSpec describes one queryable kind: agents, builders, properties or projects.
type CatalogSpec struct {
	Name         string
	Collection   Collection
	Base         []Condition
	Filters      []FilterSpec
	SearchFields []string
	Sortable     map[string]FieldType
	DefaultSort  string
	Facets       []FacetSpec
	Proximity    bool
}

// BuildQuery parses request parameters. Unknown or malformed values are
// ignored rather than rejected.
func (c CatalogSpec) BuildQuery(params url.Values) ListQuery {
	q := ListQuery{
		Catalog:      c.Name,
		Collection:   c.Collection,
		Base:         c.Base,
		SearchFields: c.SearchFields,
		Page:         parsePositiveInt(params.Get("page"), DefaultPage),
		Limit:        parsePositiveInt(params.Get("limit"), DefaultLimit),
	}

	for _, f := range c.Filters {
		raw := trim(params.Get(f.Param))
		if raw == "" {
			continue
		}
		var value interface{} = raw
		switch f.Type {
		case FieldNumber:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				continue
			}
			value = n
		case FieldBool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				continue
			}
			value = b
		}
		q.Filters = append(q.Filters, Condition{Path: f.Path, Type: f.Type, Op: f.Op, Value: value})
	}

	q.Search = trim(params.Get("search"))

	if c.Proximity {
		q.Near = parseProximity(params)
	}

	sortBy := trim(params.Get("sortBy"))
	sortType, ok := c.Sortable[sortBy]
	if !ok {
		sortBy = c.DefaultSort
		sortType = c.Sortable[sortBy]
	}
	q.Sort = SortSpec{
		Path: sortBy,
		Type: sortType,
		Desc: !strings.EqualFold(trim(params.Get("sortOrder")), "asc"),
	}

	return q
}

// FacetQuery is the base predicate only, so facets never shrink under filters.
func (c CatalogSpec) FacetQuery() ListQuery {
	return ListQuery{Catalog: c.Name, Collection: c.Collection, Base: c.Base}
}

func parseProximity(params url.Values) []string {
	lat, errLat := strconv.ParseFloat(params.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(params.Get("lon"), 64)
	radius, errRadius := strconv.ParseFloat(params.Get("radiusKm"), 64)
	if errLat != nil || errLon != nil || !ValidCoordinates(lat, lon) {
		return nil
	}
	if errRadius != nil || radius <= 0 {
		radius = 5
	}
	return ProximityCells(lat, lon, radius)
}

func parsePositiveInt(raw string, def int) int {
	n, err := strconv.Atoi(trim(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

func NewPagination(total int64, page, limit int) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// Facets maps a facet name to its distinct values.
type Facets map[string][]string

type ListResult struct {
	Items      []interface{}
	Filters    Facets
	Pagination Pagination
}
