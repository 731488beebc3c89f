package domain

import "fmt"

const (
	CatalogAgents     = "agents"
	CatalogBuilders   = "builders"
	CatalogProperties = "properties"
	CatalogProjects   = "projects"
)

var listingSortable = map[string]FieldType{
	"createdAt":      FieldTime,
	"price":          FieldNumber,
	"area":           FieldNumber,
	"counters.views": FieldNumber,
}

var catalogs = map[string]CatalogSpec{
	CatalogAgents: {
		Name:       CatalogAgents,
		Collection: CollectionProfiles,
		Base: []Condition{
			{Path: "isAgent", Type: FieldBool, Op: OpEq, Value: true},
			{Path: "verified", Type: FieldBool, Op: OpEq, Value: true},
		},
		Filters: []FilterSpec{
			{Param: "specialization", Path: "agentInfo.specializations", Type: FieldList, Op: OpContains},
			{Param: "language", Path: "agentInfo.languages", Type: FieldList, Op: OpContains},
			{Param: "agency", Path: "agentInfo.agency", Type: FieldText, Op: OpEq},
			{Param: "city", Path: "city", Type: FieldText, Op: OpEq},
			{Param: "state", Path: "state", Type: FieldText, Op: OpEq},
			{Param: "minExperience", Path: "agentInfo.experience", Type: FieldNumber, Op: OpGte},
			{Param: "minRating", Path: "agentInfo.rating", Type: FieldNumber, Op: OpGte},
		},
		SearchFields: []string{"name", "agentInfo.agency"},
		Sortable: map[string]FieldType{
			"agentInfo.rating":     FieldNumber,
			"agentInfo.experience": FieldNumber,
			"name":                 FieldText,
			"createdAt":            FieldTime,
		},
		DefaultSort: "agentInfo.rating",
		Facets: []FacetSpec{
			{Name: "agencies", Path: "agentInfo.agency", Type: FieldText},
			{Name: "specializations", Path: "agentInfo.specializations", Type: FieldList},
			{Name: "languages", Path: "agentInfo.languages", Type: FieldList},
			{Name: "cities", Path: "city", Type: FieldText},
		},
	},
	CatalogBuilders: {
		Name:       CatalogBuilders,
		Collection: CollectionProfiles,
		Base: []Condition{
			{Path: "isBuilder", Type: FieldBool, Op: OpEq, Value: true},
			{Path: "verified", Type: FieldBool, Op: OpEq, Value: true},
		},
		Filters: []FilterSpec{
			{Param: "specialization", Path: "builderInfo.specializations", Type: FieldList, Op: OpContains},
			{Param: "city", Path: "city", Type: FieldText, Op: OpEq},
			{Param: "state", Path: "state", Type: FieldText, Op: OpEq},
			{Param: "minRating", Path: "builderInfo.rating", Type: FieldNumber, Op: OpGte},
			{Param: "minCompletedProjects", Path: "builderInfo.completedProjects", Type: FieldNumber, Op: OpGte},
			{Param: "establishedBefore", Path: "builderInfo.establishedYear", Type: FieldNumber, Op: OpLte},
		},
		SearchFields: []string{"name", "builderInfo.companyName"},
		Sortable: map[string]FieldType{
			"builderInfo.rating":            FieldNumber,
			"builderInfo.completedProjects": FieldNumber,
			"builderInfo.establishedYear":   FieldNumber,
			"name":                          FieldText,
			"createdAt":                     FieldTime,
		},
		DefaultSort: "builderInfo.rating",
		Facets: []FacetSpec{
			{Name: "companies", Path: "builderInfo.companyName", Type: FieldText},
			{Name: "specializations", Path: "builderInfo.specializations", Type: FieldList},
			{Name: "cities", Path: "city", Type: FieldText},
		},
	},
	CatalogProperties: {
		Name:       CatalogProperties,
		Collection: CollectionListings,
		Base: []Condition{
			{Path: "kind", Type: FieldText, Op: OpEq, Value: string(KindProperty)},
			{Path: "verified", Type: FieldBool, Op: OpEq, Value: true},
		},
		Filters: []FilterSpec{
			{Param: "city", Path: "address.city", Type: FieldText, Op: OpEq},
			{Param: "locality", Path: "address.locality", Type: FieldText, Op: OpEq},
			{Param: "listingType", Path: "listingType", Type: FieldText, Op: OpEq},
			{Param: "propertyType", Path: "propertyType", Type: FieldText, Op: OpEq},
			{Param: "furnishing", Path: "furnishing", Type: FieldText, Op: OpEq},
			{Param: "possessionStatus", Path: "possessionStatus", Type: FieldText, Op: OpEq},
			{Param: "amenity", Path: "amenities", Type: FieldList, Op: OpContains},
			{Param: "minBedrooms", Path: "bedrooms", Type: FieldNumber, Op: OpGte},
			{Param: "minPrice", Path: "price", Type: FieldNumber, Op: OpGte},
			{Param: "maxPrice", Path: "price", Type: FieldNumber, Op: OpLte},
			{Param: "minArea", Path: "area", Type: FieldNumber, Op: OpGte},
			{Param: "maxArea", Path: "area", Type: FieldNumber, Op: OpLte},
		},
		SearchFields: []string{"title", "address.locality", "address.street"},
		Sortable:     listingSortable,
		DefaultSort:  "createdAt",
		Facets: []FacetSpec{
			{Name: "cities", Path: "address.city", Type: FieldText},
			{Name: "localities", Path: "address.locality", Type: FieldText},
			{Name: "propertyTypes", Path: "propertyType", Type: FieldText},
			{Name: "amenities", Path: "amenities", Type: FieldList},
		},
		Proximity: true,
	},
	CatalogProjects: {
		Name:       CatalogProjects,
		Collection: CollectionListings,
		Base: []Condition{
			{Path: "kind", Type: FieldText, Op: OpEq, Value: string(KindProject)},
			{Path: "verified", Type: FieldBool, Op: OpEq, Value: true},
		},
		Filters: []FilterSpec{
			{Param: "city", Path: "address.city", Type: FieldText, Op: OpEq},
			{Param: "locality", Path: "address.locality", Type: FieldText, Op: OpEq},
			{Param: "projectType", Path: "projectType", Type: FieldText, Op: OpEq},
			{Param: "possessionStatus", Path: "possessionStatus", Type: FieldText, Op: OpEq},
			{Param: "amenity", Path: "amenities", Type: FieldList, Op: OpContains},
			{Param: "minPrice", Path: "price", Type: FieldNumber, Op: OpGte},
			{Param: "maxPrice", Path: "price", Type: FieldNumber, Op: OpLte},
		},
		SearchFields: []string{"title", "address.locality", "contact.name"},
		Sortable:     listingSortable,
		DefaultSort:  "createdAt",
		Facets: []FacetSpec{
			{Name: "cities", Path: "address.city", Type: FieldText},
			{Name: "localities", Path: "address.locality", Type: FieldText},
			{Name: "projectTypes", Path: "projectType", Type: FieldText},
			{Name: "amenities", Path: "amenities", Type: FieldList},
		},
		Proximity: true,
	},
}

// LookupCatalog returns the spec for a catalog name.
func LookupCatalog(name string) (CatalogSpec, error) {
	spec, ok := catalogs[name]
	if !ok {
		return CatalogSpec{}, fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}
	return spec, nil
}

// CatalogForKind maps a listing kind to its public catalog.
func CatalogForKind(kind Kind) string {
	if kind == KindProject {
		return CatalogProjects
	}
	return CatalogProperties
}
