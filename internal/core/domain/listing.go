package domain

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindProperty Kind = "property"
	KindProject  Kind = "project"
)

func (k Kind) Valid() bool {
	return k == KindProperty || k == KindProject
}

type Address struct {
	City     string `json:"city" bson:"city"`
	Locality string `json:"locality" bson:"locality"`
	Street   string `json:"street" bson:"street"`
	Landmark string `json:"landmark,omitempty" bson:"landmark,omitempty"`
}

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type" bson:"type"`
	Coordinates [2]float64 `json:"coordinates" bson:"coordinates"`
}

func NewGeoPoint(lat, lon float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }
func (p GeoPoint) Lon() float64 { return p.Coordinates[0] }

type Range struct {
	Min float64 `json:"min" bson:"min"`
	Max float64 `json:"max" bson:"max"`
}

// UnitType is one configuration inside a project, e.g. "2BHK".
type UnitType struct {
	Label string `json:"label" bson:"label"`
	Size  Range  `json:"sizeRange" bson:"sizeRange"`
	Price Range  `json:"priceRange" bson:"priceRange"`
}

// Parking keeps the entered description next to the derived count.
type Parking struct {
	Count       int    `json:"count" bson:"count"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

type Contact struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
	Email string `json:"email" bson:"email"`
}

type Counters struct {
	Views     int64 `json:"views" bson:"views"`
	Favorites int64 `json:"favorites" bson:"favorites"`
	Inquiries int64 `json:"inquiries" bson:"inquiries"`
}

// Listing is either a property offered for sale/rent or a development project.
type Listing struct {
	ID   uuid.UUID `json:"id" bson:"-"`
	Kind Kind      `json:"kind" bson:"kind"`

	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`

	ListingType  string `json:"listingType,omitempty" bson:"listingType,omitempty"`
	ProjectType  string `json:"projectType,omitempty" bson:"projectType,omitempty"`
	PropertyType string `json:"propertyType,omitempty" bson:"propertyType,omitempty"`
	SubType      string `json:"subType,omitempty" bson:"subType,omitempty"`

	Address  Address   `json:"address" bson:"address"`
	Location *GeoPoint `json:"location,omitempty" bson:"location,omitempty"`
	Geohash  string    `json:"geohash,omitempty" bson:"geohash,omitempty"`

	Area         float64  `json:"area" bson:"area"`
	CarpetArea   float64  `json:"carpetArea,omitempty" bson:"carpetArea,omitempty"`
	Bedrooms     int      `json:"bedrooms,omitempty" bson:"bedrooms,omitempty"`
	Bathrooms    int      `json:"bathrooms,omitempty" bson:"bathrooms,omitempty"`
	BalconyCount int      `json:"balconyCount,omitempty" bson:"balconyCount,omitempty"`
	Furnishing   string   `json:"furnishing,omitempty" bson:"furnishing,omitempty"`
	Facing       string   `json:"facing,omitempty" bson:"facing,omitempty"`
	Parking      Parking  `json:"parking" bson:"parking"`
	Amenities    []string `json:"amenities" bson:"amenities"`

	Price      float64    `json:"price" bson:"price"`
	PriceRange *Range     `json:"priceRange,omitempty" bson:"priceRange,omitempty"`
	UnitTypes  []UnitType `json:"unitTypes,omitempty" bson:"unitTypes,omitempty"`

	Images      []string `json:"images" bson:"images"`
	FloorPlans  []string `json:"floorPlans,omitempty" bson:"floorPlans,omitempty"`
	BrochureURL string   `json:"brochureUrl,omitempty" bson:"brochureUrl,omitempty"`
	VideoURL    string   `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`

	Contact          Contact   `json:"contact" bson:"contact"`
	OwnerID          uuid.UUID `json:"ownerId" bson:"ownerId"`
	PossessionStatus string    `json:"possessionStatus,omitempty" bson:"possessionStatus,omitempty"`

	Verified  bool      `json:"verified" bson:"verified"`
	Counters  Counters  `json:"counters" bson:"counters"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// DerivePriceRange returns the min/max price across all unit types.
func DerivePriceRange(units []UnitType) *Range {
	if len(units) == 0 {
		return nil
	}
	r := Range{Min: units[0].Price.Min, Max: units[0].Price.Max}
	for _, u := range units[1:] {
		if u.Price.Min < r.Min {
			r.Min = u.Price.Min
		}
		if u.Price.Max > r.Max {
			r.Max = u.Price.Max
		}
	}
	return &r
}

// Normalize canonicalises free-text fields and fills the derived values:
// project price range, geohash and parking count.
func (l *Listing) Normalize() {
	l.Title = trim(l.Title)
	l.Description = trim(l.Description)
	l.Address.City = NormalizeCity(l.Address.City)
	if canonical, ok := CanonicalLocality(l.Address.Locality); ok {
		l.Address.Locality = canonical
	} else {
		l.Address.Locality = trim(l.Address.Locality)
	}
	l.Address.Street = trim(l.Address.Street)
	l.Address.Landmark = trim(l.Address.Landmark)
	l.Amenities = dedupe(l.Amenities)
	if l.Amenities == nil {
		l.Amenities = []string{}
	}

	if l.Kind == KindProject {
		l.PriceRange = DerivePriceRange(l.UnitTypes)
		if l.PriceRange != nil {
			l.Price = l.PriceRange.Min
		}
	}

	if l.Location != nil {
		l.Geohash = EncodeGeohash(l.Location.Lat(), l.Location.Lon())
	} else {
		l.Geohash = ""
	}

	if l.Parking.Count == 0 && l.Parking.Description != "" {
		l.Parking.Count = ParseParking(l.Parking.Description)
	}
}

// IsOwnedBy reports whether the principal may modify the listing.
func (l *Listing) IsOwnedBy(p *Principal) bool {
	if p == nil {
		return false
	}
	return p.IsAdmin() || l.OwnerID == p.UserID
}
