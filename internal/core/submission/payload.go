package submission

import (
	"strings"

	"listing-service/internal/core/domain"
)

// BuildPayload turns a draft into the listing document sent to the store.
// Numeric inputs go through ParseNumber; coordinates become a GeoJSON point.
func BuildPayload(kind domain.Kind, d Draft, images []string) *domain.Listing {
	f := func(path string) string { return strings.TrimSpace(d.Fields[path]) }

	l := &domain.Listing{
		Kind:             kind,
		Title:            f("title"),
		Description:      f("description"),
		PropertyType:     f("propertyType"),
		SubType:          f("subType"),
		Furnishing:       f("furnishing"),
		Facing:           f("facing"),
		PossessionStatus: f("possessionStatus"),
		Address: domain.Address{
			City:     f("address.city"),
			Locality: f("address.locality"),
			Street:   f("address.street"),
			Landmark: f("address.landmark"),
		},
		Area:         ParseNumber(d.Fields["area"]),
		CarpetArea:   ParseNumber(d.Fields["carpetArea"]),
		Bedrooms:     parseInt(d.Fields["bedrooms"]),
		Bathrooms:    parseInt(d.Fields["bathrooms"]),
		BalconyCount: parseInt(d.Fields["balconyCount"]),
		Amenities:    append([]string{}, d.Amenities...),
		Images:       images,
		FloorPlans:   append([]string(nil), d.FloorPlans...),
		BrochureURL:  f("brochureUrl"),
		VideoURL:     f("videoUrl"),
		Contact: domain.Contact{
			Name:  f("contact.name"),
			Phone: f("contact.phone"),
			Email: f("contact.email"),
		},
	}

	if desc := f("parking"); desc != "" {
		l.Parking = domain.Parking{Count: domain.ParseParking(desc), Description: desc}
	} else if d.ParkingCount > 0 {
		l.Parking = domain.Parking{Count: d.ParkingCount}
	}
	if d.Coordinates != nil {
		l.Location = domain.NewGeoPoint(d.Coordinates.Lat, d.Coordinates.Lon)
	}

	switch kind {
	case domain.KindProject:
		l.ProjectType = f("projectType")
		l.UnitTypes = parseUnitTypes(d.UnitTypes)
		if r := domain.DerivePriceRange(l.UnitTypes); r != nil {
			l.PriceRange = r
			l.Price = r.Min
		}
	default:
		l.ListingType = f("listingType")
		l.Price = ParseNumber(d.Fields["price"])
	}
	return l
}

func parseUnitTypes(in []UnitTypeInput) []domain.UnitType {
	out := make([]domain.UnitType, 0, len(in))
	for _, u := range in {
		out = append(out, domain.UnitType{
			Label: strings.TrimSpace(u.Label),
			Size:  domain.Range{Min: ParseNumber(u.SizeMin), Max: ParseNumber(u.SizeMax)},
			Price: domain.Range{Min: ParseNumber(u.PriceMin), Max: ParseNumber(u.PriceMax)},
		})
	}
	return out
}
