package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// FieldError names one violated field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violated field of a listing.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "validation failed: " + strings.Join(names, ", ")
}

func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidEmail is a loose check: a parseable address with a domain part.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1
}

// ValidateUnitType checks a single unit type. Ranges are never clamped.
func ValidateUnitType(u UnitType) []string {
	var bad []string
	if trim(u.Label) == "" {
		bad = append(bad, "label")
	}
	if u.Size.Min <= 0 || u.Size.Min > u.Size.Max {
		bad = append(bad, "sizeRange")
	}
	if u.Price.Min <= 0 || u.Price.Min > u.Price.Max {
		bad = append(bad, "priceRange")
	}
	return bad
}

// Validate checks the complete listing document that is about to be persisted.
func (l *Listing) Validate() error {
	v := &ValidationError{}

	if !l.Kind.Valid() {
		v.add("kind", "must be %q or %q", KindProperty, KindProject)
	}
	if trim(l.Title) == "" {
		v.add("title", "is required")
	}
	if trim(l.Description) == "" {
		v.add("description", "is required")
	}

	switch l.Kind {
	case KindProperty:
		if !contains(ListingTypes, l.ListingType) {
			v.add("listingType", "must be one of %v", ListingTypes)
		}
		if !contains(PropertyTypes, l.PropertyType) {
			v.add("propertyType", "must be one of %v", PropertyTypes)
		}
		if l.Furnishing == "" || !contains(FurnishingTypes, l.Furnishing) {
			v.add("furnishing", "must be one of %v", FurnishingTypes)
		}
	case KindProject:
		if !contains(ProjectTypes, l.ProjectType) {
			v.add("projectType", "must be one of %v", ProjectTypes)
		}
		if l.PropertyType != "" && !contains(PropertyTypes, l.PropertyType) {
			v.add("propertyType", "must be one of %v", PropertyTypes)
		}
		if l.Furnishing != "" && !contains(FurnishingTypes, l.Furnishing) {
			v.add("furnishing", "must be one of %v", FurnishingTypes)
		}
	}
	if !contains(PossessionStatuses, l.PossessionStatus) {
		v.add("possessionStatus", "must be one of %v", PossessionStatuses)
	}

	if trim(l.Address.City) == "" {
		v.add("address.city", "is required")
	}
	if _, ok := CanonicalLocality(l.Address.Locality); !ok {
		v.add("address.locality", "must be one of the supported localities")
	}
	if trim(l.Address.Street) == "" {
		v.add("address.street", "is required")
	}
	if l.Location == nil {
		v.add("location", "coordinates are required")
	} else if l.Location.Type != "Point" || !ValidCoordinates(l.Location.Lat(), l.Location.Lon()) {
		v.add("location", "must be a valid point")
	}

	if l.Area <= 0 {
		v.add("area", "must be greater than 0")
	}
	if l.CarpetArea < 0 {
		v.add("carpetArea", "must not be negative")
	}
	if l.Bedrooms < 0 || l.Bathrooms < 0 || l.BalconyCount < 0 || l.Parking.Count < 0 {
		v.add("rooms", "counts must not be negative")
	}
	if l.Facing != "" && !contains(FacingDirections, l.Facing) {
		v.add("facing", "must be one of %v", FacingDirections)
	}
	for _, a := range l.Amenities {
		if !IsKnownAmenity(a) {
			v.add("amenities", "unknown amenity %q", a)
			break
		}
	}

	if l.Kind == KindProject {
		if len(l.UnitTypes) == 0 {
			v.add("unitTypes", "at least one unit type is required")
		}
		for i, u := range l.UnitTypes {
			for _, field := range ValidateUnitType(u) {
				v.add(fmt.Sprintf("unitTypes[%d].%s", i, field), "is invalid")
			}
		}
	}
	if l.Price <= 0 {
		v.add("price", "must be greater than 0")
	}

	if len(l.Images) == 0 {
		v.add("images", "at least one image is required")
	}

	if trim(l.Contact.Name) == "" {
		v.add("contact.name", "is required")
	}
	if trim(l.Contact.Phone) == "" {
		v.add("contact.phone", "is required")
	}
	if !ValidEmail(trim(l.Contact.Email)) {
		v.add("contact.email", "must be a valid email")
	}

	return v.orNil()
}
