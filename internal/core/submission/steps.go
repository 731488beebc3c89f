package submission

import (
	"fmt"
	"strings"

	"listing-service/internal/core/domain"
)

// StepConfig describes one step of the wizard: the draft paths it edits and
// the check that must pass before moving past it.
type StepConfig struct {
	Name     string
	Fields   []string
	Validate func(d *Draft) []string
}

var PropertySteps = []StepConfig{
	{
		Name:   "basic details",
		Fields: []string{"title", "listingType", "propertyType", "subType", "furnishing", "possessionStatus"},
		Validate: func(d *Draft) []string {
			var bad []string
			bad = requireText(d, bad, "title")
			bad = requireOneOf(d, bad, "listingType", domain.ListingTypes)
			bad = requireOneOf(d, bad, "propertyType", domain.PropertyTypes)
			bad = requireOneOf(d, bad, "furnishing", domain.FurnishingTypes)
			bad = requireOneOf(d, bad, "possessionStatus", domain.PossessionStatuses)
			return bad
		},
	},
	locationStep,
	{
		Name:     "features",
		Fields:   []string{"area", "carpetArea", "bedrooms", "bathrooms", "balconyCount", "facing", "parking", "description"},
		Validate: validateFeatures,
	},
	{
		Name:   "pricing and media",
		Fields: []string{"price", "videoUrl"},
		Validate: func(d *Draft) []string {
			var bad []string
			if ParseNumber(d.field("price")) <= 0 {
				bad = append(bad, "price")
			}
			if d.mediaCount() == 0 {
				bad = append(bad, "images")
			}
			return bad
		},
	},
	contactStep,
}

var ProjectSteps = []StepConfig{
	{
		Name:   "basic details",
		Fields: []string{"title", "projectType", "propertyType", "possessionStatus"},
		Validate: func(d *Draft) []string {
			var bad []string
			bad = requireText(d, bad, "title")
			bad = requireOneOf(d, bad, "projectType", domain.ProjectTypes)
			if d.field("propertyType") != "" {
				bad = requireOneOf(d, bad, "propertyType", domain.PropertyTypes)
			}
			bad = requireOneOf(d, bad, "possessionStatus", domain.PossessionStatuses)
			return bad
		},
	},
	locationStep,
	{
		Name:     "features",
		Fields:   []string{"area", "carpetArea", "facing", "parking", "description"},
		Validate: validateFeatures,
	},
	{
		Name: "unit types",
		Validate: func(d *Draft) []string {
			if len(d.UnitTypes) == 0 {
				return []string{"unitTypes"}
			}
			var bad []string
			for i, u := range parseUnitTypes(d.UnitTypes) {
				for _, f := range domain.ValidateUnitType(u) {
					bad = append(bad, fmt.Sprintf("unitTypes[%d].%s", i, f))
				}
			}
			return bad
		},
	},
	{
		Name:   "media",
		Fields: []string{"brochureUrl", "videoUrl"},
		Validate: func(d *Draft) []string {
			if d.mediaCount() == 0 {
				return []string{"images"}
			}
			return nil
		},
	},
	contactStep,
}

var locationStep = StepConfig{
	Name:   "location",
	Fields: []string{"address.city", "address.locality", "address.street", "address.landmark"},
	Validate: func(d *Draft) []string {
		var bad []string
		bad = requireText(d, bad, "address.city")
		if _, ok := domain.CanonicalLocality(d.field("address.locality")); !ok {
			bad = append(bad, "address.locality")
		}
		bad = requireText(d, bad, "address.street")
		if d.Coordinates == nil {
			bad = append(bad, "coordinates")
		}
		return bad
	},
}

var contactStep = StepConfig{
	Name:   "contact",
	Fields: []string{"contact.name", "contact.phone", "contact.email"},
	Validate: func(d *Draft) []string {
		var bad []string
		bad = requireText(d, bad, "contact.name")
		bad = requireText(d, bad, "contact.phone")
		if !domain.ValidEmail(strings.TrimSpace(d.field("contact.email"))) {
			bad = append(bad, "contact.email")
		}
		return bad
	},
}

func validateFeatures(d *Draft) []string {
	var bad []string
	if ParseNumber(d.field("area")) <= 0 {
		bad = append(bad, "area")
	}
	bad = requireText(d, bad, "description")
	return bad
}

func requireText(d *Draft, bad []string, path string) []string {
	if strings.TrimSpace(d.field(path)) == "" {
		return append(bad, path)
	}
	return bad
}

func requireOneOf(d *Draft, bad []string, path string, allowed []string) []string {
	v := strings.TrimSpace(d.field(path))
	for _, a := range allowed {
		if v == a {
			return bad
		}
	}
	return append(bad, path)
}

// StepsFor returns the step table of a listing kind.
func StepsFor(kind domain.Kind) []StepConfig {
	if kind == domain.KindProject {
		return ProjectSteps
	}
	return PropertySteps
}

var numericFields = map[string]bool{
	"area": true, "carpetArea": true, "bedrooms": true, "bathrooms": true, "balconyCount": true, "price": true,
}

func knownFields(steps []StepConfig) map[string]bool {
	out := map[string]bool{}
	for _, s := range steps {
		for _, f := range s.Fields {
			out[f] = true
		}
	}
	return out
}
