package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ListingTypes       = []string{"sale", "rent"}
	ProjectTypes       = []string{"residential", "commercial", "mixed-use"}
	PropertyTypes      = []string{"apartment", "villa", "independent-house", "plot", "office", "shop", "warehouse"}
	FurnishingTypes    = []string{"furnished", "semi-furnished", "unfurnished"}
	FacingDirections   = []string{"north", "south", "east", "west", "north-east", "north-west", "south-east", "south-west"}
	PossessionStatuses = []string{"ready-to-move", "under-construction"}

	Amenities = []string{
		"gym", "swimming-pool", "clubhouse", "power-backup", "lift", "security",
		"cctv", "play-area", "garden", "jogging-track", "visitor-parking",
		"rainwater-harvesting", "intercom", "gas-pipeline", "wifi",
	}

	// Localities is the closed list of named areas a listing may be placed in.
	Localities = []string{
		"Whitefield", "Koramangala", "Indiranagar", "HSR Layout", "Electronic City",
		"Marathahalli", "Jayanagar", "JP Nagar", "Hebbal", "Yelahanka",
		"Sarjapur Road", "Bannerghatta Road", "Banashankari", "Malleshwaram", "Rajajinagar",
	}
)

func trim(s string) string { return strings.TrimSpace(s) }

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = trim(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeCity collapses whitespace and title-cases a city name.
// A cases.Caser keeps state between calls, so each call builds its own.
func NormalizeCity(city string) string {
	fields := strings.Fields(city)
	if len(fields) == 0 {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(strings.Join(fields, " ")))
}

// CanonicalLocality matches a locality against the closed list ignoring case.
func CanonicalLocality(locality string) (string, bool) {
	needle := strings.Join(strings.Fields(locality), " ")
	for _, l := range Localities {
		if strings.EqualFold(l, needle) {
			return l, true
		}
	}
	return "", false
}

func IsKnownAmenity(a string) bool { return contains(Amenities, a) }
