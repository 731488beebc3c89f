package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	names := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		names[i] = f.Field
	}
	return names
}

func TestListingValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(l *Listing)
		wantFields []string
	}{
		{"valid property", func(l *Listing) {}, nil},
		{"zero area", func(l *Listing) { l.Area = 0 }, []string{"area"}},
		{"zero price", func(l *Listing) { l.Price = 0 }, []string{"price"}},
		{"no images", func(l *Listing) { l.Images = nil }, []string{"images"}},
		{"missing coordinates", func(l *Listing) { l.Location = nil }, []string{"location"}},
		{"unknown locality", func(l *Listing) { l.Address.Locality = "Atlantis" }, []string{"address.locality"}},
		{"unknown amenity", func(l *Listing) { l.Amenities = []string{"helipad"} }, []string{"amenities"}},
		{"bad email", func(l *Listing) { l.Contact.Email = "asha" }, []string{"contact.email"}},
		{"bad listing type", func(l *Listing) { l.ListingType = "lease" }, []string{"listingType"}},
		{"out of range point", func(l *Listing) { l.Location = NewGeoPoint(95, 10) }, []string{"location"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validProperty()
			tt.mutate(l)
			err := l.Validate()
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantFields, fieldNames(t, err))
		})
	}
}

func TestProjectValidateUnitRanges(t *testing.T) {
	l := validProject()
	l.Normalize()
	require.NoError(t, l.Validate())

	l.UnitTypes[1].Size = Range{Min: 1800, Max: 1500}
	l.UnitTypes[0].Price = Range{Min: 9000000, Max: 8000000}
	l.Normalize()

	names := fieldNames(t, l.Validate())
	assert.Contains(t, names, "unitTypes[0].priceRange")
	assert.Contains(t, names, "unitTypes[1].sizeRange")
	// ranges are reported, never clamped
	assert.Equal(t, 1800.0, l.UnitTypes[1].Size.Min)
}

func TestProjectRequiresUnitTypes(t *testing.T) {
	l := validProject()
	l.UnitTypes = nil
	l.Normalize()
	names := fieldNames(t, l.Validate())
	assert.Contains(t, names, "unitTypes")
	assert.Contains(t, names, "price")
}

func TestNormalizeDerivesValues(t *testing.T) {
	l := validProject()
	l.Address.City = "  bengaluru  "
	l.Address.Locality = "whitefield"
	l.Amenities = []string{"gym", " gym", "", "lift"}
	l.Normalize()

	require.NotNil(t, l.PriceRange)
	assert.Equal(t, Range{Min: 7500000, Max: 11000000}, *l.PriceRange)
	assert.Equal(t, 7500000.0, l.Price)
	assert.Equal(t, "Bengaluru", l.Address.City)
	assert.Equal(t, "Whitefield", l.Address.Locality)
	assert.Equal(t, []string{"gym", "lift"}, l.Amenities)
	assert.Len(t, l.Geohash, StoredGeohashPrecision)
	assert.Equal(t, 2, l.Parking.Count)
	assert.Equal(t, "1 Covered + 1 Open", l.Parking.Description)
}

func TestNormalizeClearsGeohashWithoutLocation(t *testing.T) {
	l := validProperty()
	l.Geohash = "stale"
	l.Location = nil
	l.Normalize()
	assert.Empty(t, l.Geohash)
}

func TestDerivePriceRangeEmpty(t *testing.T) {
	assert.Nil(t, DerivePriceRange(nil))
}

func TestParseParking(t *testing.T) {
	tests := map[string]int{
		"":                   0,
		"1 Covered + 1 Open": 2,
		"2 Covered":          2,
		"None":               0,
		"Covered":            1,
		"3":                  3,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseParking(in))
		})
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@b.co"))
	assert.False(t, ValidEmail("Asha <a@b.co>"))
	assert.False(t, ValidEmail("nope"))
	assert.False(t, ValidEmail(""))
}
