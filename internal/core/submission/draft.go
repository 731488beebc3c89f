package submission

import (
	"listing-service/internal/core/domain"

	"github.com/google/uuid"
)

// Coordinates are set or cleared as one value, never one half at a time.
type Coordinates struct {
	Lat float64
	Lon float64
}

// UnitTypeInput holds one unit type as entered.
type UnitTypeInput struct {
	Label    string
	SizeMin  string
	SizeMax  string
	PriceMin string
	PriceMax string
}

// PendingMedia is a local file attached to the draft but not uploaded yet.
type PendingMedia struct {
	Handle string
	File   domain.MediaFile
}

// Preview is one entry of the media list as shown to the user:
// persisted URLs first, then pending files.
type Preview struct {
	Handle   string
	URL      string
	Name     string
	Existing bool
}

// Draft is the listing being assembled. Text and numeric inputs are kept raw
// and only coerced when the payload is built.
type Draft struct {
	Fields      map[string]string
	Amenities   []string
	UnitTypes   []UnitTypeInput
	Coordinates *Coordinates

	ExistingMedia []string
	PendingMedia  []PendingMedia
	// FloorPlans are carried unchanged from the listing being edited.
	FloorPlans []string
	// ParkingCount is a stored count that came without a description.
	// Editing the parking field replaces it.
	ParkingCount int

	EditID *uuid.UUID
}

func newDraft() *Draft {
	return &Draft{Fields: map[string]string{}}
}

func (d *Draft) field(path string) string {
	return d.Fields[path]
}

func (d *Draft) mediaCount() int {
	return len(d.ExistingMedia) + len(d.PendingMedia)
}

func (d *Draft) clone() Draft {
	cp := Draft{
		Fields:        make(map[string]string, len(d.Fields)),
		Amenities:     append([]string(nil), d.Amenities...),
		UnitTypes:     append([]UnitTypeInput(nil), d.UnitTypes...),
		ExistingMedia: append([]string(nil), d.ExistingMedia...),
		PendingMedia:  append([]PendingMedia(nil), d.PendingMedia...),
		FloorPlans:    append([]string(nil), d.FloorPlans...),
		ParkingCount:  d.ParkingCount,
	}
	for k, v := range d.Fields {
		cp.Fields[k] = v
	}
	if d.Coordinates != nil {
		c := *d.Coordinates
		cp.Coordinates = &c
	}
	if d.EditID != nil {
		id := *d.EditID
		cp.EditID = &id
	}
	return cp
}

func (d *Draft) previews() []Preview {
	out := make([]Preview, 0, d.mediaCount())
	for _, url := range d.ExistingMedia {
		out = append(out, Preview{Handle: url, URL: url, Existing: true})
	}
	for _, p := range d.PendingMedia {
		out = append(out, Preview{Handle: p.Handle, Name: p.File.Name})
	}
	return out
}

// draftFromListing fills a draft with a persisted listing for the edit flow.
func draftFromListing(l *domain.Listing) *Draft {
	d := newDraft()
	set := func(path, v string) {
		if v != "" {
			d.Fields[path] = v
		}
	}
	set("title", l.Title)
	set("description", l.Description)
	set("listingType", l.ListingType)
	set("projectType", l.ProjectType)
	set("propertyType", l.PropertyType)
	set("subType", l.SubType)
	set("furnishing", l.Furnishing)
	set("facing", l.Facing)
	set("possessionStatus", l.PossessionStatus)
	set("address.city", l.Address.City)
	set("address.locality", l.Address.Locality)
	set("address.street", l.Address.Street)
	set("address.landmark", l.Address.Landmark)
	set("area", formatNumber(l.Area))
	set("carpetArea", formatNumber(l.CarpetArea))
	set("bedrooms", formatNumber(float64(l.Bedrooms)))
	set("bathrooms", formatNumber(float64(l.Bathrooms)))
	set("balconyCount", formatNumber(float64(l.BalconyCount)))
	set("parking", l.Parking.Description)
	if l.Parking.Description == "" {
		d.ParkingCount = l.Parking.Count
	}
	if l.Kind == domain.KindProperty {
		set("price", formatNumber(l.Price))
	}
	set("brochureUrl", l.BrochureURL)
	set("videoUrl", l.VideoURL)
	set("contact.name", l.Contact.Name)
	set("contact.phone", l.Contact.Phone)
	set("contact.email", l.Contact.Email)

	d.Amenities = append([]string(nil), l.Amenities...)
	for _, u := range l.UnitTypes {
		d.UnitTypes = append(d.UnitTypes, UnitTypeInput{
			Label:    u.Label,
			SizeMin:  formatNumber(u.Size.Min),
			SizeMax:  formatNumber(u.Size.Max),
			PriceMin: formatNumber(u.Price.Min),
			PriceMax: formatNumber(u.Price.Max),
		})
	}
	if l.Location != nil {
		d.Coordinates = &Coordinates{Lat: l.Location.Lat(), Lon: l.Location.Lon()}
	}
	d.ExistingMedia = append([]string(nil), l.Images...)
	d.FloorPlans = append([]string(nil), l.FloorPlans...)
	id := l.ID
	d.EditID = &id
	return d
}
