package domain

import "github.com/google/uuid"

func validProperty() *Listing {
	return &Listing{
		Kind:             KindProperty,
		Title:            "Sunny 2BHK near metro",
		Description:      "Corner flat with two balconies",
		ListingType:      "sale",
		PropertyType:     "apartment",
		Furnishing:       "semi-furnished",
		PossessionStatus: "ready-to-move",
		Address:          Address{City: "Bengaluru", Locality: "Whitefield", Street: "ITPL Main Road"},
		Location:         NewGeoPoint(12.9698, 77.7500),
		Area:             1200,
		Bedrooms:         2,
		Parking:          Parking{Description: "1 Covered + 1 Open"},
		Amenities:        []string{"gym", "lift"},
		Price:            8500000,
		Images:           []string{"/assets/listings/a.jpg"},
		Contact:          Contact{Name: "Asha", Phone: "+91 98450 00000", Email: "asha@example.com"},
		OwnerID:          uuid.New(),
	}
}

func validProject() *Listing {
	l := validProperty()
	l.Kind = KindProject
	l.ListingType = ""
	l.ProjectType = "residential"
	l.Furnishing = ""
	l.PossessionStatus = "under-construction"
	l.Price = 0
	l.UnitTypes = []UnitType{
		{Label: "2BHK", Size: Range{Min: 1100, Max: 1250}, Price: Range{Min: 7500000, Max: 8200000}},
		{Label: "3BHK", Size: Range{Min: 1500, Max: 1700}, Price: Range{Min: 9800000, Max: 11000000}},
	}
	return l
}
