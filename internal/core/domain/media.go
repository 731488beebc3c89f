package domain

// MediaFile is a local file waiting to be uploaded.
type MediaFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// GeoCandidate is one geocoding result.
type GeoCandidate struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName,omitempty"`
}
