package domain

import "github.com/mmcloughlin/geohash"

// StoredGeohashPrecision is the precision persisted with every located listing.
const StoredGeohashPrecision = 9

// approximate cell width in km for geohash lengths 1..9
var geohashCellWidthKm = []float64{5009.4, 1252.3, 156.5, 39.1, 4.9, 1.2, 0.153, 0.038, 0.0048}

func EncodeGeohash(lat, lon float64) string {
	return geohash.EncodeWithPrecision(lat, lon, StoredGeohashPrecision)
}

// ProximityCells returns the geohash prefixes covering radiusKm around a point:
// the cell that contains the point plus its eight neighbours, at the finest
// precision whose cells are still at least radiusKm wide.
func ProximityCells(lat, lon, radiusKm float64) []string {
	precision := 1
	for i, width := range geohashCellWidthKm {
		if width >= radiusKm {
			precision = i + 1
		}
	}
	center := geohash.EncodeWithPrecision(lat, lon, uint(precision))
	return append([]string{center}, geohash.Neighbors(center)...)
}

func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
