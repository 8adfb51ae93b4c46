// Package geo holds the coordinate types shared by the resolver, the provider
// client, and the place model.
package geo

import (
	"fmt"
	"math"
)

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite and within bounds.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Round returns the coordinates rounded to the given number of decimal places.
// Used for cache key derivation so near-identical requests share a slot.
func (c Coordinates) Round(decimals int) Coordinates {
	f := math.Pow10(decimals)
	return Coordinates{
		Lat: math.Round(c.Lat*f) / f,
		Lng: math.Round(c.Lng*f) / f,
	}
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lng)
}

// Point is a GeoJSON Point. Coordinates are [longitude, latitude] in
// GeoJSON order, not the lat/lng order the provider speaks.
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPoint builds a GeoJSON point from lat/lng coordinates.
func NewPoint(c Coordinates) Point {
	return Point{Type: "Point", Coordinates: [2]float64{c.Lng, c.Lat}}
}

// LatLng converts the point back to a lat/lng pair.
func (p Point) LatLng() Coordinates {
	return Coordinates{Lat: p.Coordinates[1], Lng: p.Coordinates[0]}
}

// IsUnset reports whether the point carries the [0,0] "location unknown"
// sentinel. Consumers must treat it as unset, not as a real measurement.
func (p Point) IsUnset() bool {
	return p.Coordinates[0] == 0 && p.Coordinates[1] == 0
}

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the haversine great-circle distance between two
// coordinate pairs.
func DistanceMeters(a, b Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
