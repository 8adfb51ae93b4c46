// Package provider defines the contract with the external place-search
// service. The rest of the pipeline depends only on the Query and Record types
// here, so a different vendor can be substituted behind the Client interface
// without touching the normalizer or the orchestrator.
package provider

import (
	"context"

	"playfinder/pkg/geo"
)

// Mode selects the search variant. The two are mutually exclusive: a text
// search never carries a radius, a region search never carries free text.
type Mode string

const (
	ModeText   Mode = "text"
	ModeRegion Mode = "region"
)

// Query describes one provider search.
type Query struct {
	Mode         Mode
	Text         string
	Coords       geo.Coordinates
	RadiusMeters int
}

// TextQuery builds a free-text search.
func TextQuery(text string) Query {
	return Query{Mode: ModeText, Text: text}
}

// RegionQuery builds a coordinate+radius search. Callers must pass resolved
// coordinates; this package never substitutes a fallback region itself.
func RegionQuery(coords geo.Coordinates, radiusMeters int) Query {
	return Query{Mode: ModeRegion, Coords: coords, RadiusMeters: radiusMeters}
}

// Record is the minimal raw-record contract the normalizer depends on. It is
// a strict subset of what the vendor returns; vendor-specific envelopes stay
// inside the client implementations.
type Record struct {
	PlaceID          string    `json:"place_id"`
	Name             string    `json:"name"`
	Vicinity         string    `json:"vicinity,omitempty"`
	FormattedAddress string    `json:"formatted_address,omitempty"`
	Geometry         *Geometry `json:"geometry,omitempty"`
	Rating           float64   `json:"rating,omitempty"`
	Types            []string  `json:"types,omitempty"`
}

// Geometry carries the record's coordinates in the provider's lat/lng order.
type Geometry struct {
	Location geo.Coordinates `json:"location"`
}

// Client queries the external place-search provider. Implementations make a
// single attempt per call; retry policy belongs to callers.
type Client interface {
	// Search returns raw records for the query. An empty result is not an
	// error. Transport and provider-side failures surface as a *Error.
	Search(ctx context.Context, q Query) ([]Record, error)

	// Details fetches one record by the provider's native identifier.
	// Returns a NotFound categorized error when the provider has no such place.
	Details(ctx context.Context, externalID string) (*Record, error)
}
