// Package normalize maps raw provider records into the canonical Place entity.
// Normalization is pure: no I/O, no clock, no randomness beyond ID generation
// at persist time (IDs are assigned by the store, not here).
package normalize

import (
	"fmt"

	"playfinder/internal/place/models"
	"playfinder/internal/provider"
	id "playfinder/pkg/domain"
	"playfinder/pkg/geo"
)

// Error reports a record that cannot be normalized. Such records are dropped
// from their batch; they never fail the batch as a whole.
type Error struct {
	ExternalID string
	Reason     string
}

func (e *Error) Error() string {
	if e.ExternalID == "" {
		return fmt.Sprintf("normalize: %s", e.Reason)
	}
	return fmt.Sprintf("normalize %s: %s", e.ExternalID, e.Reason)
}

// Record maps one raw provider record to a Place with source=provider.
//
// Optional fields degrade gracefully: missing name/address become empty
// strings, missing facilities an empty set, missing rating the minimum. Only
// a missing external identifier or coordinate pair is fatal to the record.
// The provider speaks lat/lng; the stored location is GeoJSON [lng, lat].
func Record(raw provider.Record) (models.Place, error) {
	if raw.PlaceID == "" {
		return models.Place{}, &Error{Reason: "missing external identifier"}
	}
	if raw.Geometry == nil {
		return models.Place{}, &Error{ExternalID: raw.PlaceID, Reason: "missing coordinates"}
	}
	if !raw.Geometry.Location.Valid() {
		return models.Place{}, &Error{ExternalID: raw.PlaceID, Reason: "coordinates out of range"}
	}

	address := raw.Vicinity
	if address == "" {
		address = raw.FormattedAddress
	}

	facilities := raw.Types
	if facilities == nil {
		facilities = []string{}
	}

	return models.Place{
		ID:         id.NewPlaceID(),
		ExternalID: raw.PlaceID,
		Name:       raw.Name,
		Address:    address,
		Source:     models.SourceProvider,
		Facilities: facilities,
		Rating:     models.ClampRating(raw.Rating),
		Location:   geo.NewPoint(raw.Geometry.Location),
	}, nil
}

// Batch normalizes a sequence of raw records, dropping the invalid ones.
// The dropped errors are returned for logging; an all-invalid batch yields an
// empty slice and is still a success.
func Batch(raws []provider.Record) ([]models.Place, []error) {
	places := make([]models.Place, 0, len(raws))
	var dropped []error
	for _, raw := range raws {
		place, err := Record(raw)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		places = append(places, place)
	}
	return places, dropped
}
