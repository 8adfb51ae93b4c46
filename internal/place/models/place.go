// Package models defines the canonical place entity shared by the normalizer,
// the stores, and the HTTP layer.
package models

import (
	"time"

	id "playfinder/pkg/domain"
	"playfinder/pkg/geo"
)

// Source records where a place came from.
type Source string

const (
	SourceProvider      Source = "provider"
	SourceUserSubmitted Source = "user_submitted"
)

// Rating bounds. Provider ratings outside the range are clamped; absent
// ratings default to the minimum.
const (
	RatingMin = 1.0
	RatingMax = 5.0
)

// Place is the canonical playground entity.
//
// ExternalID is the provider's native identifier and is unique per
// source=provider record; the store enforces that at persist time so
// re-ingesting the same provider record stays idempotent. User submissions
// carry no ExternalID.
//
// Location follows GeoJSON: coordinates are [longitude, latitude]. A place
// submitted without coordinates stores the [0,0] sentinel, which consumers
// must treat as "unset".
type Place struct {
	ID          id.PlaceID  `json:"id"`
	ExternalID  string      `json:"externalId,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Address     string      `json:"address"`
	Source      Source      `json:"source"`
	Facilities  []string    `json:"facilities"`
	Rating      float64     `json:"rating"`
	Location    geo.Point   `json:"location"`
	PostedBy    *id.UserID  `json:"postedBy,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ClampRating forces a rating into the legal range, defaulting to the minimum
// for zero or negative input.
func ClampRating(r float64) float64 {
	if r < RatingMin {
		return RatingMin
	}
	if r > RatingMax {
		return RatingMax
	}
	return r
}
