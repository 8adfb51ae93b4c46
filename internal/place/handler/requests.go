package handler

import (
	"strings"

	placeservice "playfinder/internal/place/service"
	dErrors "playfinder/pkg/domain-errors"
	"playfinder/pkg/geo"
)

// SubmitRequest is the HTTP request body for POST /playgrounds.
type SubmitRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Facilities  []string `json:"facilities"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(r.Name) > 200 {
		return dErrors.New(dErrors.CodeInvalidInput, "name must be at most 200 characters")
	}
	if (r.Lat == nil) != (r.Lng == nil) {
		return dErrors.New(dErrors.CodeInvalidInput, "lat and lng must be provided together")
	}
	if r.Lat != nil {
		coords := geo.Coordinates{Lat: *r.Lat, Lng: *r.Lng}
		if !coords.Valid() {
			return dErrors.New(dErrors.CodeInvalidInput, "lat/lng out of range")
		}
	}
	return nil
}

// ToInput converts the request to the service input.
func (r *SubmitRequest) ToInput() placeservice.SubmitInput {
	input := placeservice.SubmitInput{
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		Facilities:  r.Facilities,
	}
	if r.Lat != nil {
		input.Coords = &geo.Coordinates{Lat: *r.Lat, Lng: *r.Lng}
	}
	return input
}
