// Package domain provides typed identifiers shared across feature packages.
// Distinct types keep a PlaceID from ever being passed where a UserID is
// expected; the compiler enforces what documentation cannot.
package domain

import (
	"github.com/google/uuid"

	dErrors "playfinder/pkg/domain-errors"
)

// UserID identifies a registered user.
type UserID uuid.UUID

// PlaceID identifies a stored place.
type PlaceID uuid.UUID

func (id UserID) String() string  { return uuid.UUID(id).String() }
func (id PlaceID) String() string { return uuid.UUID(id).String() }

// MarshalText renders the canonical UUID string so JSON carries
// "xxxxxxxx-xxxx-..." rather than the raw 16-byte array.
func (id UserID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id PlaceID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PlaceID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// IsZero reports whether the ID is the nil UUID.
func (id UserID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PlaceID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// NewUserID generates a fresh user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewPlaceID generates a fresh place ID.
func NewPlaceID() PlaceID { return PlaceID(uuid.New()) }

// ParseUserID parses a user ID, rejecting empty, malformed, and nil UUIDs.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParsePlaceID parses a place ID, rejecting empty, malformed, and nil UUIDs.
func ParsePlaceID(s string) (PlaceID, error) {
	u, err := parseUUID(s, "place id")
	return PlaceID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil UUID", what)
	}
	return u, nil
}
