// Package store persists user accounts and the saved-playground relation.
package store

import (
	"context"

	"playfinder/internal/user/models"
	id "playfinder/pkg/domain"
)

// Store is interface-driven so the service stays testable against the
// in-memory implementation.
type Store interface {
	// Insert stores a new user. Returns sentinel.ErrConflict when the name or
	// the email is already taken.
	Insert(ctx context.Context, user models.User) error

	// FindByID returns sentinel.ErrNotFound when no such user exists.
	FindByID(ctx context.Context, userID id.UserID) (models.User, error)

	// FindByEmail looks a user up by the normalized email. Returns
	// sentinel.ErrNotFound on miss.
	FindByEmail(ctx context.Context, email string) (models.User, error)

	// FindByToken resolves an access token to its user. Returns
	// sentinel.ErrNotFound for unknown tokens.
	FindByToken(ctx context.Context, token string) (models.User, error)

	// SetToken replaces the user's access token. An empty token revokes.
	SetToken(ctx context.Context, userID id.UserID, token string) error

	// SavePlace adds a place to the user's saved set. Saving an
	// already-saved place is a no-op.
	SavePlace(ctx context.Context, userID id.UserID, placeID id.PlaceID) error

	// UnsavePlace removes a place from the saved set. Removing an absent
	// entry is a no-op.
	UnsavePlace(ctx context.Context, userID id.UserID, placeID id.PlaceID) error

	// SavedPlaces lists the user's saved place ids in save order.
	SavedPlaces(ctx context.Context, userID id.UserID) ([]id.PlaceID, error)

	// UnsavePlaceForAll removes a place from every user's saved set. Called
	// when a place is deleted.
	UnsavePlaceForAll(ctx context.Context, placeID id.PlaceID) error
}
