// Package store persists places. Implementations must make the provider
// dedup invariant hold: at most one place per external id with
// source=provider, no matter how often the same record is re-ingested or how
// many requests ingest it concurrently.
package store

import (
	"context"

	"playfinder/internal/place/models"
	id "playfinder/pkg/domain"
)

// Store is interface-driven so services stay testable and the in-memory and
// Postgres implementations can be swapped without rewiring business code.
type Store interface {
	// UpsertProviderPlaces inserts provider-sourced places that are not yet
	// stored and returns the persisted row for every input, existing rows
	// included. Already-present records are left untouched: provider data in
	// the store is authoritative until removed. Individual failures are
	// collected and returned; they never abort the rest of the batch.
	UpsertProviderPlaces(ctx context.Context, places []models.Place) ([]models.Place, []error)

	// Insert stores a user-submitted place.
	Insert(ctx context.Context, place models.Place) error

	// FindByID returns sentinel.ErrNotFound when no such place exists.
	FindByID(ctx context.Context, placeID id.PlaceID) (models.Place, error)

	// FindByExternalID looks up a provider-sourced place by the provider's
	// identifier. Returns sentinel.ErrNotFound on miss.
	FindByExternalID(ctx context.Context, externalID string) (models.Place, error)

	// Delete removes a place. Returns sentinel.ErrNotFound when absent.
	Delete(ctx context.Context, placeID id.PlaceID) error

	// List returns all stored places. Used to warm the nearby index at boot.
	List(ctx context.Context) ([]models.Place, error)
}
