// Package service implements place detail lookup, user submissions, and the
// nearby query on top of the store and the geo index.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"playfinder/internal/place/models"
	"playfinder/internal/place/normalize"
	"playfinder/internal/place/store"
	"playfinder/internal/provider"
	dErrors "playfinder/pkg/domain-errors"
	id "playfinder/pkg/domain"
	"playfinder/pkg/geo"
	"playfinder/pkg/platform/sentinel"
)

// Indexer is the slice of the geo index the service mutates and queries.
type Indexer interface {
	Upsert(place models.Place)
	Remove(placeID id.PlaceID)
	Within(center geo.Coordinates, radiusMeters int) []models.Place
	Nearest(center geo.Coordinates, k int) []models.Place
}

// Enqueuer hands provider places to the background persistence worker.
type Enqueuer interface {
	Enqueue(places []models.Place)
}

// SavedRelation is the user-side saved-places relation. Removing a place
// purges it for everyone; removing a shared provider record only clears the
// caller's own save.
type SavedRelation interface {
	UnsavePlace(ctx context.Context, userID id.UserID, placeID id.PlaceID) error
	UnsavePlaceForAll(ctx context.Context, placeID id.PlaceID) error
}

// Service holds the place business rules.
type Service struct {
	store    store.Store
	provider provider.Client
	index    Indexer
	ingest   Enqueuer
	saved    SavedRelation
	logger   *slog.Logger
	now      func() time.Time
}

func New(placeStore store.Store, client provider.Client, index Indexer, ingest Enqueuer, saved SavedRelation, logger *slog.Logger) *Service {
	return &Service{
		store:    placeStore,
		provider: client,
		index:    index,
		ingest:   ingest,
		saved:    saved,
		logger:   logger,
		now:      time.Now,
	}
}

// Detail returns a place by the provider's external identifier. The store is
// consulted first; on miss the provider is asked directly and the fetched
// place is queued for persistence.
func (s *Service) Detail(ctx context.Context, externalID string) (models.Place, error) {
	if externalID == "" {
		return models.Place{}, dErrors.New(dErrors.CodeInvalidInput, "external id is required")
	}

	place, err := s.store.FindByExternalID(ctx, externalID)
	if err == nil {
		return place, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return models.Place{}, fmt.Errorf("find by external id: %w", err)
	}

	record, err := s.provider.Details(ctx, externalID)
	if err != nil {
		if provider.IsNotFound(err) {
			return models.Place{}, dErrors.New(dErrors.CodeNotFound, "playground not found")
		}
		return models.Place{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "place provider unavailable")
	}

	place, err = normalize.Record(*record)
	if err != nil {
		return models.Place{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "provider returned an unusable record")
	}

	if s.ingest != nil {
		s.ingest.Enqueue([]models.Place{place})
	}
	return place, nil
}

// SubmitInput is a user-contributed playground.
type SubmitInput struct {
	Name        string
	Description string
	Address     string
	Facilities  []string
	Coords      *geo.Coordinates
}

// Submit stores a user-contributed place. A submission without coordinates is
// stored with the unset-location sentinel and stays out of the nearby index.
func (s *Service) Submit(ctx context.Context, userID id.UserID, input SubmitInput) (models.Place, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Place{}, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if input.Coords != nil && !input.Coords.Valid() {
		return models.Place{}, dErrors.New(dErrors.CodeInvalidInput, "lat/lng out of range")
	}

	location := geo.Point{Type: "Point"}
	if input.Coords != nil {
		location = geo.NewPoint(*input.Coords)
	}
	facilities := input.Facilities
	if facilities == nil {
		facilities = []string{}
	}

	place := models.Place{
		ID:          id.NewPlaceID(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Address:     strings.TrimSpace(input.Address),
		Source:      models.SourceUserSubmitted,
		Facilities:  facilities,
		Rating:      models.RatingMin,
		Location:    location,
		PostedBy:    &userID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Insert(ctx, place); err != nil {
		return models.Place{}, fmt.Errorf("insert place: %w", err)
	}

	if s.index != nil {
		s.index.Upsert(place)
	}
	s.logger.InfoContext(ctx, "playground submitted", "place_id", place.ID, "user_id", userID)
	return place, nil
}

// Remove deletes a user-submitted place. Only the submitter may remove it.
// For provider-sourced places the shared record stays and only the caller's
// save is removed.
func (s *Service) Remove(ctx context.Context, userID id.UserID, placeID id.PlaceID) error {
	place, err := s.store.FindByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "playground not found")
		}
		return fmt.Errorf("find place: %w", err)
	}

	// Provider records are shared; removing one only clears the caller's
	// save, the record itself stays.
	if place.Source != models.SourceUserSubmitted {
		if s.saved == nil {
			return nil
		}
		if err := s.saved.UnsavePlace(ctx, userID, placeID); err != nil {
			return fmt.Errorf("unsave place: %w", err)
		}
		return nil
	}
	if place.PostedBy == nil || *place.PostedBy != userID {
		return dErrors.New(dErrors.CodeForbidden, "only the submitter can remove a playground")
	}

	if err := s.store.Delete(ctx, placeID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "playground not found")
		}
		return fmt.Errorf("delete place: %w", err)
	}

	if s.index != nil {
		s.index.Remove(placeID)
	}
	if s.saved != nil {
		if err := s.saved.UnsavePlaceForAll(ctx, placeID); err != nil {
			s.logger.WarnContext(ctx, "failed to purge saved relation", "place_id", placeID, "error", err)
		}
	}
	return nil
}

// NearRequest is a nearby query. Radius and Limit are alternatives: a radius
// bounds by distance, a limit by count.
type NearRequest struct {
	Coords       geo.Coordinates
	RadiusMeters int
	Limit        int
}

// Near answers from the in-memory index only; it never calls the provider.
func (s *Service) Near(ctx context.Context, req NearRequest) ([]models.Place, error) {
	if !req.Coords.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "lat/lng out of range")
	}
	if s.index == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "nearby index not available")
	}

	var places []models.Place
	if req.RadiusMeters > 0 {
		places = s.index.Within(req.Coords, req.RadiusMeters)
		if req.Limit > 0 && len(places) > req.Limit {
			places = places[:req.Limit]
		}
	} else {
		limit := req.Limit
		if limit <= 0 {
			limit = 20
		}
		places = s.index.Nearest(req.Coords, limit)
	}
	if places == nil {
		places = []models.Place{}
	}
	return places, nil
}

// FindByID exposes the store lookup for collaborating services.
func (s *Service) FindByID(ctx context.Context, placeID id.PlaceID) (models.Place, error) {
	return s.store.FindByID(ctx, placeID)
}
