package store

import (
	"context"
	"sync"

	"playfinder/internal/place/models"
	id "playfinder/pkg/domain"
	"playfinder/pkg/platform/sentinel"
)

// InMemory keeps places in maps guarded by one mutex. It intentionally favors
// clarity over performance; the mutex also serializes concurrent upserts on
// the same external id, which is the dedup-critical path.
type InMemory struct {
	mu         sync.RWMutex
	places     map[id.PlaceID]models.Place
	byExternal map[string]id.PlaceID
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		places:     make(map[id.PlaceID]models.Place),
		byExternal: make(map[string]id.PlaceID),
	}
}

func (s *InMemory) UpsertProviderPlaces(_ context.Context, places []models.Place) ([]models.Place, []error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	persisted := make([]models.Place, 0, len(places))
	var failures []error
	for _, place := range places {
		if existingID, ok := s.byExternal[place.ExternalID]; ok {
			persisted = append(persisted, s.places[existingID])
			continue
		}
		s.places[place.ID] = place
		s.byExternal[place.ExternalID] = place.ID
		persisted = append(persisted, place)
	}
	return persisted, failures
}

func (s *InMemory) Insert(_ context.Context, place models.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.places[place.ID] = place
	return nil
}

func (s *InMemory) FindByID(_ context.Context, placeID id.PlaceID) (models.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if place, ok := s.places[placeID]; ok {
		return place, nil
	}
	return models.Place{}, sentinel.ErrNotFound
}

func (s *InMemory) FindByExternalID(_ context.Context, externalID string) (models.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if placeID, ok := s.byExternal[externalID]; ok {
		return s.places[placeID], nil
	}
	return models.Place{}, sentinel.ErrNotFound
}

func (s *InMemory) Delete(_ context.Context, placeID id.PlaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	place, ok := s.places[placeID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.places, placeID)
	if place.ExternalID != "" {
		delete(s.byExternal, place.ExternalID)
	}
	return nil
}

func (s *InMemory) List(_ context.Context) ([]models.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Place, 0, len(s.places))
	for _, place := range s.places {
		out = append(out, place)
	}
	return out, nil
}
