package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"playfinder/internal/place/models"
	id "playfinder/pkg/domain"
	"playfinder/pkg/geo"
	"playfinder/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func providerPlace(externalID string) models.Place {
	return models.Place{
		ID:         id.NewPlaceID(),
		ExternalID: externalID,
		Name:       "Rålambshovsparken",
		Address:    "Kungsholmen",
		Source:     models.SourceProvider,
		Facilities: []string{"park"},
		Rating:     4.1,
		Location:   geo.NewPoint(geo.Coordinates{Lat: 59.33, Lng: 18.02}),
	}
}

// TestDedupInvariant covers the core idempotence guarantee: re-ingesting the
// same external id any number of times leaves exactly one stored place.
func (s *InMemoryStoreSuite) TestDedupInvariant() {
	ctx := context.Background()
	first := providerPlace("ext-1")

	persisted, failures := s.store.UpsertProviderPlaces(ctx, []models.Place{first})
	s.Require().Empty(failures)
	s.Require().Len(persisted, 1)
	s.Equal(first.ID, persisted[0].ID)

	// Same external id, fresh internal id: the stored row must win.
	again := providerPlace("ext-1")
	again.Name = "Renamed upstream"
	persisted, failures = s.store.UpsertProviderPlaces(ctx, []models.Place{again})
	s.Require().Empty(failures)
	s.Require().Len(persisted, 1)
	s.Equal(first.ID, persisted[0].ID, "existing record is authoritative")
	s.Equal("Rålambshovsparken", persisted[0].Name, "no overwrite of stored data")

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *InMemoryStoreSuite) TestConcurrentUpsertsSameKey() {
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.store.UpsertProviderPlaces(ctx, []models.Place{providerPlace("ext-race")})
		}()
	}
	wg.Wait()

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1, "concurrent upserts on one external id must not duplicate")
}

func (s *InMemoryStoreSuite) TestLookups() {
	ctx := context.Background()
	place := providerPlace("ext-2")
	_, failures := s.store.UpsertProviderPlaces(ctx, []models.Place{place})
	s.Require().Empty(failures)

	found, err := s.store.FindByID(ctx, place.ID)
	s.Require().NoError(err)
	s.Equal(place.ExternalID, found.ExternalID)

	found, err = s.store.FindByExternalID(ctx, "ext-2")
	s.Require().NoError(err)
	s.Equal(place.ID, found.ID)

	_, err = s.store.FindByID(ctx, id.NewPlaceID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByExternalID(ctx, "missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	place := providerPlace("ext-3")
	_, failures := s.store.UpsertProviderPlaces(ctx, []models.Place{place})
	s.Require().Empty(failures)

	s.Require().NoError(s.store.Delete(ctx, place.ID))

	_, err := s.store.FindByExternalID(ctx, "ext-3")
	s.Require().ErrorIs(err, sentinel.ErrNotFound, "external index entry removed with the place")

	s.Require().ErrorIs(s.store.Delete(ctx, place.ID), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestUserSubmissionInsert() {
	ctx := context.Background()
	userID := id.NewUserID()
	place := models.Place{
		ID:       id.NewPlaceID(),
		Name:     "Backyard slide",
		Source:   models.SourceUserSubmitted,
		Location: geo.Point{Type: "Point"},
		PostedBy: &userID,
	}
	s.Require().NoError(s.store.Insert(ctx, place))

	found, err := s.store.FindByID(ctx, place.ID)
	s.Require().NoError(err)
	s.True(found.Location.IsUnset())
}
