//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"playfinder/internal/place/models"
	"playfinder/internal/place/store"
	id "playfinder/pkg/domain"
	"playfinder/pkg/geo"
	"playfinder/pkg/platform/sentinel"
	"playfinder/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T(), store.Schema)
	s.store = store.NewPostgres(s.pg.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.Pool.Exec(context.Background(), "TRUNCATE places")
	s.Require().NoError(err)
}

func makePlace(externalID string) models.Place {
	return models.Place{
		ID:         id.NewPlaceID(),
		ExternalID: externalID,
		Name:       "Tantolunden lekplats",
		Address:    "Södermalm",
		Source:     models.SourceProvider,
		Facilities: []string{"park", "point_of_interest"},
		Rating:     4.4,
		Location:   geo.NewPoint(geo.Coordinates{Lat: 59.31, Lng: 18.03}),
		CreatedAt:  time.Now().UTC(),
	}
}

func (s *PostgresStoreSuite) TestUpsertIsInsertIfAbsent() {
	ctx := context.Background()
	original := makePlace("ext-pg-1")

	persisted, failures := s.store.UpsertProviderPlaces(ctx, []models.Place{original})
	s.Require().Empty(failures)
	s.Require().Len(persisted, 1)

	drifted := makePlace("ext-pg-1")
	drifted.Rating = 2.0

	persisted, failures = s.store.UpsertProviderPlaces(ctx, []models.Place{drifted})
	s.Require().Empty(failures)
	s.Require().Len(persisted, 1)
	s.Equal(original.ID, persisted[0].ID)
	s.Equal(4.4, persisted[0].Rating, "stored provider data is authoritative")
}

// TestConcurrentUpsertsSameExternalID exercises the partial unique index as
// the serialization point for same-key races.
func (s *PostgresStoreSuite) TestConcurrentUpsertsSameExternalID() {
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, failures := s.store.UpsertProviderPlaces(ctx, []models.Place{makePlace("ext-pg-race")})
			s.Empty(failures)
		}()
	}
	wg.Wait()

	places, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(places, 1)
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	userID := id.NewUserID()
	place := makePlace("ext-pg-2")
	place.PostedBy = &userID

	_, failures := s.store.UpsertProviderPlaces(ctx, []models.Place{place})
	s.Require().Empty(failures)

	found, err := s.store.FindByExternalID(ctx, "ext-pg-2")
	s.Require().NoError(err)
	s.Equal(place.Name, found.Name)
	s.Equal(place.Location.Coordinates, found.Location.Coordinates)
	s.Require().NotNil(found.PostedBy)
	s.Equal(userID, *found.PostedBy)
}

func (s *PostgresStoreSuite) TestDeleteAndNotFound() {
	ctx := context.Background()
	place := makePlace("ext-pg-3")
	_, failures := s.store.UpsertProviderPlaces(ctx, []models.Place{place})
	s.Require().Empty(failures)

	s.Require().NoError(s.store.Delete(ctx, place.ID))
	s.Require().ErrorIs(s.store.Delete(ctx, place.ID), sentinel.ErrNotFound)

	_, err := s.store.FindByID(ctx, place.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
