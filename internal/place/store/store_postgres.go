package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"playfinder/internal/place/models"
	id "playfinder/pkg/domain"
	"playfinder/pkg/geo"
	"playfinder/pkg/platform/sentinel"
)

// Schema creates the places table. The partial unique index is what makes
// provider re-ingestion idempotent: concurrent inserts for the same external
// id race on the index and the loser re-reads the winner's row.
const Schema = `
CREATE TABLE IF NOT EXISTS places (
	id          UUID PRIMARY KEY,
	external_id TEXT,
	name        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	address     TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL,
	facilities  TEXT[] NOT NULL DEFAULT '{}',
	rating      DOUBLE PRECISION NOT NULL DEFAULT 1,
	lng         DOUBLE PRECISION NOT NULL DEFAULT 0,
	lat         DOUBLE PRECISION NOT NULL DEFAULT 0,
	posted_by   UUID,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS places_provider_external_id
	ON places (external_id) WHERE source = 'provider';
`

// Postgres persists places with pgx.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const placeColumns = `id, external_id, name, description, address, source, facilities, rating, lng, lat, posted_by, created_at`

func (s *Postgres) UpsertProviderPlaces(ctx context.Context, places []models.Place) ([]models.Place, []error) {
	persisted := make([]models.Place, 0, len(places))
	var failures []error
	for _, place := range places {
		stored, err := s.upsertOne(ctx, place)
		if err != nil {
			failures = append(failures, fmt.Errorf("upsert %s: %w", place.ExternalID, err))
			continue
		}
		persisted = append(persisted, stored)
	}
	return persisted, failures
}

// upsertOne is insert-if-absent: ON CONFLICT DO NOTHING keeps the stored row
// authoritative, and the follow-up select returns whichever row won.
func (s *Postgres) upsertOne(ctx context.Context, place models.Place) (models.Place, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO places (`+placeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (external_id) WHERE source = 'provider' DO NOTHING`,
		uuid.UUID(place.ID), place.ExternalID, place.Name, place.Description,
		place.Address, string(place.Source), place.Facilities, place.Rating,
		place.Location.Coordinates[0], place.Location.Coordinates[1],
		postedBy(place), place.CreatedAt,
	)
	if err != nil {
		return models.Place{}, err
	}
	if tag.RowsAffected() == 1 {
		return place, nil
	}
	return s.FindByExternalID(ctx, place.ExternalID)
}

func (s *Postgres) Insert(ctx context.Context, place models.Place) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO places (`+placeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.UUID(place.ID), place.ExternalID, place.Name, place.Description,
		place.Address, string(place.Source), place.Facilities, place.Rating,
		place.Location.Coordinates[0], place.Location.Coordinates[1],
		postedBy(place), place.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert place: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, placeID id.PlaceID) (models.Place, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+placeColumns+` FROM places WHERE id = $1`, uuid.UUID(placeID))
	return scanPlace(row)
}

func (s *Postgres) FindByExternalID(ctx context.Context, externalID string) (models.Place, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+placeColumns+` FROM places WHERE external_id = $1 AND source = 'provider'`,
		externalID)
	return scanPlace(row)
}

func (s *Postgres) Delete(ctx context.Context, placeID id.PlaceID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM places WHERE id = $1`, uuid.UUID(placeID))
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) List(ctx context.Context) ([]models.Place, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+placeColumns+` FROM places`)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()

	var places []models.Place
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	return places, rows.Err()
}

func postedBy(place models.Place) *uuid.UUID {
	if place.PostedBy == nil {
		return nil
	}
	u := uuid.UUID(*place.PostedBy)
	return &u
}

func scanPlace(row pgx.Row) (models.Place, error) {
	var (
		place      models.Place
		placeUUID  uuid.UUID
		externalID *string
		source     string
		lng, lat   float64
		posted     *uuid.UUID
	)
	err := row.Scan(&placeUUID, &externalID, &place.Name, &place.Description,
		&place.Address, &source, &place.Facilities, &place.Rating,
		&lng, &lat, &posted, &place.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Place{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Place{}, fmt.Errorf("scan place: %w", err)
	}

	place.ID = id.PlaceID(placeUUID)
	if externalID != nil {
		place.ExternalID = *externalID
	}
	place.Source = models.Source(source)
	place.Location = geo.Point{Type: "Point", Coordinates: [2]float64{lng, lat}}
	if posted != nil {
		userID := id.UserID(*posted)
		place.PostedBy = &userID
	}
	if place.Facilities == nil {
		place.Facilities = []string{}
	}
	return place, nil
}
