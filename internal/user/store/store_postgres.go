package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"playfinder/internal/user/models"
	id "playfinder/pkg/domain"
	"playfinder/pkg/platform/sentinel"
)

// Schema creates the users table and the saved-places relation. The relation's
// composite primary key makes saves naturally idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash BYTEA NOT NULL,
	access_token  TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS users_access_token ON users (access_token);

CREATE TABLE IF NOT EXISTS saved_places (
	user_id  UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	place_id UUID NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, place_id)
);
`

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Postgres persists users with pgx.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const userColumns = `id, name, email, password_hash, access_token, created_at`

func (s *Postgres) Insert(ctx context.Context, user models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(user.ID), user.Name, user.Email, user.PasswordHash,
		nullable(user.AccessToken), user.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (models.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row)
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *Postgres) FindByToken(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, sentinel.ErrNotFound
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE access_token = $1`, token)
	return scanUser(row)
}

func (s *Postgres) SetToken(ctx context.Context, userID id.UserID, token string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET access_token = $2 WHERE id = $1`,
		uuid.UUID(userID), nullable(token))
	if err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) SavePlace(ctx context.Context, userID id.UserID, placeID id.PlaceID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO saved_places (user_id, place_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, place_id) DO NOTHING`,
		uuid.UUID(userID), uuid.UUID(placeID))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("save place: %w", err)
	}
	return nil
}

func (s *Postgres) UnsavePlace(ctx context.Context, userID id.UserID, placeID id.PlaceID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM saved_places WHERE user_id = $1 AND place_id = $2`,
		uuid.UUID(userID), uuid.UUID(placeID))
	if err != nil {
		return fmt.Errorf("unsave place: %w", err)
	}
	return nil
}

func (s *Postgres) SavedPlaces(ctx context.Context, userID id.UserID) ([]id.PlaceID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT place_id FROM saved_places WHERE user_id = $1 ORDER BY saved_at`,
		uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list saved places: %w", err)
	}
	defer rows.Close()

	var placeIDs []id.PlaceID
	for rows.Next() {
		var placeUUID uuid.UUID
		if err := rows.Scan(&placeUUID); err != nil {
			return nil, fmt.Errorf("scan saved place: %w", err)
		}
		placeIDs = append(placeIDs, id.PlaceID(placeUUID))
	}
	return placeIDs, rows.Err()
}

func (s *Postgres) UnsavePlaceForAll(ctx context.Context, placeID id.PlaceID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM saved_places WHERE place_id = $1`, uuid.UUID(placeID))
	if err != nil {
		return fmt.Errorf("unsave place for all: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user     models.User
		userUUID uuid.UUID
		token    *string
	)
	err := row.Scan(&userUUID, &user.Name, &user.Email, &user.PasswordHash,
		&token, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}

	user.ID = id.UserID(userUUID)
	if token != nil {
		user.AccessToken = *token
	}
	return user, nil
}
