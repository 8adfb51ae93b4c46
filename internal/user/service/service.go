// Package service implements account registration, opaque-token sessions, and
// the saved-playground relation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	placemodels "playfinder/internal/place/models"
	"playfinder/internal/platform/metrics"
	"playfinder/internal/user/models"
	"playfinder/internal/user/store"
	dErrors "playfinder/pkg/domain-errors"
	id "playfinder/pkg/domain"
	"playfinder/pkg/platform/sentinel"
)

// PlaceFinder resolves place ids when listing saved playgrounds and validates
// save targets.
type PlaceFinder interface {
	FindByID(ctx context.Context, placeID id.PlaceID) (placemodels.Place, error)
}

// Service holds the account business rules.
type Service struct {
	users   store.Store
	places  PlaceFinder
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func New(users store.Store, places PlaceFinder, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		users:   users,
		places:  places,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates an account and issues its first access token.
func (s *Service) Register(ctx context.Context, name, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	token, err := newToken()
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           id.NewUserID(),
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		AccessToken:  token,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.User{}, dErrors.New(dErrors.CodeConflict, "name or email already registered")
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	s.metrics.IncrementUsersCreated()
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and rotates the access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.User{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return models.User{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	token, err := newToken()
	if err != nil {
		return models.User{}, err
	}
	if err := s.users.SetToken(ctx, user.ID, token); err != nil {
		return models.User{}, fmt.Errorf("rotate token: %w", err)
	}
	user.AccessToken = token
	return user, nil
}

// Logout revokes the user's current token.
func (s *Service) Logout(ctx context.Context, userID id.UserID) error {
	if err := s.users.SetToken(ctx, userID, ""); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// ValidateToken resolves an opaque bearer token to a user id. Implements the
// middleware TokenValidator contract.
func (s *Service) ValidateToken(ctx context.Context, token string) (id.UserID, error) {
	if token == "" {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "missing access token")
	}
	user, err := s.users.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid access token")
		}
		return id.UserID{}, fmt.Errorf("find by token: %w", err)
	}
	return user.ID, nil
}

// SavePlace adds a place to the user's saved set. Saving twice is a no-op.
func (s *Service) SavePlace(ctx context.Context, userID id.UserID, placeID id.PlaceID) error {
	if _, err := s.places.FindByID(ctx, placeID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "playground not found")
		}
		return fmt.Errorf("find place: %w", err)
	}
	if err := s.users.SavePlace(ctx, userID, placeID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return fmt.Errorf("save place: %w", err)
	}
	return nil
}

// UnsavePlace removes a place from the saved set. Unsaving a place that was
// never saved is a no-op.
func (s *Service) UnsavePlace(ctx context.Context, userID id.UserID, placeID id.PlaceID) error {
	if err := s.users.UnsavePlace(ctx, userID, placeID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return fmt.Errorf("unsave place: %w", err)
	}
	return nil
}

// SavedPlaces resolves the user's saved place ids to full places. Saved ids
// whose place has since been deleted are skipped.
func (s *Service) SavedPlaces(ctx context.Context, userID id.UserID) ([]placemodels.Place, error) {
	placeIDs, err := s.users.SavedPlaces(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, fmt.Errorf("list saved: %w", err)
	}

	places := make([]placemodels.Place, 0, len(placeIDs))
	for _, placeID := range placeIDs {
		place, err := s.places.FindByID(ctx, placeID)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve saved place: %w", err)
		}
		places = append(places, place)
	}
	return places, nil
}

// NormalizeEmail lowercases and trims an email so lookups and the unique
// constraint agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
