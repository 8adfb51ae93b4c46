package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	placemodels "playfinder/internal/place/models"
	placestore "playfinder/internal/place/store"
	"playfinder/internal/user/service"
	"playfinder/internal/user/store"
	dErrors "playfinder/pkg/domain-errors"
	id "playfinder/pkg/domain"
	"playfinder/pkg/geo"
)

func newService(t *testing.T) (*service.Service, *placestore.InMemory) {
	t.Helper()
	places := placestore.NewInMemory()
	svc := service.New(store.NewInMemory(), places, nil, slog.New(slog.DiscardHandler))
	return svc, places
}

func storedPlace(t *testing.T, places *placestore.InMemory) placemodels.Place {
	t.Helper()
	place := placemodels.Place{
		ID:       id.NewPlaceID(),
		Name:     "Vasaparken",
		Source:   placemodels.SourceProvider,
		Location: geo.NewPoint(geo.Coordinates{Lat: 59.3431, Lng: 18.0437}),
	}
	require.NoError(t, places.Insert(context.Background(), place))
	return place
}

func TestRegister(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	t.Run("creates account with hashed password and token", func(t *testing.T) {
		user, err := svc.Register(ctx, "Astrid ", " Astrid@Example.COM ", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, "Astrid", user.Name)
		assert.Equal(t, "astrid@example.com", user.Email, "email is normalized")
		assert.NotEqual(t, "hunter2hunter2", string(user.PasswordHash))
		assert.Len(t, user.AccessToken, 64, "32 random bytes hex encoded")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.Register(ctx, "Other", "astrid@example.com", "hunter2hunter2")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := svc.Register(ctx, "Astrid", "astrid@elsewhere.example", "hunter2hunter2")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, "Astrid", "astrid@example.com", "hunter2hunter2")
	require.NoError(t, err)

	t.Run("valid credentials rotate the token", func(t *testing.T) {
		user, err := svc.Login(ctx, "ASTRID@example.com", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.NotEqual(t, registered.AccessToken, user.AccessToken)

		// The previous token stops validating.
		_, err = svc.ValidateToken(ctx, registered.AccessToken)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

		got, err := svc.ValidateToken(ctx, user.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, got)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, badPassword := svc.Login(ctx, "astrid@example.com", "wrong-password")
		_, badEmail := svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
		require.Error(t, badPassword)
		require.Error(t, badEmail)
		assert.Equal(t, dErrors.MessageOf(badPassword), dErrors.MessageOf(badEmail))
		assert.True(t, dErrors.HasCode(badPassword, dErrors.CodeUnauthorized))
		assert.True(t, dErrors.HasCode(badEmail, dErrors.CodeUnauthorized))
	})
}

func TestLogout(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "Astrid", "astrid@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID))

	_, err = svc.ValidateToken(ctx, user.AccessToken)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_Empty(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ValidateToken(context.Background(), "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestSavedPlaces(t *testing.T) {
	svc, places := newService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "Astrid", "astrid@example.com", "hunter2hunter2")
	require.NoError(t, err)
	place := storedPlace(t, places)

	t.Run("save is idempotent", func(t *testing.T) {
		require.NoError(t, svc.SavePlace(ctx, user.ID, place.ID))
		require.NoError(t, svc.SavePlace(ctx, user.ID, place.ID))

		saved, err := svc.SavedPlaces(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, place.ID, saved[0].ID)
	})

	t.Run("saving a nonexistent place fails", func(t *testing.T) {
		err := svc.SavePlace(ctx, user.ID, id.NewPlaceID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("unsave is idempotent", func(t *testing.T) {
		require.NoError(t, svc.UnsavePlace(ctx, user.ID, place.ID))
		require.NoError(t, svc.UnsavePlace(ctx, user.ID, place.ID))

		saved, err := svc.SavedPlaces(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, saved)
	})

	t.Run("deleted places are skipped in listings", func(t *testing.T) {
		gone := storedPlace(t, places)
		require.NoError(t, svc.SavePlace(ctx, user.ID, gone.ID))
		require.NoError(t, places.Delete(ctx, gone.ID))

		saved, err := svc.SavedPlaces(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, saved)
	})
}
