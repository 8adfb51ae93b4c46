package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playfinder/internal/place/models"
	"playfinder/internal/search"
	"playfinder/internal/search/handler"
	dErrors "playfinder/pkg/domain-errors"
	id "playfinder/pkg/domain"
	"playfinder/pkg/geo"
	"playfinder/pkg/testutil"
)

type stubService struct {
	got    search.Request
	places []models.Place
	err    error
}

func (s *stubService) Search(_ context.Context, req search.Request) ([]models.Place, error) {
	s.got = req
	return s.places, s.err
}

func newRouter(svc handler.Service) http.Handler {
	r := chi.NewRouter()
	handler.New(svc, slog.New(slog.DiscardHandler)).Register(r)
	return r
}

func TestHandleSearch_TextQuery(t *testing.T) {
	svc := &stubService{places: []models.Place{{
		ID:     id.NewPlaceID(),
		Name:   "Vasaparken",
		Source: models.SourceProvider,
	}}}
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playgrounds?query=Vasaparken", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := testutil.UnmarshalResponse[handler.SearchResponse](t, rec)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Vasaparken", resp.Playgrounds[0].Name)
	assert.Equal(t, "Vasaparken", svc.got.Text)
}

func TestHandleSearch_CoordinatesAndRadius(t *testing.T) {
	svc := &stubService{places: []models.Place{}}
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playgrounds?lat=59.33&lng=18.07&radius=2500", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got.Coords)
	assert.Equal(t, geo.Coordinates{Lat: 59.33, Lng: 18.07}, *svc.got.Coords)
	assert.Equal(t, 2500, svc.got.RadiusMeters)
}

func TestHandleSearch_BadParams(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"lat without lng", "/playgrounds?lat=59.33"},
		{"non-numeric lat", "/playgrounds?lat=abc&lng=18.07"},
		{"out of range", "/playgrounds?lat=123&lng=18.07"},
		{"negative radius", "/playgrounds?lat=59.33&lng=18.07&radius=-5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{}
			router := newRouter(svc)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleSearch_ServiceUnavailable(t *testing.T) {
	svc := &stubService{err: dErrors.New(dErrors.CodeUnavailable, "place provider unavailable")}
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playgrounds?query=park", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}
