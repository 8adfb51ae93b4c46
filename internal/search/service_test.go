package search_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playfinder/internal/location"
	"playfinder/internal/place/models"
	"playfinder/internal/provider"
	"playfinder/internal/search"
	"playfinder/internal/search/cache"
	dErrors "playfinder/pkg/domain-errors"
	"playfinder/pkg/geo"
)

var stockholm = geo.Coordinates{Lat: 59.3293, Lng: 18.0686}

type fakeProvider struct {
	mu      sync.Mutex
	queries []provider.Query
	results map[provider.Mode][]provider.Record
	err     error
}

func (f *fakeProvider) Search(_ context.Context, q provider.Query) ([]provider.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[q.Mode], nil
}

func (f *fakeProvider) Details(context.Context, string) (*provider.Record, error) {
	return nil, provider.NewError(provider.ErrorNotFound, "not wired in this fake", nil)
}

func (f *fakeProvider) recorded() []provider.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.Query(nil), f.queries...)
}

type fakeIngestor struct {
	mu      sync.Mutex
	batches [][]models.Place
}

func (f *fakeIngestor) Enqueue(places []models.Place) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, places)
}

func record(externalID, name string, lat, lng float64) provider.Record {
	return provider.Record{
		PlaceID:  externalID,
		Name:     name,
		Vicinity: "Somewhere 1",
		Geometry: &provider.Geometry{Location: geo.Coordinates{Lat: lat, Lng: lng}},
		Rating:   4.2,
	}
}

func newService(t *testing.T, client provider.Client, ingest search.Ingestor) *search.Service {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	resolver := location.NewResolver(
		location.SourceFunc(func(context.Context) (geo.Coordinates, error) {
			return geo.Coordinates{}, context.DeadlineExceeded
		}),
		stockholm, 15*time.Minute, logger,
	)
	return search.NewService(
		resolver,
		cache.New(cache.NewInMemoryStore(), logger),
		client,
		ingest,
		nil,
		logger,
		search.Config{DefaultRadiusMeters: 5000, RegionTTL: 15 * time.Minute, TextTTL: time.Hour},
	)
}

func TestSearch_TextQueryWinsOverCoordinates(t *testing.T) {
	client := &fakeProvider{results: map[provider.Mode][]provider.Record{
		provider.ModeText: {record("ext-1", "Vasaparken", 59.3431, 18.0437)},
	}}
	svc := newService(t, client, nil)

	coords := geo.Coordinates{Lat: 57.7, Lng: 11.97}
	places, err := svc.Search(context.Background(), search.Request{Text: "Vasaparken", Coords: &coords})

	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Vasaparken", places[0].Name)
	queries := client.recorded()
	require.Len(t, queries, 1)
	assert.Equal(t, provider.ModeText, queries[0].Mode)
}

func TestSearch_SecondCallServedFromCache(t *testing.T) {
	client := &fakeProvider{results: map[provider.Mode][]provider.Record{
		provider.ModeRegion: {record("ext-1", "Humlegarden", 59.3422, 18.0724)},
	}}
	svc := newService(t, client, nil)
	coords := geo.Coordinates{Lat: 59.3422, Lng: 18.0724}
	req := search.Request{Coords: &coords}

	first, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, client.recorded(), 1, "second identical search must not hit the provider")
}

func TestSearch_NearbyCoordinatesShareCacheEntry(t *testing.T) {
	client := &fakeProvider{results: map[provider.Mode][]provider.Record{
		provider.ModeRegion: {record("ext-1", "Humlegarden", 59.3422, 18.0724)},
	}}
	svc := newService(t, client, nil)

	a := geo.Coordinates{Lat: 59.34221, Lng: 18.07241}
	b := geo.Coordinates{Lat: 59.34219, Lng: 18.07239}
	_, err := svc.Search(context.Background(), search.Request{Coords: &a})
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), search.Request{Coords: &b})
	require.NoError(t, err)

	assert.Len(t, client.recorded(), 1)
}

func TestSearch_EmptyResultTriggersOneFallbackRequery(t *testing.T) {
	client := &fakeProvider{results: map[provider.Mode][]provider.Record{}}
	svc := newService(t, client, nil)
	coords := geo.Coordinates{Lat: 57.7089, Lng: 11.9746}

	places, err := svc.Search(context.Background(), search.Request{Coords: &coords})

	require.NoError(t, err)
	assert.Empty(t, places)
	queries := client.recorded()
	require.Len(t, queries, 2)
	assert.Equal(t, coords, queries[0].Coords)
	assert.Equal(t, stockholm, queries[1].Coords, "re-query must target the fallback region")
	assert.Equal(t, 5000, queries[1].RadiusMeters)
}

func TestSearch_NoRequeryWhenAlreadyAtFallbackRegion(t *testing.T) {
	client := &fakeProvider{results: map[provider.Mode][]provider.Record{}}
	svc := newService(t, client, nil)
	coords := stockholm

	places, err := svc.Search(context.Background(), search.Request{Coords: &coords})

	require.NoError(t, err)
	assert.Empty(t, places)
	assert.Len(t, client.recorded(), 1)
}

func TestSearch_EmptyTextResultStaysEmpty(t *testing.T) {
	// A text query scoped to a place with no playgrounds must answer empty,
	// not smuggle in fallback-region results under the text cache key.
	client := &fakeProvider{results: map[provider.Mode][]provider.Record{
		provider.ModeRegion: {record("ext-9", "Rålambshovsparken", 59.3304, 18.0244)},
	}}
	svc := newService(t, client, nil)

	places, err := svc.Search(context.Background(), search.Request{Text: "nowhere special"})

	require.NoError(t, err)
	assert.Empty(t, places)
	queries := client.recorded()
	require.Len(t, queries, 1)
	assert.Equal(t, provider.ModeText, queries[0].Mode)
}

func TestSearch_ProviderFailureSurfacesAsUnavailable(t *testing.T) {
	client := &fakeProvider{err: provider.NewError(provider.ErrorOutage, "provider status: REQUEST_DENIED", nil)}
	svc := newService(t, client, nil)
	coords := geo.Coordinates{Lat: 59.33, Lng: 18.07}

	_, err := svc.Search(context.Background(), search.Request{Coords: &coords})

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestSearch_MalformedRecordsDroppedRestReturned(t *testing.T) {
	client := &fakeProvider{results: map[provider.Mode][]provider.Record{
		provider.ModeRegion: {
			record("ext-1", "Good", 59.33, 18.07),
			{PlaceID: "ext-2", Name: "No geometry"},
			{Name: "No id", Geometry: &provider.Geometry{Location: geo.Coordinates{Lat: 1, Lng: 1}}},
		},
	}}
	svc := newService(t, client, nil)
	coords := geo.Coordinates{Lat: 59.33, Lng: 18.07}

	places, err := svc.Search(context.Background(), search.Request{Coords: &coords})

	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Good", places[0].Name)
}

func TestSearch_ResultsHandedToIngestor(t *testing.T) {
	client := &fakeProvider{results: map[provider.Mode][]provider.Record{
		provider.ModeRegion: {record("ext-1", "Good", 59.33, 18.07)},
	}}
	ingest := &fakeIngestor{}
	svc := newService(t, client, ingest)
	coords := geo.Coordinates{Lat: 59.33, Lng: 18.07}

	_, err := svc.Search(context.Background(), search.Request{Coords: &coords})

	require.NoError(t, err)
	require.Len(t, ingest.batches, 1)
	assert.Equal(t, "ext-1", ingest.batches[0][0].ExternalID)
}

func TestSearch_UnresolvedLocationUsesFallbackWithoutRequery(t *testing.T) {
	client := &fakeProvider{results: map[provider.Mode][]provider.Record{}}
	svc := newService(t, client, nil)

	places, err := svc.Search(context.Background(), search.Request{})

	require.NoError(t, err)
	assert.Empty(t, places)
	queries := client.recorded()
	require.Len(t, queries, 1)
	assert.Equal(t, stockholm, queries[0].Coords)
}
