package location_test

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playfinder/internal/location"
	"playfinder/pkg/geo"
)

var stockholm = geo.Coordinates{Lat: 59.3293, Lng: 18.0686}

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestResolve_LiveFixIsCached(t *testing.T) {
	var calls atomic.Int32
	source := location.SourceFunc(func(context.Context) (geo.Coordinates, error) {
		calls.Add(1)
		return geo.Coordinates{Lat: 57.7089, Lng: 11.9746}, nil
	})
	r := location.NewResolver(source, stockholm, 15*time.Minute, discard())

	first := r.Resolve(context.Background())
	second := r.Resolve(context.Background())

	assert.Equal(t, 57.7089, first.Lat)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, calls.Load(), "fresh cached fix must not trigger a second lookup")
}

func TestResolve_FallbackOnFailureAndNeverCached(t *testing.T) {
	var calls atomic.Int32
	source := location.SourceFunc(func(context.Context) (geo.Coordinates, error) {
		calls.Add(1)
		return geo.Coordinates{}, context.DeadlineExceeded
	})
	r := location.NewResolver(source, stockholm, 15*time.Minute, discard())

	assert.Equal(t, stockholm, r.Resolve(context.Background()))
	assert.Equal(t, stockholm, r.Resolve(context.Background()))
	assert.EqualValues(t, 2, calls.Load(), "fallback must not be cached, each call retries live resolution")
}

func TestResolve_FallbackOnInvalidFix(t *testing.T) {
	source := location.SourceFunc(func(context.Context) (geo.Coordinates, error) {
		return geo.Coordinates{Lat: 120, Lng: 500}, nil
	})
	r := location.NewResolver(source, stockholm, 15*time.Minute, discard())

	assert.Equal(t, stockholm, r.Resolve(context.Background()))
}

func TestResolve_SinglePendingLookup(t *testing.T) {
	gate := make(chan struct{})
	var calls atomic.Int32
	source := location.SourceFunc(func(context.Context) (geo.Coordinates, error) {
		calls.Add(1)
		<-gate
		return geo.Coordinates{Lat: 55.6050, Lng: 13.0038}, nil
	})
	r := location.NewResolver(source, stockholm, 15*time.Minute, discard())

	const waiters = 8
	results := make([]geo.Coordinates, waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load(), "concurrent callers must share one pending lookup")
	for _, got := range results {
		assert.Equal(t, 55.6050, got.Lat)
	}
}

func TestResolve_CacheExpiryTriggersNewLookup(t *testing.T) {
	var calls atomic.Int32
	source := location.SourceFunc(func(context.Context) (geo.Coordinates, error) {
		calls.Add(1)
		return geo.Coordinates{Lat: 57.7089, Lng: 11.9746}, nil
	})
	r := location.NewResolver(source, stockholm, time.Nanosecond, discard())

	r.Resolve(context.Background())
	time.Sleep(time.Millisecond)
	r.Resolve(context.Background())

	assert.EqualValues(t, 2, calls.Load())
}

func TestFixedSource(t *testing.T) {
	src := location.FixedSource{Coords: stockholm, Latency: time.Millisecond}
	got, err := src.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stockholm, got)
}
