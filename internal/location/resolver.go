// Package location resolves a best-effort coordinate fix for requests that
// carry none of their own.
package location

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"playfinder/pkg/geo"
)

// Source attempts a live location fix (device geolocation relay, IP lookup,
// whatever the deployment wires in). Implementations may block; the resolver
// guarantees a single outstanding call.
type Source interface {
	Current(ctx context.Context) (geo.Coordinates, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (geo.Coordinates, error)

func (f SourceFunc) Current(ctx context.Context) (geo.Coordinates, error) { return f(ctx) }

// FixedSource returns deterministic coordinates after a configurable latency,
// mimicking a real lookup in development and tests.
type FixedSource struct {
	Coords  geo.Coordinates
	Latency time.Duration
}

func (s FixedSource) Current(_ context.Context) (geo.Coordinates, error) {
	time.Sleep(s.Latency)
	return s.Coords, nil
}

type cachedFix struct {
	coords     geo.Coordinates
	capturedAt time.Time
}

// Resolver produces usable coordinates, always. A fresh cached fix wins; then
// one live lookup; then the configured fallback region. The fallback is never
// cached as if it were a live fix, so the next call retries live resolution.
type Resolver struct {
	source   Source
	fallback geo.Coordinates
	ttl      time.Duration
	logger   *slog.Logger

	group singleflight.Group

	mu    sync.Mutex
	fix   *cachedFix
	clock func() time.Time
}

func NewResolver(source Source, fallback geo.Coordinates, ttl time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		source:   source,
		fallback: fallback,
		ttl:      ttl,
		logger:   logger,
		clock:    time.Now,
	}
}

// Resolve never fails. Concurrent calls while a live lookup is pending await
// that same lookup instead of issuing duplicates.
func (r *Resolver) Resolve(ctx context.Context) geo.Coordinates {
	if coords, ok := r.cached(); ok {
		return coords
	}

	result, err, _ := r.group.Do("live", func() (any, error) {
		coords, err := r.source.Current(context.WithoutCancel(ctx))
		if err != nil {
			return geo.Coordinates{}, err
		}
		if !coords.Valid() {
			return geo.Coordinates{}, errInvalidFix
		}
		r.cache(coords)
		return coords, nil
	})
	if err != nil {
		r.logger.Warn("live location lookup failed, using fallback region", "error", err)
		return r.fallback
	}
	return result.(geo.Coordinates)
}

// Fallback exposes the configured fallback region for the empty-result
// re-query policy.
func (r *Resolver) Fallback() geo.Coordinates {
	return r.fallback
}

func (r *Resolver) cached() (geo.Coordinates, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fix == nil {
		return geo.Coordinates{}, false
	}
	if r.clock().Sub(r.fix.capturedAt) >= r.ttl {
		r.fix = nil
		return geo.Coordinates{}, false
	}
	return r.fix.coords, true
}

func (r *Resolver) cache(coords geo.Coordinates) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fix = &cachedFix{coords: coords, capturedAt: r.clock()}
}

var errInvalidFix = errors.New("source returned out-of-range coordinates")
