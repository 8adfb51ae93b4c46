// Package ingest persists provider search results in the background so the
// search path never waits on the database.
package ingest

import (
	"context"
	"log/slog"

	"playfinder/internal/place/models"
	"playfinder/internal/place/store"
)

// Indexer receives persisted places for the nearby index.
type Indexer interface {
	Upsert(place models.Place)
}

// Publisher emits ingestion events for downstream consumers.
type Publisher interface {
	PublishIngested(ctx context.Context, places []models.Place) error
}

// Worker consumes place batches from an inbox channel and persists them.
// Everything it does is best effort: a failed batch is logged and dropped,
// never retried into the search path.
type Worker struct {
	store     store.Store
	index     Indexer
	publisher Publisher
	logger    *slog.Logger
	inbox     chan []models.Place
}

// NewWorker sizes the inbox so short bursts of searches don't drop batches.
func NewWorker(placeStore store.Store, index Indexer, publisher Publisher, logger *slog.Logger, buffer int) *Worker {
	if buffer <= 0 {
		buffer = 64
	}
	return &Worker{
		store:     placeStore,
		index:     index,
		publisher: publisher,
		logger:    logger,
		inbox:     make(chan []models.Place, buffer),
	}
}

// Enqueue hands a batch to the worker without blocking. When the inbox is
// full the batch is dropped; the same places will come around again on the
// next cache miss.
func (w *Worker) Enqueue(places []models.Place) {
	if len(places) == 0 {
		return
	}
	select {
	case w.inbox <- places:
	default:
		w.logger.Warn("ingest inbox full, dropping batch", "count", len(places))
	}
}

// Run processes batches until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case places := <-w.inbox:
			w.process(ctx, places)
		}
	}
}

func (w *Worker) process(ctx context.Context, places []models.Place) {
	persisted, failures := w.store.UpsertProviderPlaces(ctx, places)
	for _, err := range failures {
		w.logger.WarnContext(ctx, "failed to persist place", "error", err)
	}

	if w.index != nil {
		for _, place := range persisted {
			w.index.Upsert(place)
		}
	}

	if w.publisher != nil && len(persisted) > 0 {
		if err := w.publisher.PublishIngested(ctx, persisted); err != nil {
			w.logger.WarnContext(ctx, "failed to publish ingest event", "error", err)
		}
	}
}
