package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playfinder/internal/geoindex"
	httpapi "playfinder/internal/http"
	"playfinder/internal/location"
	placehandler "playfinder/internal/place/handler"
	"playfinder/internal/place/ingest"
	placeservice "playfinder/internal/place/service"
	placestore "playfinder/internal/place/store"
	"playfinder/internal/platform/config"
	"playfinder/internal/platform/httpserver"
	"playfinder/internal/platform/logger"
	"playfinder/internal/platform/metrics"
	"playfinder/internal/platform/postgres"
	platformredis "playfinder/internal/platform/redis"
	"playfinder/internal/provider/googleplaces"
	"playfinder/internal/search"
	"playfinder/internal/search/cache"
	searchhandler "playfinder/internal/search/handler"
	searchmetrics "playfinder/internal/search/metrics"
	userhandler "playfinder/internal/user/handler"
	userservice "playfinder/internal/user/service"
	userstore "playfinder/internal/user/store"
	"playfinder/pkg/geo"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	config.LoadEnv()
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		places placestore.Store
		users  userstore.Store
	)
	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		for _, schema := range []string{placestore.Schema, userstore.Schema} {
			if _, err := pool.Exec(ctx, schema); err != nil {
				log.Error("schema migration failed", "error", err)
				os.Exit(1)
			}
		}
		places = placestore.NewPostgres(pool)
		users = userstore.NewPostgres(pool)
		log.Info("using postgres stores")
	} else {
		places = placestore.NewInMemory()
		users = userstore.NewInMemory()
		log.Info("no POSTGRES_URL set, using in-memory stores")
	}

	// Search cache: Redis when configured, in-memory otherwise.
	var entries cache.EntryStore
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		entries = cache.NewRedisStore(redisClient.Client)
		log.Info("using redis search cache")
	} else {
		entries = cache.NewInMemoryStore()
		log.Info("no REDIS_URL set, using in-memory search cache")
	}

	client := googleplaces.New(googleplaces.Config{
		BaseURL:             cfg.Provider.BaseURL,
		APIKey:              cfg.Provider.APIKey,
		DefaultRadiusMeters: cfg.Provider.DefaultRadiusMeters,
		Timeout:             cfg.Provider.Timeout,
	})

	// Warm the nearby index from whatever the store already holds.
	index := geoindex.New()
	if stored, err := places.List(ctx); err != nil {
		log.Warn("could not warm nearby index", "error", err)
	} else {
		index.Warm(stored)
		log.Info("nearby index warmed", "places", index.Len())
	}

	var publisher ingest.Publisher
	if cfg.Kafka.Broker != "" {
		kafkaPublisher := ingest.NewKafkaPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic)
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = kafkaPublisher
		log.Info("publishing ingest events", "topic", cfg.Kafka.Topic)
	}

	worker := ingest.NewWorker(places, index, publisher, log, 64)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("ingest worker stopped", "error", err)
		}
	}()

	// No live geolocation source is wired in server deployments; the resolver
	// falls back to the configured region until one is.
	resolver := location.NewResolver(
		location.SourceFunc(func(context.Context) (geo.Coordinates, error) {
			return geo.Coordinates{}, errors.New("no live location source configured")
		}),
		cfg.Location.Fallback,
		cfg.Location.CacheTTL,
		log,
	)

	procMetrics := metrics.New()
	searchSvc := search.NewService(
		resolver,
		cache.New(entries, log),
		client,
		worker,
		searchmetrics.New(),
		log,
		search.Config{
			DefaultRadiusMeters: cfg.Provider.DefaultRadiusMeters,
			RegionTTL:           cfg.Cache.RegionTTL,
			TextTTL:             cfg.Cache.TextTTL,
		},
	)
	userSvc := userservice.New(users, places, procMetrics, log)
	placeSvc := placeservice.New(places, client, index, worker, users, log)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:  log,
		Metrics: procMetrics,
		Auth:    userSvc,
		Search:  searchhandler.New(searchSvc, log),
		Places:  placehandler.New(placeSvc, userSvc, log),
		Users:   userhandler.New(userSvc, log),
		Health: func(ctx context.Context) map[string]string {
			components := map[string]string{}
			if pool != nil {
				components["postgres"] = "ok"
				if err := pool.Ping(ctx); err != nil {
					components["postgres"] = err.Error()
				}
			}
			if redisClient != nil {
				components["redis"] = "ok"
				if err := redisClient.Health(ctx); err != nil {
					components["redis"] = err.Error()
				}
			}
			return components
		},
	})

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("starting playfinder", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
