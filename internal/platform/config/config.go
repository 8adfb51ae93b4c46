// Package config builds process configuration from environment variables so
// main stays lean. A .env file is honored when present.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"playfinder/pkg/geo"
)

// Config captures every tunable the server needs.
type Config struct {
	Addr string

	Provider ProviderConfig
	Location LocationConfig
	Cache    CacheConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// ProviderConfig points at the external place-search provider.
type ProviderConfig struct {
	BaseURL             string
	APIKey              string
	DefaultRadiusMeters int
	Timeout             time.Duration
}

// LocationConfig controls coordinate resolution.
type LocationConfig struct {
	// Fallback is used when no live or cached fix is available and when a
	// region search comes back empty. Defaults to central Stockholm.
	Fallback geo.Coordinates
	CacheTTL time.Duration
}

// CacheConfig controls search result caching.
type CacheConfig struct {
	RegionTTL time.Duration
	TextTTL   time.Duration
}

// PostgresConfig holds the store connection. Empty URL means in-memory stores.
type PostgresConfig struct {
	URL string
}

// RedisConfig holds the cache backend. Empty URL means the in-memory cache.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the optional ingest event sink. Empty broker disables it.
type KafkaConfig struct {
	Broker string
	Topic  string
}

// LoadEnv loads a .env file when one exists. Absence is not an error;
// deployment environments set variables directly.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set directly.")
	}
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr: envString("PLAYFINDER_ADDR", ":9000"),
		Provider: ProviderConfig{
			BaseURL:             envString("PLACES_URL", "https://maps.googleapis.com/maps/api/place"),
			APIKey:              os.Getenv("PLACES_API_KEY"),
			DefaultRadiusMeters: envInt("DEFAULT_RADIUS", 5000),
			Timeout:             envDuration("PLACES_TIMEOUT", 10*time.Second),
		},
		Location: LocationConfig{
			Fallback: geo.Coordinates{
				Lat: envFloat("FALLBACK_LAT", 59.3293),
				Lng: envFloat("FALLBACK_LNG", 18.0686),
			},
			CacheTTL: envDuration("LOCATION_CACHE_TTL", 15*time.Minute),
		},
		Cache: CacheConfig{
			RegionTTL: envDuration("SEARCH_CACHE_REGION_TTL", 15*time.Minute),
			TextTTL:   envDuration("SEARCH_CACHE_TEXT_TTL", time.Hour),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("POSTGRES_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Broker: os.Getenv("KAFKA_BROKER"),
			Topic:  envString("KAFKA_INGEST_TOPIC", "playfinder.places.ingested"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
