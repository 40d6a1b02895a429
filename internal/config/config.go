// Package config loads the server configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port          int
	AdminUsername string
	// AdminPassword seeds the document's password hash on first run. It is
	// never compared against after the document exists.
	AdminPassword string

	// Storage selection: "file" (default) or "s3".
	StorageBackend string
	DataFile       string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	Bucket         string

	// Geocoding
	GeocodeCountry  string
	GeocodeInterval time.Duration

	// AddressSuffix is the canonical location suffix appended to every
	// address text. Empty disables suffix normalization.
	AddressSuffix string
	FallbackLat   float64
	FallbackLon   float64

	LogLevel string
}

// Load reads configuration from the environment. A missing .env file is not
// an error; missing required variables are.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, assuming environment variables are set directly")
	}

	cfg := &Config{
		Port:           getEnvInt("PORT", 3000),
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		StorageBackend: getEnv("STORAGE_BACKEND", "file"),
		DataFile:       getEnv("DATA_FILE", "data.json"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		Bucket:         getEnv("BUCKET_NAME", "eventmap"),
		GeocodeCountry: getEnv("GEOCODE_COUNTRY", "au"),
		AddressSuffix:  os.Getenv("ADDRESS_SUFFIX"),
		FallbackLat:    getEnvFloat("FALLBACK_LAT", -34.3556),
		FallbackLon:    getEnvFloat("FALLBACK_LON", 146.9),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	interval, err := time.ParseDuration(getEnv("GEOCODE_INTERVAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEOCODE_INTERVAL: %w", err)
	}
	cfg.GeocodeInterval = interval

	if cfg.AdminUsername == "" {
		return nil, fmt.Errorf("environment variable ADMIN_USERNAME not set")
	}
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("environment variable ADMIN_PASSWORD not set")
	}
	if cfg.StorageBackend != "file" && cfg.StorageBackend != "s3" {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Warn().Str("key", key).Str("value", val).Msg("not an integer, using default")
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", val).Msg("not a number, using default")
		return fallback
	}
	return f
}
