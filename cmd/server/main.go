package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"eventmap/internal/api"
	"eventmap/internal/auth"
	"eventmap/internal/config"
	"eventmap/internal/service"
	"eventmap/internal/storage"
	"eventmap/pkg/geocode"
	"eventmap/pkg/graceful"
)

const sessionTTL = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	store, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	if err := service.Bootstrap(ctx, store, cfg.AdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("failed to bootstrap document")
	}

	verifier, err := auth.NewVerifier(cfg.AdminUsername)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize credential verifier")
	}
	sessions := auth.NewSessions(sessionTTL)
	go purgeSessions(ctx, sessions, logger)

	geocoder := geocode.New(cfg.GeocodeCountry, cfg.GeocodeInterval)
	normalizer := service.NewNormalizer(cfg.AddressSuffix)

	handler := api.NewHandler(
		store,
		service.NewAddressService(store, geocoder, normalizer, logger),
		service.NewRulesService(store),
		service.NewPasswordService(store),
		sessions,
		verifier,
		logger,
	)
	router := api.NewRouter(handler, api.DefaultRouterConfig(), logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// No write timeout: a save batch with N new addresses legitimately
		// holds its request for at least N seconds of geocoding.
	}

	go func() {
		logger.Info().Int("port", cfg.Port).Str("storage", cfg.StorageBackend).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
	logger.Info().Msg("server stopped")
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Store(ctx, storage.S3Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.Bucket,
		})
	}
	return storage.NewFileStore(cfg.DataFile), nil
}

// purgeSessions drops expired sessions so the map does not grow without
// bound between sign-ins.
func purgeSessions(ctx context.Context, sessions *auth.Sessions, logger zerolog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.Purge(); removed > 0 {
				logger.Debug().Int("removed", removed).Msg("purged expired sessions")
			}
		}
	}
}
