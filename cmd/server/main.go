// Command server runs the emoto presence and pairing API.
//
//	@title			Emoto Backend API
//	@version		1.0
//	@description	Presence, pairing, mood stickers, and short messages between paired users.
//	@BasePath		/api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/emoto-backend/internal/config"
	httpapi "github.com/tbourn/emoto-backend/internal/http"
	"github.com/tbourn/emoto-backend/internal/observability"
	"github.com/tbourn/emoto-backend/internal/repo"
	"github.com/tbourn/emoto-backend/internal/sysutil"
	"github.com/tbourn/emoto-backend/internal/weather"
	"github.com/tbourn/emoto-backend/internal/weather/providers"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger := sysutil.InstallLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file loaded")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath, repo.Options{Tracing: cfg.OTEL.Enabled, Silent: cfg.LogLevel != "debug"})
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}
	if n, err := repo.PurgeExpiredIdempotency(ctx, db, time.Now().UTC()); err != nil {
		logger.Warn().Err(err).Msg("purge expired idempotency keys")
	} else if n > 0 {
		logger.Info().Int64("purged", n).Msg("expired idempotency keys removed")
	}

	if cfg.Weather.APIKey == "" {
		logger.Warn().Msg("OPENWEATHER_API_KEY is empty; weather refreshes will fail and cached values are served")
	}
	provider := providers.NewOpenWeatherProvider(providers.OpenWeatherConfig{
		APIKey:     cfg.Weather.APIKey,
		BaseURL:    cfg.Weather.BaseURL,
		Units:      cfg.Weather.Units,
		MaxRetries: cfg.Weather.MaxRetries,
		Client:     &http.Client{Timeout: cfg.Weather.Timeout},
	})
	wc := weather.New(provider, cfg.Weather.Expiration,
		weather.WithTimeout(cfg.Weather.Timeout),
		weather.WithLogger(logger.With().Str("component", "weather").Logger()),
	)
	logger.Info().
		Dur("expiration", wc.Threshold()).
		Str("units", cfg.Weather.Units).
		Msg("weather cache ready")

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, wc, cfg)

	srv := &http.Server{
		Addr:              sysutil.ListenAddr(cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Str("version", version).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
