// Command server runs the floor-plan rendering backend: the rendering
// gateway, the submission workflow, and the persisted collections API.
//
// Startup order: environment (.env is optional), configuration, logging,
// SQLite-backed collection stores, OTel, then the HTTP server. Shutdown is
// graceful on SIGINT/SIGTERM with a bounded drain window.
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

	"github.com/planforge/render-backend/internal/config"
	httpapi "github.com/planforge/render-backend/internal/http"
	"github.com/planforge/render-backend/internal/observability"
	"github.com/planforge/render-backend/internal/progress"
	"github.com/planforge/render-backend/internal/repo"
	"github.com/planforge/render-backend/internal/store"
	"github.com/planforge/render-backend/internal/sysutil"
	"github.com/planforge/render-backend/internal/upstream"
)

// version is set at build time via -ldflags.
var version string

func main() {
	version = sysutil.FirstNonEmpty(version, "dev")

	// Local development convenience; absent in containers.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    sysutil.IsTruthy(os.Getenv("NO_COLOR")),
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database failed")
	}
	kv := repo.NewKVStore(db)

	history, err := store.NewHistoryStore(ctx, kv)
	if err != nil {
		log.Fatal().Err(err).Msg("restore history failed")
	}
	images, err := store.NewPublicImageStore(ctx, kv)
	if err != nil {
		log.Fatal().Err(err).Msg("restore public images failed")
	}
	versions, err := store.NewVersionStore(ctx, kv)
	if err != nil {
		log.Fatal().Err(err).Msg("restore versions failed")
	}

	gateway := upstream.New(cfg.Upstream.RenderURL, cfg.Upstream.VideoURL, cfg.Upstream.Timeout, log.Logger)
	simulator := progress.New(nil, nil)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, httpapi.Dependencies{
		History:  history,
		Images:   images,
		Versions: versions,
		Gateway:  gateway,
		Progress: simulator,
		Log:      log.Logger,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	simulator.Stop()

	drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownOTel(drainCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}
