// Command server runs the Maple backend: a JSON API that registers users,
// reconciles federated identities, and turns YouTube links into structured
// summaries stored in a per-user history.
//
// Startup order:
//  1. Load .env (best effort) and validated configuration
//  2. Configure zerolog (level, optional pretty console output)
//  3. Set up OpenTelemetry tracing (no-op unless enabled)
//  4. Connect to MongoDB and ensure user indexes
//  5. Build external clients (identity verifier, video catalog, generator)
//  6. Mount routes and serve with graceful shutdown
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

	"github.com/maple-video/maple-backend/internal/auth"
	"github.com/maple-video/maple-backend/internal/config"
	"github.com/maple-video/maple-backend/internal/gemini"
	httpapi "github.com/maple-video/maple-backend/internal/http"
	"github.com/maple-video/maple-backend/internal/observability"
	"github.com/maple-video/maple-backend/internal/repo"
	"github.com/maple-video/maple-backend/internal/sysutil"
	"github.com/maple-video/maple-backend/internal/youtube"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().
		Str("version", version).
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("starting maple-backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// Store
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := repo.Connect(connectCtx, cfg.Mongo.URI)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(c); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	db := client.Database(cfg.Mongo.Database)
	users := repo.NewUsers(db)

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = repo.EnsureUserIndexes(indexCtx, users.Collection())
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("user index setup failed")
	}

	// External clients
	verifier, err := auth.NewFirebaseVerifier(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase verifier setup failed")
	}

	catalog := youtube.NewClient(cfg.YouTubeAPIKey, cfg.YouTubeBaseURL, cfg.UpstreamTimeout)

	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("gemini client setup failed")
	}

	sessions := auth.NewSessionManager(
		cfg.Session.Secret,
		cfg.Session.TTL,
		cfg.Session.CookieName,
		cfg.Session.CookieSecure,
	)

	// HTTP
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, users, verifier, sessions, catalog, generator, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
