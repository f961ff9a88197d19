package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/foldspace-protocol/foldspace/internal/api"
	"github.com/foldspace-protocol/foldspace/internal/config"
	"github.com/foldspace-protocol/foldspace/internal/handlers"
	"github.com/foldspace-protocol/foldspace/internal/identity"
	"github.com/foldspace-protocol/foldspace/internal/journal"
	"github.com/foldspace-protocol/foldspace/internal/knowledge"
	"github.com/foldspace-protocol/foldspace/internal/mailbox"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Missing Agentverse credentials degrade features, never crash.
	if cfg.AgentverseAPIKey == "" {
		logger.Warn().Msg("AGENTVERSE_API_KEY is not configured; Agentverse features will be limited")
	}
	if os.Getenv("AGENTVERSE_BASE_URL") == "" {
		logger.Warn().Msg("AGENTVERSE_BASE_URL is not configured; default Agentverse URL will be assumed")
	}

	// Derive the signing identity from the seed phrase, if present.
	var agentID *identity.Identity
	if cfg.AgentSeedPhrase == "" {
		logger.Warn().Msg("AGENT_SEED_PHRASE is not configured; outbound chat replies will be skipped")
	} else {
		var err error
		agentID, err = identity.FromSeed(cfg.AgentSeedPhrase, 0)
		if err != nil {
			logger.Error().Err(err).Msg("failed to derive agent identity from AGENT_SEED_PHRASE")
		} else {
			logger.Info().Str("address", agentID.Address()).Msg("agent identity loaded")
		}
	}

	// Optional delivery journal (postgres preferred, sqlite fallback)
	var jnl journal.Journal
	if cfg.DatabaseURL != "" {
		pg, err := journal.NewPostgresJournal(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pg.Close()
		jnl = pg
		logger.Info().Msg("delivery journal: PostgreSQL")
	} else if cfg.SQLitePath != "" {
		sq, err := journal.NewSQLiteJournal(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		defer sq.Close()
		jnl = sq
		logger.Info().Str("path", cfg.SQLitePath).Msg("delivery journal: SQLite")
	}

	// Optional Redis for rate limiting
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		logger.Info().Msg("connected to Redis")
	}

	kb := knowledge.MustLoad()
	mb := mailbox.NewClient(cfg.SubmitURL(), cfg.AgentverseAPIKey, logger)
	h := handlers.NewHandler(cfg, agentID, mb, jnl, kb, rdb, logger)

	// Create router
	router := api.NewRouter(cfg, h, rdb, logger)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("mailbox", cfg.SubmitURL()).
			Msg("starting Foldspace adapter")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
