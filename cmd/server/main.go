// Command server runs the contract ingestion HTTP API.
//
// Startup order: load .env (optional), parse configuration, configure
// logging, open the database and run migrations, pick the session backend,
// then serve until SIGINT/SIGTERM with a graceful drain.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/aahaas/go-contract-backend/internal/config"
	"github.com/aahaas/go-contract-backend/internal/extract"
	httpapi "github.com/aahaas/go-contract-backend/internal/http"
	"github.com/aahaas/go-contract-backend/internal/repo"
	"github.com/aahaas/go-contract-backend/internal/session"
	"github.com/aahaas/go-contract-backend/internal/sysutil"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not found, using process environment")
	}

	cfg := config.MustLoad()
	setupLogging(cfg)

	if cfg.Extract.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty, contract extraction requests will fail")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("database connect failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("database ready")

	store := sessionStore(cfg)
	ex := extract.NewClient(cfg.Extract.APIKey, cfg.Extract.Model, cfg.Extract.BaseURL)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, store, ex, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	// Wait for shutdown signal, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// setupLogging configures the global zerolog logger from config.
func setupLogging(cfg config.Config) {
	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// openDatabase opens the configured backend. SQLite keeps local development
// and CI free of a MySQL dependency.
func openDatabase(cfg config.Config) (*gorm.DB, error) {
	if strings.EqualFold(cfg.DB.Driver, "mysql") {
		return repo.OpenMySQL(cfg.DB.DSN)
	}
	return repo.OpenSQLite(cfg.DB.Path)
}

// sessionStore picks the configured session backend. Redis keeps sessions
// alive across restarts and lets multiple replicas share the pipeline.
func sessionStore(cfg config.Config) session.Store {
	if cfg.Session.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPass,
			DB:       cfg.Session.RedisDB,
		})
		return session.NewRedisStore(client, cfg.Session.TTL)
	}
	return session.NewMemoryStore(cfg.Session.TTL)
}
