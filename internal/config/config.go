// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database connectivity, session storage,
// and the extraction model endpoint.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// DBConfig defines database connectivity settings.
type DBConfig struct {
	Driver string // mysql|sqlite
	DSN    string // MySQL DSN (user:pass@tcp(host:port)/db?parseTime=true)
	Path   string // SQLite path, used when Driver is sqlite
}

// ExtractConfig defines settings for the contract extraction model endpoint.
type ExtractConfig struct {
	APIKey  string // OPENAI_API_KEY
	Model   string // OPENAI_MODEL (e.g. "gpt-4o")
	BaseURL string // OPENAI_BASE_URL for OpenAI-compatible endpoints
}

// SessionConfig defines where ingestion sessions are kept between steps.
type SessionConfig struct {
	Backend   string        // memory|redis
	TTL       time.Duration // how long an idle session survives
	RedisAddr string        // host:port, used when Backend is redis
	RedisPass string
	RedisDB   int
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 60s; uploads and extraction are slow
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// App
	StagingDir    string // where per-session staging workbooks are written
	MaxUploadSize int64  // max accepted request body for file uploads, bytes

	// Subsystems
	DB      DBConfig
	Extract ExtractConfig
	Session SessionConfig

	// Web protection
	CORS CORSConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		StagingDir:    getenv("STAGING_DIR", "staging"),
		MaxUploadSize: getint64("MAX_UPLOAD_SIZE", 32<<20),

		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			DSN:    getenv("DB_DSN", ""),
			Path:   getenv("DB_PATH", "app.db"),
		},
		Extract: ExtractConfig{
			APIKey:  getenv("OPENAI_API_KEY", ""),
			Model:   getenv("OPENAI_MODEL", "gpt-4o"),
			BaseURL: getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
		Session: SessionConfig{
			Backend:   strings.ToLower(getenv("SESSION_BACKEND", "memory")),
			TTL:       getdur("SESSION_TTL", 2*time.Hour),
			RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
			RedisPass: getenv("REDIS_PASSWORD", ""),
			RedisDB:   getint("REDIS_DB", 0),
		},

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.StagingDir) == "" {
		return cfg, errors.New("STAGING_DIR must not be empty")
	}
	if cfg.MaxUploadSize <= 0 {
		return cfg, errors.New("MAX_UPLOAD_SIZE must be > 0")
	}
	switch cfg.DB.Driver {
	case "mysql":
		if strings.TrimSpace(cfg.DB.DSN) == "" {
			return cfg, errors.New("DB_DSN must not be empty when DB_DRIVER=mysql")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty when DB_DRIVER=sqlite")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: mysql, sqlite")
	}
	switch cfg.Session.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.Session.RedisAddr) == "" {
			return cfg, errors.New("REDIS_ADDR must not be empty when SESSION_BACKEND=redis")
		}
	default:
		return cfg, errors.New("SESSION_BACKEND must be one of: memory, redis")
	}
	if cfg.Session.TTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if strings.TrimSpace(cfg.Extract.Model) == "" {
		return cfg, errors.New("OPENAI_MODEL must not be empty")
	}
	if strings.TrimSpace(cfg.Extract.BaseURL) == "" {
		return cfg, errors.New("OPENAI_BASE_URL must not be empty")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
