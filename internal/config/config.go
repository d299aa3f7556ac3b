// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, document storage, live sync, idea generation, rate limiting, web
// protection, and observability settings.
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

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-party-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Backend       string // STORE_BACKEND: sqlite|mongo
	DBPath        string // DB_PATH (sqlite)
	MongoURI      string // MONGO_URI
	MongoDatabase string // MONGO_DATABASE
}

// LiveConfig tunes realtime delivery to connected clients.
type LiveConfig struct {
	SubscriptionBuffer int           // SUBSCRIPTION_BUFFER: queued notifications per stream client
	PingInterval       time.Duration // STREAM_PING_INTERVAL
	WriteTimeout       time.Duration // WRITE_TIMEOUT_ASYNC: bound on a background write (0 = none)
	InboxTTL           time.Duration // NOTIFY_INBOX_TTL: how long offline notifications are kept
	MaxInboxes         int           // NOTIFY_MAX_INBOXES: clients with queued notifications
}

// BrainstormConfig configures idea generation. With no API key the offline
// catalogue is used.
type BrainstormConfig struct {
	Endpoint    string        // BRAINSTORM_ENDPOINT
	APIKey      string        // BRAINSTORM_API_KEY
	Model       string        // BRAINSTORM_MODEL
	Timeout     time.Duration // BRAINSTORM_TIMEOUT, per attempt
	Retries     int           // BRAINSTORM_RETRIES
	CatalogPath string        // IDEAS_CATALOG_PATH, empty = embedded catalogue
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	Store      StoreConfig
	Live       LiveConfig
	Brainstorm BrainstormConfig

	// DisplayNameMaxAge is the lifetime of the per-party display-name cookie.
	DisplayNameMaxAge time.Duration

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
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
		WriteTimeout:      getdur("WRITE_TIMEOUT", 45*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		Store: StoreConfig{
			Backend:       strings.ToLower(getenv("STORE_BACKEND", "sqlite")),
			DBPath:        getenv("DB_PATH", "party.db"),
			MongoURI:      getenv("MONGO_URI", ""),
			MongoDatabase: getenv("MONGO_DATABASE", "party"),
		},
		Live: LiveConfig{
			SubscriptionBuffer: getint("SUBSCRIPTION_BUFFER", 16),
			PingInterval:       getdur("STREAM_PING_INTERVAL", 30*time.Second),
			WriteTimeout:       getdur("WRITE_TIMEOUT_ASYNC", 10*time.Second),
			InboxTTL:           getdur("NOTIFY_INBOX_TTL", 10*time.Minute),
			MaxInboxes:         getint("NOTIFY_MAX_INBOXES", 1024),
		},
		Brainstorm: BrainstormConfig{
			Endpoint:    getenv("BRAINSTORM_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
			APIKey:      getenv("BRAINSTORM_API_KEY", ""),
			Model:       getenv("BRAINSTORM_MODEL", "gpt-4o-mini"),
			Timeout:     getdur("BRAINSTORM_TIMEOUT", 30*time.Second),
			Retries:     getint("BRAINSTORM_RETRIES", 1),
			CatalogPath: getenv("IDEAS_CATALOG_PATH", ""),
		},
		DisplayNameMaxAge: getdur("DISPLAY_NAME_MAX_AGE", 365*24*time.Hour),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-party-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
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
	if cfg.Store.Backend == "sqlite3" {
		cfg.Store.Backend = "sqlite"
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
	switch cfg.Store.Backend {
	case "sqlite":
		if strings.TrimSpace(cfg.Store.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "mongo":
		if strings.TrimSpace(cfg.Store.MongoURI) == "" {
			return cfg, errors.New("MONGO_URI is required when STORE_BACKEND=mongo")
		}
		if strings.TrimSpace(cfg.Store.MongoDatabase) == "" {
			return cfg, errors.New("MONGO_DATABASE must not be empty")
		}
	default:
		return cfg, errors.New("STORE_BACKEND must be one of: sqlite, mongo")
	}
	if cfg.Live.SubscriptionBuffer < 1 {
		return cfg, errors.New("SUBSCRIPTION_BUFFER must be >= 1")
	}
	if cfg.Live.PingInterval <= 0 {
		return cfg, errors.New("STREAM_PING_INTERVAL must be > 0")
	}
	if cfg.Live.WriteTimeout < 0 {
		return cfg, errors.New("WRITE_TIMEOUT_ASYNC must be >= 0")
	}
	if cfg.Live.InboxTTL <= 0 {
		return cfg, errors.New("NOTIFY_INBOX_TTL must be > 0")
	}
	if cfg.Live.MaxInboxes < 1 {
		return cfg, errors.New("NOTIFY_MAX_INBOXES must be >= 1")
	}
	if cfg.Brainstorm.Timeout <= 0 {
		return cfg, errors.New("BRAINSTORM_TIMEOUT must be > 0")
	}
	if cfg.Brainstorm.Retries < 0 {
		return cfg, errors.New("BRAINSTORM_RETRIES must be >= 0")
	}
	if cfg.Brainstorm.APIKey != "" && strings.TrimSpace(cfg.Brainstorm.Endpoint) == "" {
		return cfg, errors.New("BRAINSTORM_ENDPOINT must not be empty when BRAINSTORM_API_KEY is set")
	}
	if cfg.DisplayNameMaxAge <= 0 {
		return cfg, errors.New("DISPLAY_NAME_MAX_AGE must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
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
