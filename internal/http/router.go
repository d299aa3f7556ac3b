// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation and client IDs, logging/redaction, panic recovery,
// compression, metrics, CORS, security headers, idempotency, and rate
// limiting.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/tbourn/go-party-backend/docs" // swagger spec
	"github.com/tbourn/go-party-backend/internal/brainstorm"
	"github.com/tbourn/go-party-backend/internal/config"
	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/http/handlers"
	"github.com/tbourn/go-party-backend/internal/http/middleware"
	"github.com/tbourn/go-party-backend/internal/livesync"
	"github.com/tbourn/go-party-backend/internal/notify"
	"github.com/tbourn/go-party-backend/internal/repo"
	"github.com/tbourn/go-party-backend/internal/services"
)

// Deps are the process-wide collaborators the routes are built on.
type Deps struct {
	Store  *docstore.Store
	Writer *livesync.Writer
	// Bus receives write and live-query failures.
	Bus *notify.Bus
	// Hub routes notifications to the client that caused them.
	Hub *notify.Hub
	// Idempotency is optional; keyed POSTs are not deduplicated without it.
	Idempotency *repo.IdempotencyStore
	// Provider is optional; brainstorm answers 502 without it.
	Provider brainstorm.Provider
}

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsHeaders = []string{
		"Origin", "Content-Type", "Accept", "If-None-Match",
		middleware.HeaderClientID, middleware.HeaderIdempotencyKey,
	}
	corsExpose = []string{
		"X-Request-ID", "Content-Length", "ETag",
		middleware.HeaderClientID, middleware.HeaderIdempotencyReplayed,
	}
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. ClientID: anonymous client identity (cookie or header)
//  4. RedactingLogger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter and gzip (the websocket stream is excluded)
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per client/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Who is asking; notifications are routed by this id
	r.Use(middleware.ClientID(middleware.ClientIDOptions{
		Secure: cfg.Security.EnableHSTS,
	}))

	// 4) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics"}), // promhttp negotiates its own encoding
		gzip.WithExcludedPathsRegexs([]string{`/stream$`}),
	))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	var lookup middleware.IdempotencyLookup
	if d.Idempotency != nil {
		lookup = d.Idempotency.Lookup
	}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, lookup))

	// 9) Token-bucket rate limiter per client/IP; also limits stream frames
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, found := allowed[origin]; found {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: true, // display name and client id cookies
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← store/writer
	parties := services.NewPartyService(d.Store, d.Writer)
	deps := handlers.Deps{
		Parties:    parties,
		RSVPs:      services.NewRSVPService(d.Store, d.Writer),
		Chat:       services.NewChatService(d.Store, d.Writer),
		Brainstorm: services.NewBrainstormService(parties, d.Provider),
		Docs:       d.Store,
		Live:       d.Store,
		Limiter:    rl,
	}
	// Typed nils must not leak into the interfaces.
	if d.Idempotency != nil {
		deps.Idempotency = d.Idempotency
	}
	if d.Bus != nil {
		deps.Notifier = d.Bus
	}
	if d.Hub != nil {
		deps.Hub = d.Hub
	}
	h := handlers.New(deps, handlers.Options{
		DisplayNameMaxAge: cfg.DisplayNameMaxAge,
		SecureCookies:     cfg.Security.EnableHSTS,
		PingInterval:      cfg.Live.PingInterval,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
	})

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api/v1"
	{
		// Parties
		api.POST("/parties", h.CreateParty)
		api.GET("/parties/:id", h.GetParty)

		// RSVPs
		api.GET("/parties/:id/rsvps", h.ListRSVPs)
		api.POST("/parties/:id/rsvps", h.PostRSVP)

		// Chat
		api.GET("/parties/:id/messages", h.ListMessages)
		api.POST("/parties/:id/messages", h.PostMessage)

		// Display name (device-local)
		api.GET("/parties/:id/display-name", h.GetDisplayName)
		api.PUT("/parties/:id/display-name", h.PutDisplayName)
		api.DELETE("/parties/:id/display-name", h.DeleteDisplayName)

		// Ideas
		api.POST("/parties/:id/brainstorm", h.Brainstorm)

		// Live view and notifications
		api.GET("/parties/:id/stream", h.Stream)
		api.GET("/notifications", h.ListNotifications)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
