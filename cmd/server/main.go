// Command server runs the party planner API: parties, RSVPs, guest chat,
// idea brainstorming, and a websocket stream that keeps every open page in
// sync with the document store.
//
// @title       Party Planner API
// @version     1.0
// @description Create parties, RSVP, chat with guests, and follow every change live.
// @BasePath    /api/v1
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/tbourn/go-party-backend/internal/brainstorm"
	"github.com/tbourn/go-party-backend/internal/config"
	"github.com/tbourn/go-party-backend/internal/docstore"
	httpapi "github.com/tbourn/go-party-backend/internal/http"
	"github.com/tbourn/go-party-backend/internal/ideas"
	"github.com/tbourn/go-party-backend/internal/livesync"
	"github.com/tbourn/go-party-backend/internal/notify"
	"github.com/tbourn/go-party-backend/internal/observability"
	"github.com/tbourn/go-party-backend/internal/repo"
	"github.com/tbourn/go-party-backend/internal/sysutil"
)

const (
	shutdownTimeout = 30 * time.Second
	purgeInterval   = time.Hour
	catalogIdeas    = 3
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	version := sysutil.Version()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Service{
		Version:      version,
		StoreBackend: cfg.Store.Backend,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}

	// The sqlite handle always exists: it holds idempotency keys, and the
	// documents too unless STORE_BACKEND=mongo.
	db, err := repo.OpenSQLite(cfg.Store.DBPath, repo.WithTracing())
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.DBPath).Msg("open sqlite")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate sqlite")
	}

	backend, mongoClient, err := openBackend(ctx, cfg.Store, db)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("open document store")
	}
	store := docstore.New(backend)

	bus := notify.NewBus()
	hub := notify.NewHub(
		notify.WithStreamBuffer(cfg.Live.SubscriptionBuffer),
		notify.WithInboxTTL(cfg.Live.InboxTTL),
		notify.WithMaxInboxes(cfg.Live.MaxInboxes),
	)
	notify.NewErrorListener(hub).Attach(bus)
	writer := livesync.NewWriter(store, bus, livesync.WithWriteTimeout(cfg.Live.WriteTimeout))

	provider, err := newProvider(cfg.Brainstorm)
	if err != nil {
		log.Fatal().Err(err).Msg("brainstorm provider")
	}

	idem := repo.NewIdempotencyStore(db, cfg.IdempotencyTTL)
	go purgeLoop(ctx, idem)

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Store:       store,
		Writer:      writer,
		Bus:         bus,
		Hub:         hub,
		Idempotency: idem,
		Provider:    provider,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	// Request contexts derive from baseCtx so open streams can be ended.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Str("store", cfg.Store.Backend).
			Str("base_path", cfg.APIBasePath).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	// Shutdown does not wait for hijacked websocket connections.
	cancelBase()
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close")
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	log.Info().Msg("server exited")
}

// openBackend selects the document backend. The mongo client is returned so
// it can be disconnected on shutdown.
func openBackend(ctx context.Context, cfg config.StoreConfig, db *gorm.DB) (docstore.Backend, *mongo.Client, error) {
	if cfg.Backend != "mongo" {
		return docstore.NewGormBackend(db), nil, nil
	}
	client, err := docstore.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	b := docstore.NewMongoBackend(client, cfg.MongoDatabase)
	if err := b.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return b, client, nil
}

// newProvider uses the hosted model when an API key is configured and the
// offline catalogue otherwise.
func newProvider(cfg config.BrainstormConfig) (brainstorm.Provider, error) {
	if cfg.APIKey != "" {
		log.Info().Str("model", cfg.Model).Msg("brainstorm via hosted model")
		return brainstorm.NewHTTPProvider(brainstorm.HTTPConfig{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			Timeout:  cfg.Timeout,
			Retries:  cfg.Retries,
		}), nil
	}

	cat := ideas.Default()
	if cfg.CatalogPath != "" {
		loaded, err := ideas.Load(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}
	log.Info().Str("catalog", sysutil.FirstNonEmpty(cfg.CatalogPath, "embedded")).Msg("brainstorm via idea catalogue")
	return brainstorm.NewCatalogProvider(cat, catalogIdeas), nil
}

// purgeLoop drops expired idempotency keys until ctx ends.
func purgeLoop(ctx context.Context, idem *repo.IdempotencyStore) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		if n, err := idem.Purge(ctx); err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
			}
		} else if n > 0 {
			log.Debug().Int64("rows", n).Msg("idempotency keys purged")
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
