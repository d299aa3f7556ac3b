package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-party-backend/internal/brainstorm"
	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/http/middleware"
	"github.com/tbourn/go-party-backend/internal/ideas"
	"github.com/tbourn/go-party-backend/internal/livesync"
	"github.com/tbourn/go-party-backend/internal/notify"
	"github.com/tbourn/go-party-backend/internal/repo"
	"github.com/tbourn/go-party-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

const testClient = "client-1"

// tick returns a clock advancing one second per call.
func tick() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 7, 4, 18, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type env struct {
	store *docstore.Store
	hub   *notify.Hub
	h     *Handlers
	r     *gin.Engine
}

type envOption func(*Deps, *Options)

func withProvider(p brainstorm.Provider) envOption {
	return func(d *Deps, _ *Options) {
		d.Brainstorm = services.NewBrainstormService(d.Parties.(*services.PartyService), p)
	}
}

func withLimiter(l FrameLimiter) envOption {
	return func(d *Deps, _ *Options) { d.Limiter = l }
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()
	return newEnvOver(t, nil, opts...)
}

// newEnvOver is newEnv with the sqlite backend passed through wrap.
func newEnvOver(t *testing.T, wrap func(docstore.Backend) docstore.Backend, opts ...envOption) *env {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "handlers.db"), repo.WithSilentLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	var backend docstore.Backend = docstore.NewGormBackend(db)
	if wrap != nil {
		backend = wrap(backend)
	}
	store := docstore.New(backend, docstore.WithClock(tick()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(ctx)
	})

	bus := notify.NewBus()
	hub := notify.NewHub()
	notify.NewErrorListener(hub).Attach(bus)
	writer := livesync.NewWriter(store, bus)
	parties := services.NewPartyService(store, writer)
	idem := repo.NewIdempotencyStore(db, time.Hour)

	d := Deps{
		Parties:     parties,
		RSVPs:       services.NewRSVPService(store, writer),
		Chat:        services.NewChatService(store, writer),
		Brainstorm:  services.NewBrainstormService(parties, brainstorm.NewCatalogProvider(ideas.Default(), 3)),
		Docs:        store,
		Idempotency: idem,
		Live:        store,
		Notifier:    bus,
		Hub:         hub,
	}
	o := Options{PingInterval: time.Second}
	for _, fn := range opts {
		fn(&d, &o)
	}
	h := New(d, o)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ClientID(middleware.ClientIDOptions{}),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, idem.Lookup),
	)
	mount(r.Group("/api"), h)
	return &env{store: store, hub: hub, h: h, r: r}
}

// mount registers the routes the way the router does.
func mount(g *gin.RouterGroup, h *Handlers) {
	g.POST("/parties", h.CreateParty)
	g.GET("/parties/:id", h.GetParty)
	g.POST("/parties/:id/rsvps", h.PostRSVP)
	g.GET("/parties/:id/rsvps", h.ListRSVPs)
	g.POST("/parties/:id/messages", h.PostMessage)
	g.GET("/parties/:id/messages", h.ListMessages)
	g.GET("/parties/:id/display-name", h.GetDisplayName)
	g.PUT("/parties/:id/display-name", h.PutDisplayName)
	g.DELETE("/parties/:id/display-name", h.DeleteDisplayName)
	g.POST("/parties/:id/brainstorm", h.Brainstorm)
	g.GET("/parties/:id/stream", h.Stream)
	g.GET("/notifications", h.ListNotifications)
}

func (e *env) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.HeaderClientID, testClient)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

// eventually polls cond for up to five seconds.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// createParty creates a party over HTTP and waits for its commit.
func (e *env) createParty(t *testing.T, name string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/parties", CreatePartyRequest{
		Name: name, Date: "2025-07-04", Time: "19:30", Location: "Roof",
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("create party: %d %s", w.Code, w.Body.String())
	}
	id := decode[PartyResponse](t, w).Party.ID
	eventually(t, "party commit", func() bool {
		w := e.do(t, http.MethodGet, "/api/parties/"+id, nil)
		return w.Code == http.StatusOK && decode[PartyResponse](t, w).Write == "confirmed"
	})
	return id
}
