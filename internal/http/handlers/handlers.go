// Handler wiring.
//
// Handlers are transport-thin: they validate input, call the application
// services, and translate results into HTTP responses. Writes are
// optimistic: a POST returns 202 with the document as it will be stored
// while the commit happens in the background. A rejected write reaches the
// client as a notification (stream toast or GET /notifications), never as
// the POST's response.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-party-backend/internal/brainstorm"
	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/http/middleware"
	"github.com/tbourn/go-party-backend/internal/livesync"
	"github.com/tbourn/go-party-backend/internal/notify"
	"github.com/tbourn/go-party-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// PartyService creates and loads parties.
type PartyService interface {
	Create(ctx context.Context, in services.PartyInput) (*domain.Party, *livesync.Intent, error)
	Get(ctx context.Context, id string) (*domain.Party, error)
}

// RSVPService records and lists RSVPs.
type RSVPService interface {
	Submit(ctx context.Context, partyID, name string) (*domain.RSVP, *livesync.Intent, error)
	List(ctx context.Context, partyID string, limit int) ([]*domain.RSVP, services.Stats, error)
	Stats(ctx context.Context, partyID string) (services.Stats, error)
}

// ChatService sends and lists chat messages.
type ChatService interface {
	Send(ctx context.Context, partyID, sender, text string) (*domain.ChatMessage, *livesync.Intent, error)
	List(ctx context.Context, partyID string, limit int) ([]*domain.ChatMessage, services.Stats, error)
	Stats(ctx context.Context, partyID string) (services.Stats, error)
}

// BrainstormService generates party ideas.
type BrainstormService interface {
	Brainstorm(ctx context.Context, partyID string, in brainstorm.Input) (brainstorm.Ideas, error)
}

// DocumentReader loads a single document; used to answer idempotent replays.
type DocumentReader interface {
	Get(ctx context.Context, loc docstore.Location) (domain.Record, error)
}

// IdempotencyRecorder remembers which document a keyed POST created.
type IdempotencyRecorder interface {
	Record(ctx context.Context, clientID, partyID, key, docPath string) error
}

// NotificationHub delivers notifications to connected clients and keeps
// the rest for GET /notifications.
type NotificationHub interface {
	notify.Toaster
	Register(clientID string) (<-chan notify.Notification, func())
	Drain(clientID string) []notify.Notification
	// Push delivers to open streams only.
	Push(ctx context.Context, n notify.Notification) bool
}

// FrameLimiter rate limits stream client frames by key.
type FrameLimiter interface {
	Allow(key string) bool
}

// Deps are the collaborators of Handlers. Parties, RSVPs, and Chat are
// required; the rest switch features off when nil.
type Deps struct {
	Parties    PartyService
	RSVPs      RSVPService
	Chat       ChatService
	Brainstorm BrainstormService

	Docs        DocumentReader
	Idempotency IdempotencyRecorder

	// Live and Notifier back the party stream.
	Live     livesync.Subscriber
	Notifier notify.Notifier
	Hub      NotificationHub
	Limiter  FrameLimiter
}

// Options tunes handler behavior.
type Options struct {
	// DisplayNameMaxAge is the lifetime of the dn_<party> cookie.
	DisplayNameMaxAge time.Duration
	// SecureCookies marks cookies HTTPS-only.
	SecureCookies bool
	// PingInterval is how often the stream pings idle clients.
	PingInterval time.Duration
	// AllowedOrigins restricts stream upgrades by Origin ("*" or empty allows all).
	AllowedOrigins []string
}

// Handlers groups the HTTP endpoints of the API.
type Handlers struct {
	parties    PartyService
	rsvps      RSVPService
	chat       ChatService
	brainstorm BrainstormService

	docs DocumentReader
	idem IdempotencyRecorder

	live     livesync.Subscriber
	notifier notify.Notifier
	hub      NotificationHub
	limiter  FrameLimiter

	opts     Options
	upgrader websocket.Upgrader
}

// New constructs Handlers from d and opts.
func New(d Deps, opts Options) *Handlers {
	if opts.DisplayNameMaxAge <= 0 {
		opts.DisplayNameMaxAge = 365 * 24 * time.Hour
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	h := &Handlers{
		parties:    d.Parties,
		rsvps:      d.RSVPs,
		chat:       d.Chat,
		brainstorm: d.Brainstorm,
		docs:       d.Docs,
		idem:       d.Idempotency,
		live:       d.Live,
		notifier:   d.Notifier,
		hub:        d.Hub,
		limiter:    d.Limiter,
		opts:       opts,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return h
}

//
// Helpers
//

// partyParam returns the :id path parameter after checking it is a party id.
func partyParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "party id must be a UUID")
		return "", false
	}
	return id, true
}

// replayed returns the document created by an earlier request with the same
// Idempotency-Key, and marks the response as a replay.
func (h *Handlers) replayed(c *gin.Context) (domain.Record, bool) {
	path, found := middleware.GetReplayPath(c)
	if !found || h.docs == nil {
		return nil, false
	}
	loc, err := docstore.ParsePath(path)
	if err != nil {
		return nil, false
	}
	rec, err := h.docs.Get(c.Request.Context(), loc)
	if err != nil {
		return nil, false
	}
	middleware.MarkReplayed(c)
	return rec, true
}

// remember stores the key → document mapping for a keyed POST. Best effort.
func (h *Handlers) remember(c *gin.Context, partyID string, loc docstore.Location) {
	key, found := middleware.GetIdempotencyKey(c)
	if !found || h.idem == nil {
		return
	}
	if err := h.idem.Record(c.Request.Context(), middleware.GetClientID(c), partyID, key, loc.Path()); err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Warn().Err(err).Str("path", loc.Path()).Msg("idempotency record failed")
	}
}

// originChecker allows same-host requests and the configured origins.
func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := len(allowed) == 0
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if allowAll || origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		if strings.HasSuffix(origin, "://"+r.Host) {
			return true
		}
		log.Debug().Str("origin", origin).Msg("stream origin rejected")
		return false
	}
}
