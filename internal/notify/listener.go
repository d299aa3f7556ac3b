package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Variant selects how a notification is presented.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a single user-visible message.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	Path        string    `json:"path,omitempty"`
	Operation   string    `json:"operation,omitempty"`
	At          time.Time `json:"at"`
}

// Toaster displays notifications to a user.
type Toaster interface {
	Toast(ctx context.Context, n Notification)
}

// ToasterFunc adapts a function to Toaster.
type ToasterFunc func(ctx context.Context, n Notification)

func (f ToasterFunc) Toast(ctx context.Context, n Notification) { f(ctx, n) }

var notificationsEmitted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notify_notifications_total",
		Help: "Total number of user notifications emitted, by kind.",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(notificationsEmitted)
}

// ErrorListener logs each failure with its structured context and shows
// exactly one notification for it. Repeated failures are not de-duplicated.
type ErrorListener struct {
	toaster Toaster
	logger  zerolog.Logger
	now     func() time.Time
}

// NewErrorListener returns a listener that shows notifications through t and
// logs through the global logger.
func NewErrorListener(t Toaster) *ErrorListener {
	return &ErrorListener{toaster: t, logger: log.Logger, now: time.Now}
}

// WithLogger returns a copy of l logging through lg.
func (l *ErrorListener) WithLogger(lg zerolog.Logger) *ErrorListener {
	cp := *l
	cp.logger = lg
	return &cp
}

// Attach subscribes l to b for as long as the returned function is not called.
func (l *ErrorListener) Attach(b *Bus) (detach func()) {
	return b.Subscribe(l.Handle)
}

// Handle processes one failure. It is a Listener.
func (l *ErrorListener) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}
	n := Notification{Variant: VariantDestructive, At: l.now().UTC()}
	ev := l.logger.Error().Str("client_id", ClientIDFrom(ctx))

	var (
		perm *PermissionError
		sub  *SubscriptionError
		kind string
	)
	switch {
	case errors.As(err, &perm):
		kind = "permission"
		ev.Str("operation", string(perm.Operation)).
			Str("path", perm.Path).
			Interface("data", perm.RequestResourceData).
			AnErr("cause", perm.Err).
			Msg("permission error")
		n.Title = "Permission Denied"
		n.Description = permissionDescription(string(perm.Operation), perm.Path)
		n.Path = perm.Path
		n.Operation = string(perm.Operation)
	case errors.As(err, &sub):
		kind = "subscription"
		ev.Str("operation", string(sub.Operation())).
			Str("path", sub.Path()).
			Str("query", sub.Query.String()).
			AnErr("cause", sub.Err).
			Msg("live query error")
		n.Title = "Sync Error"
		n.Description = "Live updates for this page are temporarily unavailable."
		n.Path = sub.Path()
		n.Operation = string(sub.Operation())
	default:
		kind = "other"
		ev.Err(err).Msg("unexpected error")
		n.Title = "Something went wrong"
		n.Description = "Please try again later."
	}

	notificationsEmitted.WithLabelValues(kind).Inc()
	if l.toaster != nil {
		l.toaster.Toast(ctx, n)
	}
}

func permissionDescription(op, path string) string {
	if op == "" {
		op = "access"
	}
	if path == "" {
		path = "this location"
	}
	return fmt.Sprintf("You don't have permission to %s at %s.", op, path)
}
