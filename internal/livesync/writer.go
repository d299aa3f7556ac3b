package livesync

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/notify"
)

var (
	writesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livesync_writes_issued_total",
			Help: "Total number of non-blocking writes issued.",
		},
		[]string{"collection"},
	)
	writesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livesync_writes_failed_total",
			Help: "Total number of non-blocking writes that failed.",
		},
		[]string{"collection"},
	)
)

func init() {
	prometheus.MustRegister(writesIssued, writesFailed)
}

// IntentState is the lifecycle of one write attempt.
type IntentState int

const (
	// Pending is entered synchronously when the write is issued.
	Pending IntentState = iota
	// Confirmed means the store acknowledged the write.
	Confirmed
	// Failed means the store rejected the write; a notification was published.
	Failed
)

func (s IntentState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Intent tracks a write issued by Writer. There is no retry and no rollback:
// a Failed intent only means the user has been notified.
type Intent struct {
	Location  docstore.Location
	Operation docstore.Operation

	mu    sync.Mutex
	state IntentState
	err   error
	done  chan struct{}
}

// State returns the current state.
func (i *Intent) State() IntentState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Err returns the failure cause once the intent has Failed.
func (i *Intent) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

// Done is closed when the intent leaves Pending.
func (i *Intent) Done() <-chan struct{} { return i.done }

// Wait blocks until the intent settles or ctx ends, and returns the final
// state.
func (i *Intent) Wait(ctx context.Context) (IntentState, error) {
	select {
	case <-i.done:
		return i.State(), nil
	case <-ctx.Done():
		return i.State(), ctx.Err()
	}
}

func (i *Intent) settle(state IntentState, err error) {
	i.mu.Lock()
	i.state, i.err = state, err
	i.mu.Unlock()
	close(i.done)
}

// Submitter accepts writes without waiting for them. *docstore.Store
// implements it.
type Submitter interface {
	Submit(ctx context.Context, loc docstore.Location, rec domain.Record) *docstore.PendingWrite
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriteTimeout bounds how long a write may wait for its commit.
func WithWriteTimeout(d time.Duration) WriterOption {
	return func(w *Writer) { w.timeout = d }
}

// Writer issues fire-and-forget document writes. Failures are turned into
// notify.PermissionError values and published to the notifier; they are
// never returned to the caller.
type Writer struct {
	store    Submitter
	notifier notify.Notifier
	timeout  time.Duration
}

// NewWriter returns a Writer over store reporting to n.
func NewWriter(store Submitter, n notify.Notifier, opts ...WriterOption) *Writer {
	w := &Writer{store: store, notifier: n}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Create issues the creation of rec at loc and returns at once. The write
// outlives ctx's cancellation but keeps its values, so the failure
// notification reaches the client that made the request.
func (w *Writer) Create(ctx context.Context, loc docstore.Location, rec domain.Record) *Intent {
	base := context.WithoutCancel(ctx)
	wctx, cancel := base, context.CancelFunc(func() {})
	if w.timeout > 0 {
		wctx, cancel = context.WithTimeout(base, w.timeout)
	}

	intent := &Intent{Location: loc, Operation: docstore.OpCreate, state: Pending, done: make(chan struct{})}
	pw := w.store.Submit(wctx, loc, rec)
	writesIssued.WithLabelValues(loc.Collection).Inc()

	go func() {
		defer cancel()
		<-pw.Done()
		if err := pw.Err(); err != nil {
			writesFailed.WithLabelValues(loc.Collection).Inc()
			if w.notifier != nil {
				w.notifier.Publish(base, notify.NewPermissionError(loc, docstore.OpCreate, rec, err))
			}
			intent.settle(Failed, err)
			return
		}
		intent.settle(Confirmed, nil)
	}()
	return intent
}
