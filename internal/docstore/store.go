package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the source of server timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the process-wide handle to the document database. It is safe for
// concurrent use. Writes are committed one at a time in the order they were
// submitted.
type Store struct {
	backend Backend
	rules   Rules
	now     func() time.Time

	mu      sync.Mutex
	pending []*PendingWrite
	queue   []*PendingWrite
	subs    map[*Subscription]struct{}
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// New returns a Store over b and starts its commit loop. Call Close to stop it.
func New(b Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		rules:   NewRules(b),
		now:     time.Now,
		subs:    make(map[*Subscription]struct{}),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	go s.commitLoop()
	return s
}

// PendingWrite tracks one submitted write until the backend accepts or
// rejects it.
type PendingWrite struct {
	Location  Location
	Operation Operation
	// Record is the optimistic copy visible to readers while pending. Its
	// timestamp is always nil.
	Record domain.Record

	ctx  context.Context
	done chan struct{}
	err  error
}

// Done is closed once the write has been committed or rejected.
func (w *PendingWrite) Done() <-chan struct{} { return w.done }

// Err returns the commit error. It is only meaningful after Done is closed.
func (w *PendingWrite) Err() error {
	select {
	case <-w.done:
		return w.err
	default:
		return nil
	}
}

func (w *PendingWrite) finish(err error) {
	w.err = err
	close(w.done)
}

// Submit queues rec for creation at loc and returns without waiting for the
// backend. The pending copy is visible to Get, Fetch, and subscribers before
// Submit returns.
func (s *Store) Submit(ctx context.Context, loc Location, rec domain.Record) *PendingWrite {
	w := &PendingWrite{
		Location:  loc,
		Operation: OpCreate,
		ctx:       ctx,
		done:      make(chan struct{}),
	}
	if rec == nil || rec.Collection() != loc.Collection || rec.DocID() != loc.ID {
		w.finish(fmt.Errorf("%w: record does not belong at %s", ErrInvalidLocation, loc))
		return w
	}
	w.Record = domain.Unstamped(rec)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		w.finish(ErrClosed)
		return w
	}
	s.pending = append(s.pending, w)
	s.queue = append(s.queue, w)
	s.mu.Unlock()
	pendingWrites.Inc()

	s.notify(loc.Collection)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return w
}

// Create submits rec and waits for the commit result.
func (s *Store) Create(ctx context.Context, loc Location, rec domain.Record) error {
	w := s.Submit(ctx, loc, rec)
	select {
	case <-w.Done():
		return w.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) commitLoop() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
		case <-s.stop:
			// Drain whatever was accepted before Close.
			for s.commitNext() {
			}
			return
		}
		for s.commitNext() {
		}
	}
}

func (s *Store) commitNext() bool {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	w := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	s.mu.Unlock()

	err := s.commit(w)

	s.mu.Lock()
	for i, p := range s.pending {
		if p == w {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	pendingWrites.Dec()

	w.finish(err)
	s.notify(w.Location.Collection)
	return true
}

func (s *Store) commit(w *PendingWrite) (err error) {
	ctx, span := otel.Tracer("docstore").Start(w.ctx, "Commit",
		trace.WithAttributes(
			attribute.String("doc.path", w.Location.Path()),
			attribute.String("doc.operation", string(w.Operation)),
		))
	defer func() {
		result := "ok"
		switch {
		case errors.Is(err, ErrPermissionDenied):
			result = "denied"
		case err != nil:
			result = "error"
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		commits.WithLabelValues(w.Location.Collection, result).Inc()
		span.End()
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.rules.Authorize(ctx, w.Operation, w.Location, w.Record); err != nil {
		return err
	}
	stored := domain.Clone(w.Record)
	domain.Stamp(stored, s.now())
	return s.backend.Insert(ctx, stored)
}

// Get returns the document at loc. A pending local write is returned when
// the backend has no committed version yet.
func (s *Store) Get(ctx context.Context, loc Location) (domain.Record, error) {
	if err := s.rules.Authorize(ctx, OpGet, loc, nil); err != nil {
		return nil, err
	}
	rec, err := s.backend.Get(ctx, loc)
	if errors.Is(err, ErrNotFound) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, w := range s.pending {
			if w.Location == loc {
				return domain.Clone(w.Record), nil
			}
		}
	}
	return rec, err
}

// Fetch runs q once and returns its current snapshot.
func (s *Store) Fetch(ctx context.Context, q Query) (Snapshot, error) {
	ctx, span := otel.Tracer("docstore").Start(ctx, "Fetch",
		trace.WithAttributes(attribute.String("doc.query", q.String())))
	defer span.End()

	snap, err := s.snapshot(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
	}
	return snap, err
}

// Stats returns the committed count and latest timestamp for q.
func (s *Store) Stats(ctx context.Context, q Query) (int64, *time.Time, error) {
	return s.backend.Stats(ctx, q)
}

// PendingIDs returns the ids of the uncommitted writes matching q, in
// submission order.
func (s *Store) PendingIDs(q Query) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, w := range s.pending {
		if q.Matches(w.Record) {
			ids = append(ids, w.Location.ID)
		}
	}
	return ids
}

func (s *Store) snapshot(ctx context.Context, q Query) (Snapshot, error) {
	if err := q.Validate(); err != nil {
		return Snapshot{}, err
	}
	if err := s.rules.Authorize(ctx, OpList, Location{Collection: q.Collection}, nil); err != nil {
		return Snapshot{}, err
	}
	docs, err := s.backend.List(ctx, q)
	if err != nil {
		return Snapshot{}, err
	}

	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		seen[d.DocID()] = struct{}{}
	}

	snap := Snapshot{Query: q, Docs: docs}
	s.mu.Lock()
	for _, w := range s.pending {
		if !q.Matches(w.Record) {
			continue
		}
		if _, ok := seen[w.Location.ID]; ok {
			continue
		}
		snap.Docs = append(snap.Docs, domain.Clone(w.Record))
		snap.HasPendingWrites = true
	}
	s.mu.Unlock()
	snap.ReadTime = s.now().UTC()
	return snap, nil
}

// notify wakes every subscription watching collection.
func (s *Store) notify(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		if sub.query.Collection == collection {
			sub.kick()
		}
	}
}

// Close rejects new writes, commits the ones already queued, and closes all
// subscriptions. It returns ctx.Err() if the queue does not drain in time.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := make([]*Subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	close(s.stop)
	for _, sub := range subs {
		sub.Close()
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
