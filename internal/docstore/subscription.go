package docstore

import (
	"context"
	"errors"
	"sync"
)

// Subscription is an open live query. Each subscription runs one worker
// goroutine, so callbacks for a subscription are never invoked concurrently
// and arrive in the order the snapshots were taken. Change signals that
// arrive while a snapshot is being taken are coalesced into one more read.
type Subscription struct {
	store  *Store
	query  Query
	onNext func(Snapshot)
	onErr  func(error)

	signal   chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Subscribe opens a live query. onNext receives the full result set after
// the subscription opens and again after every change to q's collection.
// onErr, if non-nil, receives query failures; the subscription stays open
// and retries on the next change. The subscription ends when ctx is done or
// Close is called.
func (s *Store) Subscribe(ctx context.Context, q Query, onNext func(Snapshot), onErr func(error)) (*Subscription, error) {
	if onNext == nil {
		return nil, errors.New("docstore: nil snapshot callback")
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	sub := &Subscription{
		store:  s,
		query:  q,
		onNext: onNext,
		onErr:  onErr,
		signal: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	activeSubs.Inc()

	sub.kick()
	go sub.run(ctx)
	return sub, nil
}

// Query returns the descriptor the subscription was opened with.
func (sub *Subscription) Query() Query { return sub.query }

func (sub *Subscription) kick() {
	select {
	case sub.signal <- struct{}{}:
	default:
	}
}

func (sub *Subscription) run(ctx context.Context) {
	defer close(sub.done)
	defer sub.detach()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.stop:
			return
		case <-sub.signal:
		}

		snap, err := sub.store.snapshot(ctx, sub.query)

		select {
		case <-sub.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err != nil {
			if sub.onErr != nil {
				sub.onErr(err)
			}
			continue
		}
		snapshotsDelivered.WithLabelValues(sub.query.Collection).Inc()
		sub.onNext(snap)
	}
}

func (sub *Subscription) detach() {
	s := sub.store
	s.mu.Lock()
	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		activeSubs.Dec()
	}
	s.mu.Unlock()
}

// Close stops the subscription and waits for its worker to exit. No callback
// runs after Close returns. Close must not be called from the subscription's
// own callbacks.
func (sub *Subscription) Close() {
	sub.stopOnce.Do(func() { close(sub.stop) })
	<-sub.done
}

// Done is closed once the worker has exited.
func (sub *Subscription) Done() <-chan struct{} { return sub.done }
