package livesync

import (
	"context"
	"sync"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/notify"
)

// State is what a LiveCollection currently exposes.
type State[T domain.Record] struct {
	Docs             []T
	Loading          bool
	HasPendingWrites bool
	// Err is the last query failure, cleared by the next delivery.
	Err error
}

// CollectionOption configures a LiveCollection.
type CollectionOption[T domain.Record] func(*LiveCollection[T])

// Sorted orders every delivered snapshot with SortByTimestamp.
func Sorted[T domain.Record](dir Direction) CollectionOption[T] {
	return func(c *LiveCollection[T]) {
		c.order = func(docs []T) []T { return SortByTimestamp(docs, dir) }
	}
}

// ReportTo publishes query failures to n as notify.SubscriptionError.
func ReportTo[T domain.Record](n notify.Notifier) CollectionOption[T] {
	return func(c *LiveCollection[T]) { c.notifier = n }
}

// OnChange registers fn to run after every state change.
func OnChange[T domain.Record](fn func()) CollectionOption[T] {
	return func(c *LiveCollection[T]) { c.onChange = fn }
}

// LiveCollection exposes the current result set of a descriptor. It holds
// at most one live subscription: binding a different descriptor closes the
// previous subscription before the next one opens, and binding the same
// descriptor again is a no-op.
type LiveCollection[T domain.Record] struct {
	src      Subscriber
	notifier notify.Notifier
	order    func([]T) []T
	onChange func()

	// bindMu serializes Bind and Close so subscriptions never overlap.
	bindMu sync.Mutex

	mu    sync.Mutex
	gen   uint64
	desc  *docstore.Query
	sub   *docstore.Subscription
	ctx   context.Context
	state State[T]

	changes chan struct{}
}

// NewLiveCollection returns an unbound collection reading from src.
func NewLiveCollection[T domain.Record](src Subscriber, opts ...CollectionOption[T]) *LiveCollection[T] {
	c := &LiveCollection[T]{
		src:     src,
		changes: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Bind points the collection at desc. A nil desc exposes an empty result
// set with Loading false. Otherwise Loading stays true until the first
// snapshot or query error arrives.
func (c *LiveCollection[T]) Bind(ctx context.Context, desc *docstore.Query) error {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()

	c.mu.Lock()
	if desc != nil && c.desc == desc {
		c.mu.Unlock()
		return nil
	}
	prev := c.sub
	c.gen++
	gen := c.gen
	c.desc = desc
	c.sub = nil
	c.ctx = ctx
	c.state = State[T]{Loading: desc != nil}
	c.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	c.signal()
	if desc == nil {
		return nil
	}

	sub, err := c.src.Subscribe(ctx, *desc,
		func(s docstore.Snapshot) { c.deliver(gen, s) },
		func(err error) { c.fail(gen, *desc, err) },
	)
	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.state.Loading = false
			c.state.Err = err
		}
		c.mu.Unlock()
		c.signal()
		return err
	}

	c.mu.Lock()
	stale := c.gen != gen
	if !stale {
		c.sub = sub
	}
	c.mu.Unlock()
	if stale {
		sub.Close()
	}
	return nil
}

func (c *LiveCollection[T]) deliver(gen uint64, s docstore.Snapshot) {
	docs := make([]T, 0, len(s.Docs))
	for _, d := range s.Docs {
		if v, ok := d.(T); ok {
			docs = append(docs, v)
		}
	}
	if c.order != nil {
		docs = c.order(docs)
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.state = State[T]{Docs: docs, HasPendingWrites: s.HasPendingWrites}
	c.mu.Unlock()
	c.signal()
}

func (c *LiveCollection[T]) fail(gen uint64, q docstore.Query, err error) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.state.Loading = false
	c.state.Err = err
	ctx := c.ctx
	c.mu.Unlock()

	if c.notifier != nil {
		c.notifier.Publish(ctx, &notify.SubscriptionError{Query: q, Err: err})
	}
	c.signal()
}

func (c *LiveCollection[T]) signal() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
	if c.onChange != nil {
		c.onChange()
	}
}

// Snapshot returns the current state. The Docs slice must not be modified.
func (c *LiveCollection[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Descriptor returns the bound descriptor.
func (c *LiveCollection[T]) Descriptor() *docstore.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desc
}

// Changes signals after state changes. Signals are coalesced; read Snapshot
// for the latest state.
func (c *LiveCollection[T]) Changes() <-chan struct{} { return c.changes }

// Close ends the live subscription.
func (c *LiveCollection[T]) Close() {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()

	c.mu.Lock()
	prev := c.sub
	c.gen++
	c.sub = nil
	c.desc = nil
	c.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}
