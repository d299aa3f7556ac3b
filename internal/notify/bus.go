package notify

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Notifier is the port through which failures are reported. Publish never
// returns an error and never panics into the caller.
type Notifier interface {
	Publish(ctx context.Context, err error)
}

// Listener handles one published failure.
type Listener func(ctx context.Context, err error)

// Bus fans every published failure out to all current listeners, in
// subscription order. The zero value is ready to use.
type Bus struct {
	mu        sync.RWMutex
	next      int
	listeners map[int]Listener
}

// NewBus returns an empty Bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe adds l and returns a function that removes it.
func (b *Bus) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	if b.listeners == nil {
		b.listeners = make(map[int]Listener)
	}
	id := b.next
	b.next++
	b.listeners[id] = l
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers err to every listener synchronously.
func (b *Bus) Publish(ctx context.Context, err error) {
	if err == nil {
		return
	}
	b.mu.RLock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, l := range ls {
		deliver(ctx, l, err)
	}
}

func deliver(ctx context.Context, l Listener, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Err(err).Msg("notify listener panicked")
		}
	}()
	l(ctx, err)
}

// Len returns the number of listeners.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
