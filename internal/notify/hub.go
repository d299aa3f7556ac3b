package notify

import (
	"context"
	"sync"
	"time"
)

const (
	defaultStreamBuffer = 16
	defaultInboxSize    = 32
	defaultInboxTTL     = 10 * time.Minute
	defaultMaxInboxes   = 1024
)

// Hub is a Toaster that routes notifications to the client that caused
// them. Connected clients receive notifications on their stream channels;
// notifications for clients without an open stream are kept in a small
// per-client inbox until the client connects or drains it. Inboxes expire
// after a quiet period and at most maxInboxes are kept; the least recently
// used one is evicted first.
type Hub struct {
	mu         sync.Mutex
	next       int
	streams    map[string]map[int]chan Notification
	inbox      map[string]*inbox
	inboxSize  int
	inboxTTL   time.Duration
	maxInboxes int
	bufSize    int
	now        func() time.Time
}

type inbox struct {
	items   []Notification
	updated time.Time
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithStreamBuffer sets how many notifications a connected stream may have
// queued before further ones are dropped for it.
func WithStreamBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.bufSize = n
		}
	}
}

// WithInboxSize sets how many notifications are kept for a client without an
// open stream. Older ones are discarded first.
func WithInboxSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.inboxSize = n
		}
	}
}

// WithInboxTTL sets how long an inbox survives without new notifications.
func WithInboxTTL(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.inboxTTL = d
		}
	}
}

// WithMaxInboxes caps the number of clients with queued notifications.
func WithMaxInboxes(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.maxInboxes = n
		}
	}
}

// WithHubClock replaces time.Now for inbox expiry.
func WithHubClock(now func() time.Time) HubOption {
	return func(h *Hub) { h.now = now }
}

// NewHub returns an empty Hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		streams:   make(map[string]map[int]chan Notification),
		inbox:      make(map[string]*inbox),
		inboxSize:  defaultInboxSize,
		inboxTTL:   defaultInboxTTL,
		maxInboxes: defaultMaxInboxes,
		bufSize:    defaultStreamBuffer,
		now:        time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Register opens a stream for clientID. Queued inbox notifications are
// delivered first. The returned cancel function closes the channel.
func (h *Hub) Register(clientID string) (<-chan Notification, func()) {
	ch := make(chan Notification, h.bufSize)

	h.mu.Lock()
	id := h.next
	h.next++
	if h.streams[clientID] == nil {
		h.streams[clientID] = make(map[int]chan Notification)
	}
	h.streams[clientID][id] = ch
	queued := h.take(clientID)
	for i, n := range queued {
		if i >= h.bufSize {
			break
		}
		ch <- n
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if m := h.streams[clientID]; m != nil {
				delete(m, id)
				if len(m) == 0 {
					delete(h.streams, clientID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Toast implements Toaster. Notifications without a client id in ctx are
// broadcast to every open stream.
func (h *Hub) Toast(ctx context.Context, n Notification) {
	clientID := ClientIDFrom(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()

	if clientID == "" {
		for _, m := range h.streams {
			for _, ch := range m {
				select {
				case ch <- n:
				default:
				}
			}
		}
		return
	}

	if h.deliver(clientID, n) {
		return
	}
	now := h.now()
	box := h.inbox[clientID]
	if box == nil {
		h.evict(now)
		box = &inbox{}
		h.inbox[clientID] = box
	} else if h.expired(box, now) {
		box.items = nil
	}
	box.items = append(box.items, n)
	if len(box.items) > h.inboxSize {
		box.items = box.items[len(box.items)-h.inboxSize:]
	}
	box.updated = now
}

// Push delivers n to the open streams of the client in ctx and reports
// whether one accepted it. Nothing is queued.
func (h *Hub) Push(ctx context.Context, n Notification) bool {
	clientID := ClientIDFrom(ctx)
	if clientID == "" {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deliver(clientID, n)
}

// Drain returns and clears the inbox of clientID.
func (h *Hub) Drain(clientID string) []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.take(clientID)
}

// deliver offers n to every stream of clientID. h.mu must be held.
func (h *Hub) deliver(clientID string, n Notification) bool {
	delivered := false
	for _, ch := range h.streams[clientID] {
		select {
		case ch <- n:
			delivered = true
		default:
		}
	}
	return delivered
}

// take removes the inbox of clientID and returns its live items. h.mu must
// be held.
func (h *Hub) take(clientID string) []Notification {
	box := h.inbox[clientID]
	delete(h.inbox, clientID)
	if box == nil || h.expired(box, h.now()) {
		return nil
	}
	return box.items
}

func (h *Hub) expired(box *inbox, now time.Time) bool {
	return now.Sub(box.updated) > h.inboxTTL
}

// evict drops expired inboxes and, if still full, the least recently
// updated one. h.mu must be held.
func (h *Hub) evict(now time.Time) {
	for id, box := range h.inbox {
		if h.expired(box, now) {
			delete(h.inbox, id)
		}
	}
	if len(h.inbox) < h.maxInboxes {
		return
	}
	var oldest string
	var at time.Time
	for id, box := range h.inbox {
		if oldest == "" || box.updated.Before(at) {
			oldest, at = id, box.updated
		}
	}
	delete(h.inbox, oldest)
}
