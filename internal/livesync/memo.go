// Package livesync binds live document queries to consumers: it memoizes
// query descriptors, keeps one live subscription per descriptor, orders
// snapshots by server timestamp, and issues non-blocking writes whose
// failures are reported through a notify.Notifier.
package livesync

import (
	"context"
	"sync"

	"github.com/tbourn/go-party-backend/internal/docstore"
)

// Subscriber opens live queries. *docstore.Store implements it.
type Subscriber interface {
	Subscribe(ctx context.Context, q docstore.Query, onNext func(docstore.Snapshot), onErr func(error)) (*docstore.Subscription, error)
}

type memoKey struct {
	handle Subscriber
	query  docstore.Query
}

// QueryMemo hands out a stable descriptor for a dependency key made of the
// store handle and the query fields. The same pointer is returned for as
// long as the key is unchanged, so consumers can compare descriptors by
// identity to decide whether to resubscribe.
type QueryMemo struct {
	mu   sync.Mutex
	key  memoKey
	desc *docstore.Query
}

// Descriptor returns the memoized descriptor for (handle, collection,
// field, value), or nil while handle is nil or a filtered query has no
// value yet.
func (m *QueryMemo) Descriptor(handle Subscriber, collection, field, value string) *docstore.Query {
	if handle == nil || (field != "" && value == "") {
		m.mu.Lock()
		m.key, m.desc = memoKey{}, nil
		m.mu.Unlock()
		return nil
	}

	k := memoKey{handle: handle, query: docstore.Where(collection, field, value)}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.desc != nil && m.key == k {
		return m.desc
	}
	q := k.query
	m.key, m.desc = k, &q
	return m.desc
}
