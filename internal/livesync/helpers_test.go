package livesync

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/notify"
	"github.com/tbourn/go-party-backend/internal/repo"
)

func newStore(t *testing.T) *docstore.Store {
	t.Helper()
	return newStoreOver(t, nil)
}

// newStoreOver is newStore with the sqlite backend passed through wrap.
func newStoreOver(t *testing.T, wrap func(docstore.Backend) docstore.Backend) *docstore.Store {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "live.db"), repo.WithSilentLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	var b docstore.Backend = docstore.NewGormBackend(db)
	if wrap != nil {
		b = wrap(b)
	}
	s := docstore.New(b)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	return s
}

func createParty(t *testing.T, s *docstore.Store, name string) string {
	t.Helper()
	loc := docstore.NewLocation(domain.CollectionParties)
	p := &domain.Party{ID: loc.ID, Name: name, Date: "2025-07-04", Time: "19:00", Location: "Roof"}
	if err := s.Create(context.Background(), loc, p); err != nil {
		t.Fatalf("create party: %v", err)
	}
	return loc.ID
}

// recorder is a Notifier that keeps every published error.
type recorder struct {
	mu   sync.Mutex
	errs []error
	ctxs []context.Context
}

func (r *recorder) Publish(ctx context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	r.ctxs = append(r.ctxs, ctx)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

var _ notify.Notifier = (*recorder)(nil)

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// countingSubscriber counts Subscribe calls made through it.
type countingSubscriber struct {
	*docstore.Store
	mu sync.Mutex
	n  int
}

func (c *countingSubscriber) Subscribe(ctx context.Context, q docstore.Query, onNext func(docstore.Snapshot), onErr func(error)) (*docstore.Subscription, error) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return c.Store.Subscribe(ctx, q, onNext, onErr)
}

func (c *countingSubscriber) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// trackingSubscriber keeps every subscription opened through it.
type trackingSubscriber struct {
	*docstore.Store
	mu   sync.Mutex
	subs []*docstore.Subscription
}

func (tr *trackingSubscriber) Subscribe(ctx context.Context, q docstore.Query, onNext func(docstore.Snapshot), onErr func(error)) (*docstore.Subscription, error) {
	sub, err := tr.Store.Subscribe(ctx, q, onNext, onErr)
	if err == nil {
		tr.mu.Lock()
		tr.subs = append(tr.subs, sub)
		tr.mu.Unlock()
	}
	return sub, err
}

func (tr *trackingSubscriber) opened() []*docstore.Subscription {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]*docstore.Subscription(nil), tr.subs...)
}

// failingLists rejects every List call.
type failingLists struct {
	docstore.Backend
}

func (failingLists) List(context.Context, docstore.Query) ([]domain.Record, error) {
	return nil, errors.New("offline")
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
