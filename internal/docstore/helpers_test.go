package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/repo"
)

func newGormBackend(t *testing.T) *GormBackend {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "store.db"), repo.WithSilentLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewGormBackend(db)
}

func newTestStore(t *testing.T, b Backend, opts ...Option) *Store {
	t.Helper()
	s := New(b, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	return s
}

// gatedBackend holds every Insert until release is closed, and can be told
// to fail Insert or List calls.
type gatedBackend struct {
	Backend
	release chan struct{}

	mu        sync.Mutex
	listErr   error
	insertErr error
}

func (g *gatedBackend) Insert(ctx context.Context, rec domain.Record) error {
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	g.mu.Lock()
	err := g.insertErr
	g.mu.Unlock()
	if err != nil {
		return err
	}
	return g.Backend.Insert(ctx, rec)
}

func (g *gatedBackend) List(ctx context.Context, q Query) ([]domain.Record, error) {
	g.mu.Lock()
	err := g.listErr
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return g.Backend.List(ctx, q)
}

func (g *gatedBackend) failInserts(err error) {
	g.mu.Lock()
	g.insertErr = err
	g.mu.Unlock()
}

func (g *gatedBackend) failLists(err error) {
	g.mu.Lock()
	g.listErr = err
	g.mu.Unlock()
}

var errBoom = errors.New("boom")

func seedParty(t *testing.T, s *Store, name string) Location {
	t.Helper()
	loc := NewLocation(domain.CollectionParties)
	p := &domain.Party{ID: loc.ID, Name: name, Date: "2025-07-04", Time: "19:00", Location: "Roof"}
	if err := s.Create(context.Background(), loc, p); err != nil {
		t.Fatalf("seed party: %v", err)
	}
	return loc
}

// snapshots collects deliveries from a subscription.
type snapshots struct {
	mu   sync.Mutex
	got  []Snapshot
	errs []error
	ch   chan struct{}
}

func newSnapshots() *snapshots { return &snapshots{ch: make(chan struct{}, 64)} }

func (c *snapshots) onNext(s Snapshot) {
	c.mu.Lock()
	c.got = append(c.got, s)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *snapshots) onErr(err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

// waitFor blocks until pred holds for the latest delivery.
func (c *snapshots) waitFor(t *testing.T, pred func(last Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		c.mu.Lock()
		if n := len(c.got); n > 0 && pred(c.got[n-1]) {
			last := c.got[n-1]
			c.mu.Unlock()
			return last
		}
		c.mu.Unlock()
		select {
		case <-c.ch:
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot")
		}
	}
}
