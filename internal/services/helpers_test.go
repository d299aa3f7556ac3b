package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/livesync"
	"github.com/tbourn/go-party-backend/internal/repo"
)

// recorder is a notifier that keeps every published error.
type recorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *recorder) Publish(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) all() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// tick returns a clock advancing one second per call.
func tick() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 7, 4, 18, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type fixture struct {
	store  *docstore.Store
	writer *livesync.Writer
	notes  *recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "services.db"), repo.WithSilentLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := docstore.New(docstore.NewGormBackend(db), docstore.WithClock(tick()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	notes := &recorder{}
	return fixture{store: s, writer: livesync.NewWriter(s, notes), notes: notes}
}

func wait(t *testing.T, in *livesync.Intent) (livesync.IntentState, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return in.Wait(ctx)
}

func mustParty(t *testing.T, f fixture, name string) string {
	t.Helper()
	p, in, err := NewPartyService(f.store, f.writer).Create(context.Background(), PartyInput{
		Name: name, Date: "2025-07-04", Time: "19:00", Location: "Roof",
	})
	if err != nil {
		t.Fatalf("create party: %v", err)
	}
	if st, err := wait(t, in); st != livesync.Confirmed {
		t.Fatalf("party write %v: %v", st, err)
	}
	return p.ID
}
