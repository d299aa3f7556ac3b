package livesync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/notify"
)

func TestWriter_IntentPendingSynchronously(t *testing.T) {
	s := newStore(t)
	party := createParty(t, s, "p")
	w := NewWriter(s, &recorder{})

	loc := docstore.NewLocation(domain.CollectionMessages)
	intent := w.Create(context.Background(), loc, &domain.ChatMessage{ID: loc.ID, PartyID: party, Sender: "Dana", Text: "hi"})

	// Read immediately: the optimistic document is already visible.
	snap, err := s.Fetch(context.Background(), docstore.ByParty(domain.CollectionMessages, party))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(snap.Docs) != 1 {
		t.Fatalf("write should be visible before it is acknowledged, got %d docs", len(snap.Docs))
	}

	state, err := intent.Wait(context.Background())
	if err != nil || state != Confirmed {
		t.Fatalf("Wait = %v, %v", state, err)
	}
	if intent.Err() != nil {
		t.Fatalf("confirmed intent has error %v", intent.Err())
	}
}

func TestWriter_FailureNotifiesExactlyOnce(t *testing.T) {
	s := newStore(t)
	rec := &recorder{}
	w := NewWriter(s, rec)

	ctx := notify.WithClientID(context.Background(), "client-9")
	ctx, cancel := context.WithCancel(ctx)

	loc := docstore.NewLocation(domain.CollectionRSVPs)
	intent := w.Create(ctx, loc, &domain.RSVP{ID: loc.ID, PartyID: "no-such-party", Name: "Dana"})
	if intent.State() != Pending && intent.State() != Failed {
		t.Fatalf("unexpected initial state %v", intent.State())
	}
	cancel() // the request ending does not cancel the write

	<-intent.Done()
	if intent.State() != Failed {
		t.Fatalf("expected Failed, got %v", intent.State())
	}
	if !errors.Is(intent.Err(), docstore.ErrPermissionDenied) {
		t.Fatalf("expected permission denied cause, got %v", intent.Err())
	}
	if rec.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", rec.count())
	}

	var pe *notify.PermissionError
	if !errors.As(rec.errs[0], &pe) {
		t.Fatalf("expected *notify.PermissionError, got %T", rec.errs[0])
	}
	if pe.Path != loc.Path() || pe.Operation != docstore.OpCreate {
		t.Fatalf("notification carries %s/%s; want %s/%s", pe.Path, pe.Operation, loc.Path(), docstore.OpCreate)
	}
	if notify.ClientIDFrom(rec.ctxs[0]) != "client-9" {
		t.Fatalf("notification context lost the client id")
	}

	time.Sleep(20 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("late duplicate notification: %d", rec.count())
	}
}

func TestWriter_TimeoutFailsWrite(t *testing.T) {
	s := newStore(t)
	rec := &recorder{}
	w := NewWriter(s, rec, WithWriteTimeout(time.Nanosecond))

	loc := docstore.NewLocation(domain.CollectionParties)
	intent := w.Create(context.Background(), loc, &domain.Party{ID: loc.ID, Name: "n", Date: "d", Time: "t", Location: "l"})
	state, _ := intent.Wait(context.Background())
	if state != Failed || !errors.Is(intent.Err(), context.DeadlineExceeded) {
		t.Fatalf("expected deadline failure, got %v %v", state, intent.Err())
	}
	if rec.count() != 1 {
		t.Fatalf("expected one notification, got %d", rec.count())
	}
}

func TestIntentState_String(t *testing.T) {
	for s, want := range map[IntentState]string{Pending: "pending", Confirmed: "confirmed", Failed: "failed", IntentState(9): "unknown"} {
		if s.String() != want {
			t.Fatalf("%d.String() = %q; want %q", s, s.String(), want)
		}
	}
}
