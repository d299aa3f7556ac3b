package livesync

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
)

func waitFrame(t *testing.T, v *PartyView, pred func(Frame) bool) Frame {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if f := v.Frame(); pred(f) {
			return f
		}
		select {
		case <-v.Changes():
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out; last frame %+v", v.Frame())
		}
	}
}

func TestPartyView_RooftopBashScenario(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	w := NewWriter(s, &recorder{})

	// Host creates the party and navigates before the write is confirmed.
	ploc := docstore.NewLocation(domain.CollectionParties)
	w.Create(ctx, ploc, &domain.Party{ID: ploc.ID, Name: "Rooftop Bash", Date: "2025-07-04", Time: "19:00", Location: "Roof"})

	rloc := docstore.NewLocation(domain.CollectionRSVPs)
	rsvp := w.Create(ctx, rloc, &domain.RSVP{ID: rloc.ID, PartyID: ploc.ID, Name: "Dana"})
	mloc := docstore.NewLocation(domain.CollectionMessages)
	msg := w.Create(ctx, mloc, &domain.ChatMessage{ID: mloc.ID, PartyID: ploc.ID, Sender: "Dana", Text: "see you there"})

	for _, in := range []*Intent{rsvp, msg} {
		if st, err := in.Wait(ctx); err != nil || st != Confirmed {
			t.Fatalf("intent %s: %v %v", in.Location, st, err)
		}
	}

	// Reopen the party page.
	v := NewPartyView(s, &recorder{})
	defer v.Close()
	if err := v.SetParty(ctx, ploc.ID); err != nil {
		t.Fatalf("SetParty: %v", err)
	}
	f := waitFrame(t, v, func(f Frame) bool {
		return !f.Loading && f.Party != nil && f.RSVPCount == 1 && len(f.Messages) == 1
	})
	if f.Party.Name != "Rooftop Bash" || f.NotFound {
		t.Fatalf("unexpected party in frame: %+v", f)
	}
	if f.Messages[0].Text != "see you there" || f.Messages[0].Sender != "Dana" {
		t.Fatalf("unexpected message %+v", f.Messages[0])
	}
	if f.RSVPs[0].Name != "Dana" {
		t.Fatalf("unexpected rsvp %+v", f.RSVPs[0])
	}
}

func TestPartyView_DescendingRSVPs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	party := createParty(t, s, "p")
	w := NewWriter(s, &recorder{})

	v := NewPartyView(s, &recorder{})
	defer v.Close()
	if err := v.SetParty(ctx, party); err != nil {
		t.Fatalf("SetParty: %v", err)
	}

	var intents []*Intent
	for _, name := range []string{"Alex", "Blair"} {
		loc := docstore.NewLocation(domain.CollectionRSVPs)
		intents = append(intents, w.Create(ctx, loc, &domain.RSVP{ID: loc.ID, PartyID: party, Name: name}))
	}
	for _, in := range intents {
		if st, _ := in.Wait(ctx); st != Confirmed {
			t.Fatalf("rsvp not confirmed: %v", in.Err())
		}
	}

	f := waitFrame(t, v, func(f Frame) bool {
		if f.RSVPCount != 2 {
			return false
		}
		for _, r := range f.RSVPs {
			if r.CreatedAt == nil {
				return false
			}
		}
		return true
	})
	if f.RSVPs[0].Name != "Blair" || f.RSVPs[1].Name != "Alex" {
		t.Fatalf("expected Blair before Alex, got %s, %s", f.RSVPs[0].Name, f.RSVPs[1].Name)
	}
}

func TestPartyView_NotFoundAndRebind(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	v := NewPartyView(s, &recorder{})
	defer v.Close()

	if err := v.SetParty(ctx, ""); err != nil {
		t.Fatalf("SetParty(empty): %v", err)
	}
	if f := v.Frame(); f.Loading || f.NotFound || f.RSVPCount != 0 {
		t.Fatalf("unbound view should be idle: %+v", f)
	}

	if err := v.SetParty(ctx, "missing"); err != nil {
		t.Fatalf("SetParty: %v", err)
	}
	waitFrame(t, v, func(f Frame) bool { return !f.Loading && f.NotFound })

	p, r, m := v.Descriptors()
	if err := v.SetParty(ctx, "missing"); err != nil {
		t.Fatalf("SetParty again: %v", err)
	}
	p2, r2, m2 := v.Descriptors()
	if p != p2 || r != r2 || m != m2 {
		t.Fatalf("same party id should keep descriptors")
	}

	found := createParty(t, s, "Found")
	if err := v.SetParty(ctx, found); err != nil {
		t.Fatalf("SetParty: %v", err)
	}
	f := waitFrame(t, v, func(f Frame) bool { return f.Party != nil })
	if f.PartyID != found || f.NotFound {
		t.Fatalf("unexpected frame %+v", f)
	}
}
