package services

import (
	"testing"
	"time"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
)

func TestStatsOf_SplitsPending(t *testing.T) {
	early := time.Date(2025, 7, 4, 18, 0, 0, 0, time.UTC)
	late := early.Add(time.Minute)

	snap := docstore.Snapshot{Docs: []domain.Record{
		&domain.RSVP{ID: "b", PartyID: "p", Name: "Blair", CreatedAt: &late},
		&domain.RSVP{ID: "z", PartyID: "p", Name: "Zoe"},
		&domain.RSVP{ID: "a", PartyID: "p", Name: "Alex", CreatedAt: &early},
		&domain.RSVP{ID: "c", PartyID: "p", Name: "Casey"},
	}}

	st := statsOf(snap)
	if st.Count != 2 || st.Latest == nil || !st.Latest.Equal(late) {
		t.Fatalf("committed part = %d, %v", st.Count, st.Latest)
	}
	if len(st.Pending) != 2 || st.Pending[0] != "c" || st.Pending[1] != "z" {
		t.Fatalf("Pending = %v, want sorted [c z]", st.Pending)
	}
	if st.Total() != 4 {
		t.Fatalf("Total = %d", st.Total())
	}

	if empty := statsOf(docstore.Snapshot{}); empty.Total() != 0 || empty.Latest != nil {
		t.Fatalf("empty snapshot stats = %+v", empty)
	}
}
