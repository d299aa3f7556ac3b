package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/livesync"
)

func TestChatService_SendAndListOldestFirst(t *testing.T) {
	f := newFixture(t)
	partyID := mustParty(t, f, "Rooftop Bash")
	svc := NewChatService(f.store, f.writer)
	ctx := context.Background()

	msgs := []struct{ sender, text string }{
		{"Dana", "hi all"},
		{"", "who brings ice?"},
		{"Alex", "  me  "},
	}
	for _, m := range msgs {
		_, in, err := svc.Send(ctx, partyID, m.sender, m.text)
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if st, err := wait(t, in); st != livesync.Confirmed {
			t.Fatalf("message write: %v %v", st, err)
		}
	}

	list, _, err := svc.List(ctx, partyID, 0)
	if err != nil || len(list) != 3 {
		t.Fatalf("List = %d msgs, %v", len(list), err)
	}
	if list[0].Text != "hi all" || list[2].Text != "me" {
		t.Fatalf("want chronological order, got %q ... %q", list[0].Text, list[2].Text)
	}
	if list[1].Sender != domain.DefaultSender {
		t.Fatalf("blank sender should fall back to %q, got %q", domain.DefaultSender, list[1].Sender)
	}

	last, lst, err := svc.List(ctx, partyID, 2)
	if err != nil || len(last) != 2 || last[0].Text != "who brings ice?" || last[1].Text != "me" {
		t.Fatalf("limit should keep the most recent messages, got %+v", last)
	}

	if lst.Total() != 3 {
		t.Fatalf("limited list should still report the whole chat, got %+v", lst)
	}

	st, err := svc.Stats(ctx, partyID)
	if err != nil || st.Count != 3 {
		t.Fatalf("Stats = %+v, %v", st, err)
	}
}

func TestChatService_SendRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	svc := NewChatService(f.store, f.writer)
	ctx := context.Background()

	if _, _, err := svc.Send(ctx, "p1", "Dana", " \n "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("blank text: %v", err)
	}
	if _, _, err := svc.Send(ctx, "", "Dana", "hi"); !errors.Is(err, ErrPartyNotFound) {
		t.Fatalf("missing party: %v", err)
	}
	if _, _, err := svc.Send(ctx, "p1", "Dana", strings.Repeat("x", 2001)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("long text: %v", err)
	}
	if len(f.notes.all()) != 0 {
		t.Fatalf("rejected input must not reach the notifier")
	}
}
