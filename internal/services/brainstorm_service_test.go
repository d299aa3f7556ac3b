package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-party-backend/internal/brainstorm"
)

type fakeProvider struct {
	got brainstorm.Input
	err error
}

func (p *fakeProvider) Brainstorm(_ context.Context, in brainstorm.Input) (brainstorm.Ideas, error) {
	p.got = in
	if p.err != nil {
		return brainstorm.Ideas{}, p.err
	}
	return brainstorm.Ideas{Themes: []brainstorm.Idea{{Name: "Luau"}}}, nil
}

func TestBrainstormService_FillsFromParty(t *testing.T) {
	f := newFixture(t)
	partyID := mustParty(t, f, "Rooftop Bash")
	prov := &fakeProvider{}
	svc := NewBrainstormService(NewPartyService(f.store, f.writer), prov)

	ideas, err := svc.Brainstorm(context.Background(), partyID, brainstorm.Input{Budget: " low "})
	if err != nil {
		t.Fatalf("Brainstorm: %v", err)
	}
	if len(ideas.Themes) != 1 {
		t.Fatalf("ideas = %+v", ideas)
	}
	if prov.got.PartyName != "Rooftop Bash" || prov.got.PartyDate != "2025-07-04" || prov.got.Budget != "low" {
		t.Fatalf("provider input = %+v", prov.got)
	}
}

func TestBrainstormService_Errors(t *testing.T) {
	f := newFixture(t)
	parties := NewPartyService(f.store, f.writer)
	ctx := context.Background()

	svc := NewBrainstormService(parties, &fakeProvider{})
	if _, err := svc.Brainstorm(ctx, "missing", brainstorm.Input{}); !errors.Is(err, ErrPartyNotFound) {
		t.Fatalf("unknown party: %v", err)
	}
	if _, err := svc.Brainstorm(ctx, "", brainstorm.Input{}); !errors.Is(err, ErrInvalidParty) {
		t.Fatalf("no name: %v", err)
	}

	boom := errors.New("boom")
	svc = NewBrainstormService(parties, &fakeProvider{err: boom})
	_, err := svc.Brainstorm(ctx, "", brainstorm.Input{PartyName: "x"})
	if !errors.Is(err, brainstorm.ErrUnavailable) || !errors.Is(err, boom) {
		t.Fatalf("provider error should wrap ErrUnavailable and the cause, got %v", err)
	}

	svc = NewBrainstormService(parties, nil)
	if _, err := svc.Brainstorm(ctx, "", brainstorm.Input{PartyName: "x"}); !errors.Is(err, brainstorm.ErrUnavailable) {
		t.Fatalf("nil provider: %v", err)
	}
}
