// Package services – RSVPService
//
// RSVPService records guest attendance and lists a party's RSVPs newest
// first.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/livesync"
)

// RSVPService provides RSVP operations for a party.
type RSVPService struct {
	Store  Reader
	Writer Creator

	// MaxNameRunes caps guest names.
	MaxNameRunes int
}

// NewRSVPService constructs an RSVPService with default limits.
func NewRSVPService(store Reader, w Creator) *RSVPService {
	return &RSVPService{Store: store, Writer: w, MaxNameRunes: 100}
}

// Submit issues an RSVP for name. The party reference is checked when the
// write commits, so an unknown party surfaces as a permission error
// notification rather than here.
func (s *RSVPService) Submit(ctx context.Context, partyID, name string) (*domain.RSVP, *livesync.Intent, error) {
	ctx, span := otel.Tracer("services/RSVPService").Start(ctx, "Submit",
		trace.WithAttributes(attribute.String("party.id", partyID)),
	)
	defer span.End()

	if partyID == "" {
		return nil, nil, ErrPartyNotFound
	}
	name = normalize(name)
	if name == "" {
		return nil, nil, ErrEmptyName
	}
	if tooLong(name, s.MaxNameRunes) {
		return nil, nil, ErrTooLong
	}

	loc := docstore.NewLocation(domain.CollectionRSVPs)
	r := &domain.RSVP{ID: loc.ID, PartyID: partyID, Name: name}
	return r, s.Writer.Create(ctx, loc, r), nil
}

// List returns up to limit RSVPs, newest first, and the stats of the whole
// result set, pending RSVPs included (limit <= 0 returns all).
func (s *RSVPService) List(ctx context.Context, partyID string, limit int) ([]*domain.RSVP, Stats, error) {
	ctx, span := otel.Tracer("services/RSVPService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("party.id", partyID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	snap, err := s.Store.Fetch(ctx, docstore.ByParty(domain.CollectionRSVPs, partyID))
	if err != nil {
		return nil, Stats{}, err
	}
	all := livesync.SortByTimestamp(typed[*domain.RSVP](snap), livesync.Descending)
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, statsOf(snap), nil
}

// Stats returns the committed RSVP count and latest timestamp plus the ids
// of pending RSVPs.
func (s *RSVPService) Stats(ctx context.Context, partyID string) (Stats, error) {
	return stats(ctx, s.Store, docstore.ByParty(domain.CollectionRSVPs, partyID))
}
