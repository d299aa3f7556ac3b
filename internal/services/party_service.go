// Package services – PartyService
//
// PartyService creates and loads parties. Creation is optimistic: the
// party gets its id up front, the write is handed to the live-sync writer,
// and the caller receives the party together with the write's intent
// without waiting for the commit. A rejected write is reported through the
// notifier, never through the return value.
package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/livesync"
)

// PartyInput carries the host's form fields.
type PartyInput struct {
	Name        string
	Date        string
	Time        string
	Location    string
	Description string
}

// PartyService provides party-level operations.
type PartyService struct {
	Store  Reader
	Writer Creator
}

// NewPartyService constructs a PartyService.
func NewPartyService(store Reader, w Creator) *PartyService {
	return &PartyService{Store: store, Writer: w}
}

// Create validates in and issues the party's creation. The returned party
// has its final id and no timestamp yet.
func (s *PartyService) Create(ctx context.Context, in PartyInput) (*domain.Party, *livesync.Intent, error) {
	ctx, span := otel.Tracer("services/PartyService").Start(ctx, "Create")
	defer span.End()

	p := &domain.Party{
		Name:        normalize(in.Name),
		Date:        normalize(in.Date),
		Time:        normalize(in.Time),
		Location:    normalize(in.Location),
		Description: in.Description,
	}
	if err := p.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidParty, err)
	}

	loc := docstore.NewLocation(domain.CollectionParties)
	p.ID = loc.ID
	span.SetAttributes(attribute.String("party.id", p.ID))

	intent := s.Writer.Create(ctx, loc, p)
	return p, intent, nil
}

// Get returns the party with id, including one whose creation is still
// pending.
func (s *PartyService) Get(ctx context.Context, id string) (*domain.Party, error) {
	ctx, span := otel.Tracer("services/PartyService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("party.id", id)),
	)
	defer span.End()

	if id == "" {
		return nil, ErrPartyNotFound
	}
	rec, err := s.Store.Get(ctx, docstore.Location{Collection: domain.CollectionParties, ID: id})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	p, ok := rec.(*domain.Party)
	if !ok {
		return nil, ErrPartyNotFound
	}
	return p, nil
}
