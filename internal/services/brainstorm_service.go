// Package services – BrainstormService
//
// BrainstormService fills in missing party details from the stored party
// and asks the configured provider for ideas.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-party-backend/internal/brainstorm"
)

// BrainstormService generates party ideas.
type BrainstormService struct {
	Parties  *PartyService
	Provider brainstorm.Provider
}

// NewBrainstormService constructs a BrainstormService.
func NewBrainstormService(parties *PartyService, p brainstorm.Provider) *BrainstormService {
	return &BrainstormService{Parties: parties, Provider: p}
}

// Brainstorm returns ideas for the party. When partyID is set the party
// must exist, and its name and date are used for fields left blank in in.
// Provider failures are returned wrapping brainstorm.ErrUnavailable.
func (s *BrainstormService) Brainstorm(ctx context.Context, partyID string, in brainstorm.Input) (brainstorm.Ideas, error) {
	ctx, span := otel.Tracer("services/BrainstormService").Start(ctx, "Brainstorm",
		trace.WithAttributes(attribute.String("party.id", partyID)),
	)
	defer span.End()

	in = in.Normalize()
	if partyID != "" && s.Parties != nil {
		p, err := s.Parties.Get(ctx, partyID)
		if err != nil {
			return brainstorm.Ideas{}, err
		}
		if in.PartyName == "" {
			in.PartyName = p.Name
		}
		if in.PartyDate == "" {
			in.PartyDate = p.Date
		}
	}
	if in.PartyName == "" {
		return brainstorm.Ideas{}, ErrInvalidParty
	}
	if s.Provider == nil {
		return brainstorm.Ideas{}, brainstorm.ErrUnavailable
	}

	ideas, err := s.Provider.Brainstorm(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "brainstorm failed")
		log.Error().Err(err).Str("party_id", partyID).Msg("brainstorm failed")
		if !errors.Is(err, brainstorm.ErrUnavailable) {
			err = errors.Join(brainstorm.ErrUnavailable, err)
		}
		return brainstorm.Ideas{}, err
	}
	return ideas, nil
}
