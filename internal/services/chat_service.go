// Package services – ChatService
//
// ChatService posts guest chat messages and lists a party's conversation
// oldest first. Messages from guests without a display name are attributed
// to domain.DefaultSender.
package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/livesync"
)

// ChatService provides guest chat operations.
type ChatService struct {
	Store  Reader
	Writer Creator

	MaxTextRunes   int
	MaxSenderRunes int
}

// NewChatService constructs a ChatService with default limits.
func NewChatService(store Reader, w Creator) *ChatService {
	return &ChatService{Store: store, Writer: w, MaxTextRunes: 2000, MaxSenderRunes: 100}
}

// Send issues a chat message. Text keeps its inner line breaks but must not
// be blank.
func (s *ChatService) Send(ctx context.Context, partyID, sender, text string) (*domain.ChatMessage, *livesync.Intent, error) {
	ctx, span := otel.Tracer("services/ChatService").Start(ctx, "Send",
		trace.WithAttributes(attribute.String("party.id", partyID)),
	)
	defer span.End()

	if partyID == "" {
		return nil, nil, ErrPartyNotFound
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, ErrEmptyText
	}
	sender = normalize(sender)
	if sender == "" {
		sender = domain.DefaultSender
	}
	if tooLong(text, s.MaxTextRunes) || tooLong(sender, s.MaxSenderRunes) {
		return nil, nil, ErrTooLong
	}

	loc := docstore.NewLocation(domain.CollectionMessages)
	m := &domain.ChatMessage{ID: loc.ID, PartyID: partyID, Sender: sender, Text: text}
	return m, s.Writer.Create(ctx, loc, m), nil
}

// List returns the most recent limit messages in chronological order
// (limit <= 0 returns all) and the stats of the whole conversation.
func (s *ChatService) List(ctx context.Context, partyID string, limit int) ([]*domain.ChatMessage, Stats, error) {
	ctx, span := otel.Tracer("services/ChatService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("party.id", partyID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	snap, err := s.Store.Fetch(ctx, docstore.ByParty(domain.CollectionMessages, partyID))
	if err != nil {
		return nil, Stats{}, err
	}
	all := livesync.SortByTimestamp(typed[*domain.ChatMessage](snap), livesync.Ascending)
	if limit > 0 && limit < len(all) {
		all = all[len(all)-limit:]
	}
	return all, statsOf(snap), nil
}

// Stats returns the committed message count and latest timestamp plus the
// ids of pending messages.
func (s *ChatService) Stats(ctx context.Context, partyID string) (Stats, error) {
	return stats(ctx, s.Store, docstore.ByParty(domain.CollectionMessages, partyID))
}
