package livesync

import (
	"context"
	"errors"
	"sync"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/notify"
)

// Frame is one render of a party page: the party, its RSVPs newest first,
// and its chat oldest first.
type Frame struct {
	PartyID          string                `json:"party_id"`
	Party            *domain.Party         `json:"party,omitempty"`
	NotFound         bool                  `json:"not_found"`
	RSVPs            []*domain.RSVP        `json:"rsvps"`
	RSVPCount        int                   `json:"rsvp_count"`
	Messages         []*domain.ChatMessage `json:"messages"`
	Loading          bool                  `json:"loading"`
	HasPendingWrites bool                  `json:"has_pending_writes"`
}

// PartyView keeps the three live queries of a party page bound to the
// current party id.
type PartyView struct {
	handle Subscriber

	partyMemo, rsvpMemo, msgMemo QueryMemo

	party    *LiveCollection[*domain.Party]
	rsvps    *LiveCollection[*domain.RSVP]
	messages *LiveCollection[*domain.ChatMessage]

	mu      sync.Mutex
	partyID string
	changes chan struct{}
}

// NewPartyView returns an unbound view reading from handle. Query failures
// are reported to n.
func NewPartyView(handle Subscriber, n notify.Notifier) *PartyView {
	v := &PartyView{handle: handle, changes: make(chan struct{}, 1)}
	v.party = NewLiveCollection(handle,
		ReportTo[*domain.Party](n), OnChange[*domain.Party](v.signal))
	v.rsvps = NewLiveCollection(handle,
		Sorted[*domain.RSVP](Descending), ReportTo[*domain.RSVP](n), OnChange[*domain.RSVP](v.signal))
	v.messages = NewLiveCollection(handle,
		Sorted[*domain.ChatMessage](Ascending), ReportTo[*domain.ChatMessage](n), OnChange[*domain.ChatMessage](v.signal))
	return v
}

// SetParty binds the view to partyID. Calling it again with the same id
// keeps the existing subscriptions. An empty id unbinds everything.
func (v *PartyView) SetParty(ctx context.Context, partyID string) error {
	v.mu.Lock()
	v.partyID = partyID
	v.mu.Unlock()
	return errors.Join(
		v.party.Bind(ctx, v.partyMemo.Descriptor(v.handle, domain.CollectionParties, "id", partyID)),
		v.rsvps.Bind(ctx, v.rsvpMemo.Descriptor(v.handle, domain.CollectionRSVPs, "partyId", partyID)),
		v.messages.Bind(ctx, v.msgMemo.Descriptor(v.handle, domain.CollectionMessages, "partyId", partyID)),
	)
}

// Frame returns the current render state.
func (v *PartyView) Frame() Frame {
	v.mu.Lock()
	partyID := v.partyID
	v.mu.Unlock()

	ps, rs, ms := v.party.Snapshot(), v.rsvps.Snapshot(), v.messages.Snapshot()
	f := Frame{
		PartyID:          partyID,
		RSVPs:            rs.Docs,
		RSVPCount:        len(rs.Docs),
		Messages:         ms.Docs,
		Loading:          ps.Loading || rs.Loading || ms.Loading,
		HasPendingWrites: ps.HasPendingWrites || rs.HasPendingWrites || ms.HasPendingWrites,
	}
	if len(ps.Docs) > 0 {
		f.Party = ps.Docs[0]
	} else if !ps.Loading && ps.Err == nil && partyID != "" {
		f.NotFound = true
	}
	if f.RSVPs == nil {
		f.RSVPs = []*domain.RSVP{}
	}
	if f.Messages == nil {
		f.Messages = []*domain.ChatMessage{}
	}
	return f
}

// Descriptors returns the bound descriptors (party, rsvps, messages).
func (v *PartyView) Descriptors() (party, rsvps, messages *docstore.Query) {
	return v.party.Descriptor(), v.rsvps.Descriptor(), v.messages.Descriptor()
}

// Changes signals after any of the three queries changes.
func (v *PartyView) Changes() <-chan struct{} { return v.changes }

func (v *PartyView) signal() {
	select {
	case v.changes <- struct{}{}:
	default:
	}
}

// Close ends all subscriptions.
func (v *PartyView) Close() {
	v.party.Close()
	v.rsvps.Close()
	v.messages.Close()
}
