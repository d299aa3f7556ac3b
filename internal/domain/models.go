// Package domain defines the document records of the party planner: parties,
// RSVPs, and chat messages. These types are mapped with GORM (SQLite backend)
// and BSON (Mongo backend) and form the core data layer shared by the store,
// the live-sync layer, and the HTTP handlers.
//
// The model is append-only: records are created once and never updated or
// deleted. CreatedAt is assigned by the store at write time; a nil CreatedAt
// means the record has not round-tripped through the store yet.
package domain

import (
	"strings"
	"time"
)

// Collection names used by the document store.
const (
	CollectionParties  = "parties"
	CollectionRSVPs    = "rsvps"
	CollectionMessages = "messages"
)

// DefaultSender is used for chat messages sent without a display name.
const DefaultSender = "Guest"

// Record is implemented by every document type the store can hold.
type Record interface {
	// Collection returns the collection the record lives in.
	Collection() string
	// DocID returns the store-assigned document identifier.
	DocID() string
	// Timestamp returns the server timestamp, or nil when not yet assigned.
	Timestamp() *time.Time
	// PartyRef returns the referenced party id ("" for parties themselves).
	PartyRef() string
	// Validate checks the record at the write boundary.
	Validate() error
}

// Party is an event created by a host and shared with guests by link.
//
// Fields:
//   - ID: store-assigned identifier (UUID), part of the share link.
//   - Name, Location: required.
//   - Date, Time: free-form strings as entered by the host (e.g. 2025-07-04, 19:30).
//   - Description: optional.
//   - CreatedAt: server timestamp assigned at write time.
type Party struct {
	ID          string     `json:"id"                   gorm:"type:char(36);primaryKey"          bson:"_id"`
	Name        string     `json:"name"                 gorm:"type:varchar(200);not null"        bson:"name"        validate:"required,max=200"`
	Date        string     `json:"date"                 gorm:"type:varchar(32);not null"         bson:"date"        validate:"required,max=32"`
	Time        string     `json:"time"                 gorm:"type:varchar(32);not null"         bson:"time"        validate:"required,max=32"`
	Location    string     `json:"location"             gorm:"type:varchar(300);not null"        bson:"location"    validate:"required,max=300"`
	Description string     `json:"description"          gorm:"type:text"                         bson:"description" validate:"max=5000"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"index"                             bson:"createdAt,omitempty"`
}

// TableName returns the database table name for Party.
func (Party) TableName() string { return CollectionParties }

func (p *Party) Collection() string       { return CollectionParties }
func (p *Party) DocID() string            { return p.ID }
func (p *Party) Timestamp() *time.Time    { return p.CreatedAt }
func (p *Party) PartyRef() string         { return "" }
func (p *Party) Validate() error          { return validateStruct(p) }
func (p *Party) setTimestamp(t time.Time) { p.CreatedAt = &t }

// RSVP records that a guest is attending a party. Many RSVPs reference one
// Party; guest names carry no uniqueness guarantee.
type RSVP struct {
	ID        string     `json:"id"                   gorm:"type:char(26);primaryKey"                      bson:"_id"`
	PartyID   string     `json:"party_id"             gorm:"type:char(36);not null;index:idx_party_rsvps"  bson:"partyId"   validate:"required,max=64"`
	Name      string     `json:"name"                 gorm:"type:varchar(100);not null"                    bson:"name"      validate:"required,max=100"`
	CreatedAt *time.Time `json:"created_at,omitempty"                                                      bson:"createdAt,omitempty"`
}

// TableName returns the database table name for RSVP.
func (RSVP) TableName() string { return CollectionRSVPs }

func (r *RSVP) Collection() string       { return CollectionRSVPs }
func (r *RSVP) DocID() string            { return r.ID }
func (r *RSVP) Timestamp() *time.Time    { return r.CreatedAt }
func (r *RSVP) PartyRef() string         { return r.PartyID }
func (r *RSVP) Validate() error          { return validateStruct(r) }
func (r *RSVP) setTimestamp(t time.Time) { r.CreatedAt = &t }

// ChatMessage is a single line in a party's guest chat.
type ChatMessage struct {
	ID        string     `json:"id"                   gorm:"type:char(26);primaryKey"                     bson:"_id"`
	PartyID   string     `json:"party_id"             gorm:"type:char(36);not null;index:idx_party_msgs"  bson:"partyId" validate:"required,max=64"`
	Sender    string     `json:"sender"               gorm:"type:varchar(100);not null"                   bson:"sender"  validate:"required,max=100"`
	Text      string     `json:"text"                 gorm:"type:text;not null"                           bson:"text"    validate:"required,max=2000"`
	CreatedAt *time.Time `json:"created_at,omitempty"                                                     bson:"createdAt,omitempty"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return CollectionMessages }

func (m *ChatMessage) Collection() string       { return CollectionMessages }
func (m *ChatMessage) DocID() string            { return m.ID }
func (m *ChatMessage) Timestamp() *time.Time    { return m.CreatedAt }
func (m *ChatMessage) PartyRef() string         { return m.PartyID }
func (m *ChatMessage) Validate() error          { return validateStruct(m) }
func (m *ChatMessage) setTimestamp(t time.Time) { m.CreatedAt = &t }

// timestamped is implemented by records whose server timestamp the store sets.
type timestamped interface {
	setTimestamp(time.Time)
}

// Stamp assigns the server timestamp to rec. It is called by store backends
// immediately before a record is persisted.
func Stamp(rec Record, at time.Time) {
	if ts, ok := rec.(timestamped); ok {
		ts.setTimestamp(at.UTC())
	}
}

// Clone returns a shallow copy of rec so that stores never share a record
// with the caller that issued the write.
func Clone(rec Record) Record {
	switch v := rec.(type) {
	case *Party:
		cp := *v
		return &cp
	case *RSVP:
		cp := *v
		return &cp
	case *ChatMessage:
		cp := *v
		return &cp
	default:
		return rec
	}
}

// Unstamped returns a copy of rec without a server timestamp, as it looks
// before the store has committed it.
func Unstamped(rec Record) Record {
	switch v := Clone(rec).(type) {
	case *Party:
		v.CreatedAt = nil
		return v
	case *RSVP:
		v.CreatedAt = nil
		return v
	case *ChatMessage:
		v.CreatedAt = nil
		return v
	}
	return rec
}

// NewRecord returns an empty record for collection, or nil when unknown.
func NewRecord(collection string) Record {
	switch collection {
	case CollectionParties:
		return &Party{}
	case CollectionRSVPs:
		return &RSVP{}
	case CollectionMessages:
		return &ChatMessage{}
	}
	return nil
}

// Field returns the string value of a filterable field of rec. Only the
// fields used by queries are exposed: "id" and "partyId".
func Field(rec Record, field string) (string, bool) {
	switch strings.ToLower(field) {
	case "id":
		return rec.DocID(), true
	case "partyid", "party_id":
		if _, isParty := rec.(*Party); isParty {
			return "", false
		}
		return rec.PartyRef(), true
	}
	return "", false
}
