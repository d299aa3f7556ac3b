// Package docstore is the document store client used by the party planner.
//
// It exposes two primitives over a pluggable Backend (SQLite through GORM, or
// MongoDB): writing a document to a Location, and subscribing to a Query.
// Subscribers receive full Snapshots of the matching documents whenever the
// collection changes. Writes become visible to subscribers immediately as
// pending documents without a server timestamp; once the backend commits,
// the pending copy is replaced by the stored version carrying the timestamp
// assigned at write time, or dropped if the write was rejected.
package docstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// Operation names the kind of access attempted against a location.
type Operation string

const (
	OpGet    Operation = "get"
	OpList   Operation = "list"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpWrite  Operation = "write"
)

var (
	// ErrPermissionDenied is returned when the access rules reject an operation.
	ErrPermissionDenied = errors.New("docstore: permission denied")
	// ErrNotFound is returned by Get when no document exists at a location.
	ErrNotFound = errors.New("docstore: not found")
	// ErrInvalidQuery is returned for queries the store cannot run.
	ErrInvalidQuery = errors.New("docstore: invalid query")
	// ErrInvalidLocation is returned when a record does not belong at its location.
	ErrInvalidLocation = errors.New("docstore: invalid location")
	// ErrClosed is returned after the store has been closed.
	ErrClosed = errors.New("docstore: closed")
)

// Location addresses a single document.
type Location struct {
	Collection string
	ID         string
}

// Path renders the location as "collection/id".
func (l Location) Path() string { return l.Collection + "/" + l.ID }

func (l Location) String() string { return l.Path() }

// NewLocation returns a fresh location in collection. Party ids are UUIDs
// since they appear in share links; child documents get ULIDs, which sort in
// creation order.
func NewLocation(collection string) Location {
	if collection == domain.CollectionParties {
		return Location{Collection: collection, ID: uuid.NewString()}
	}
	return Location{Collection: collection, ID: ulid.Make().String()}
}

// ParsePath parses "collection/id".
func ParsePath(path string) (Location, error) {
	coll, id, ok := strings.Cut(path, "/")
	if !ok || coll == "" || id == "" || strings.Contains(id, "/") {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, path)
	}
	return Location{Collection: coll, ID: id}, nil
}

// LocationOf returns the location rec is stored at.
func LocationOf(rec domain.Record) Location {
	return Location{Collection: rec.Collection(), ID: rec.DocID()}
}

// Query selects the documents of one collection whose Field equals Value.
// An empty Field selects the whole collection. Query is comparable and is
// used as the subscription descriptor.
type Query struct {
	Collection string
	Field      string
	Value      string
}

// Where builds a filtered query.
func Where(collection, field, value string) Query {
	return Query{Collection: collection, Field: field, Value: value}
}

// ByParty selects the documents of collection referencing partyID.
func ByParty(collection, partyID string) Query {
	return Where(collection, "partyId", partyID)
}

// ByID selects the single document at loc.
func ByID(loc Location) Query {
	return Where(loc.Collection, "id", loc.ID)
}

func (q Query) String() string {
	if q.Field == "" {
		return q.Collection
	}
	return fmt.Sprintf("%s[%s==%s]", q.Collection, q.Field, q.Value)
}

// Validate reports whether the store can run q.
func (q Query) Validate() error {
	if domain.NewRecord(q.Collection) == nil {
		return fmt.Errorf("%w: unknown collection %q", ErrInvalidQuery, q.Collection)
	}
	switch strings.ToLower(q.Field) {
	case "":
		if q.Collection != domain.CollectionParties {
			return fmt.Errorf("%w: %s must be filtered", ErrInvalidQuery, q.Collection)
		}
		return nil
	case "id":
	case "partyid", "party_id":
		if q.Collection == domain.CollectionParties {
			return fmt.Errorf("%w: parties have no partyId", ErrInvalidQuery)
		}
	default:
		return fmt.Errorf("%w: unsupported field %q", ErrInvalidQuery, q.Field)
	}
	if q.Value == "" {
		return fmt.Errorf("%w: empty filter value", ErrInvalidQuery)
	}
	return nil
}

// Matches reports whether rec belongs to the result set of q.
func (q Query) Matches(rec domain.Record) bool {
	if rec == nil || rec.Collection() != q.Collection {
		return false
	}
	if q.Field == "" {
		return true
	}
	v, ok := domain.Field(rec, q.Field)
	return ok && v == q.Value
}

// Snapshot is the complete result set of a query at a point in time.
type Snapshot struct {
	Query Query
	Docs  []domain.Record
	// HasPendingWrites is true when Docs includes local writes the backend
	// has not committed yet.
	HasPendingWrites bool
	ReadTime         time.Time
}
