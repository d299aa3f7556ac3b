package docstore

import (
	"context"
	"time"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// Backend is the durable side of the store. Backends persist records exactly
// as given; ids, timestamps, and access rules are handled by Store.
type Backend interface {
	// Insert persists a new record. It fails if the id is taken.
	Insert(ctx context.Context, rec domain.Record) error
	// Get returns the record at loc, or ErrNotFound.
	Get(ctx context.Context, loc Location) (domain.Record, error)
	// List returns every committed record matching q, in storage order.
	List(ctx context.Context, q Query) ([]domain.Record, error)
	// Stats returns the number of records matching q and the greatest
	// creation timestamp among them (nil when there are none).
	Stats(ctx context.Context, q Query) (int64, *time.Time, error)
}
