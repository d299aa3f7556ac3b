package services

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/livesync"
)

// Reader is the read side of the document store used by the services.
type Reader interface {
	Get(ctx context.Context, loc docstore.Location) (domain.Record, error)
	Fetch(ctx context.Context, q docstore.Query) (docstore.Snapshot, error)
	Stats(ctx context.Context, q docstore.Query) (int64, *time.Time, error)
	PendingIDs(q docstore.Query) []string
}

// Creator issues non-blocking document creations.
type Creator interface {
	Create(ctx context.Context, loc docstore.Location, rec domain.Record) *livesync.Intent
}

// Stats summarizes a party's child collection for cache validation.
type Stats struct {
	// Count and Latest cover committed documents only.
	Count  int64
	Latest *time.Time
	// Pending holds the sorted ids of documents not committed yet.
	Pending []string
}

// Total is the number of documents a reader sees, pending ones included.
func (s Stats) Total() int { return int(s.Count) + len(s.Pending) }

// typed keeps the records of s that are of type T.
func typed[T domain.Record](s docstore.Snapshot) []T {
	out := make([]T, 0, len(s.Docs))
	for _, d := range s.Docs {
		if v, ok := d.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// stats reads pending ids before the committed aggregates, so a write that
// commits in between is counted twice rather than missed.
func stats(ctx context.Context, r Reader, q docstore.Query) (Stats, error) {
	pending := r.PendingIDs(q)
	n, latest, err := r.Stats(ctx, q)
	if err != nil {
		return Stats{}, err
	}
	slices.Sort(pending)
	return Stats{Count: n, Latest: latest, Pending: pending}, nil
}

// statsOf summarizes the documents of snap. Pending documents are the ones
// without a server timestamp.
func statsOf(snap docstore.Snapshot) Stats {
	var st Stats
	for _, d := range snap.Docs {
		ts := d.Timestamp()
		if ts == nil {
			st.Pending = append(st.Pending, d.DocID())
			continue
		}
		st.Count++
		if st.Latest == nil || ts.After(*st.Latest) {
			t := *ts
			st.Latest = &t
		}
	}
	slices.Sort(st.Pending)
	return st
}

// normalize trims whitespace and collapses runs of it to one space.
func normalize(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// tooLong reports whether s exceeds limit runes (limit <= 0 disables the check).
func tooLong(s string, limit int) bool {
	return limit > 0 && utf8.RuneCountInString(s) > limit
}

var whitespaceRE = regexp.MustCompile(`\s+`)
