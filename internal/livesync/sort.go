package livesync

import (
	"sort"
	"time"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// Direction orders documents by server timestamp.
type Direction int

const (
	// Ascending puts the oldest document first (chat).
	Ascending Direction = iota
	// Descending puts the newest document first (RSVP list).
	Descending
)

// SortByTimestamp returns a sorted copy of docs. A missing timestamp counts
// as the zero time, so unconfirmed documents sort as the oldest. Documents
// with equal timestamps are ordered by id in the same direction, and
// otherwise keep their input order. The input slice is not modified.
func SortByTimestamp[T domain.Record](docs []T, dir Direction) []T {
	out := make([]T, len(docs))
	copy(out, docs)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := stamp(out[i]), stamp(out[j])
		if !ti.Equal(tj) {
			if dir == Descending {
				return ti.After(tj)
			}
			return ti.Before(tj)
		}
		if dir == Descending {
			return out[i].DocID() > out[j].DocID()
		}
		return out[i].DocID() < out[j].DocID()
	})
	return out
}

func stamp(r domain.Record) time.Time {
	if ts := r.Timestamp(); ts != nil {
		return *ts
	}
	return time.Time{}
}
