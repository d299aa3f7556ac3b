// Package repo implements the data persistence layer for party documents,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// CollectionStats returns aggregate metadata for the documents of a party
// within a child collection (rsvps or messages): the total number of rows and
// the greatest created_at among them. When the party has no documents, the
// returned count is 0 and maxCreatedAt is nil.
func CollectionStats(ctx context.Context, db *gorm.DB, collection, partyID string) (count int64, maxCreatedAt *time.Time, err error) {
	var model any
	switch collection {
	case domain.CollectionRSVPs:
		model = &domain.RSVP{}
	case domain.CollectionMessages:
		model = &domain.ChatMessage{}
	default:
		return 0, nil, fmt.Errorf("repo: no stats for collection %q", collection)
	}

	q := db.WithContext(ctx).Model(model).Where("party_id = ?", partyID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
