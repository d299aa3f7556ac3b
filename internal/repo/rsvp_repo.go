package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// CreateRSVP inserts r as-is.
func CreateRSVP(ctx context.Context, db *gorm.DB, r *domain.RSVP) error {
	return db.WithContext(ctx).Create(r).Error
}

// GetRSVP fetches an RSVP by id.
func GetRSVP(ctx context.Context, db *gorm.DB, id string) (*domain.RSVP, error) {
	var r domain.RSVP
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRSVPs returns the RSVPs of a party in storage order. Ordering for
// display is applied by the live-sync layer, so no ORDER BY is issued.
func ListRSVPs(ctx context.Context, db *gorm.DB, partyID string, limit int) ([]domain.RSVP, error) {
	var out []domain.RSVP
	q := db.WithContext(ctx).Where("party_id = ?", partyID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
