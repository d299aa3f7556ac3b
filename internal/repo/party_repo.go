// Package repo implements the data persistence layer for party documents,
// backed by GORM.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only
// persistence and query composition. Identifiers and server timestamps are
// assigned by the caller (the document store), never here.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the store and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateParty inserts p as-is.
func CreateParty(ctx context.Context, db *gorm.DB, p *domain.Party) error {
	return db.WithContext(ctx).Create(p).Error
}

// GetParty fetches a single party by id, or ErrNotFound if missing.
func GetParty(ctx context.Context, db *gorm.DB, id string) (*domain.Party, error) {
	var p domain.Party
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListParties returns parties in storage order, optionally limited.
func ListParties(ctx context.Context, db *gorm.DB, limit int) ([]domain.Party, error) {
	var out []domain.Party
	q := db.WithContext(ctx)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
