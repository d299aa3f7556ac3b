// Package repo implements the data persistence layer for party documents,
// backed by GORM. This file provides repository helpers for the Idempotency
// model used to implement safe-retry semantics for POST endpoints.
package repo

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the
// given (client_id, party_id, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, clientID, partyID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("client_id = ? AND party_id = ? AND key = ? AND expires_at > ?", clientID, partyID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateIdempotency inserts a record and returns ErrDuplicate on unique violation.
func CreateIdempotency(ctx context.Context, db *gorm.DB, clientID, partyID, key, docPath string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		PartyID:   partyID,
		Key:       key,
		DocPath:   docPath,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeIdempotency deletes records that expired before now.
func PurgeIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// IdempotencyStore adapts the helpers above to the HTTP layer: Lookup feeds
// the idempotency middleware and Record is called after a keyed POST.
type IdempotencyStore struct {
	DB  *gorm.DB
	TTL time.Duration
}

// NewIdempotencyStore returns a store keeping keys for ttl (24h when <= 0).
func NewIdempotencyStore(db *gorm.DB, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{DB: db, TTL: ttl}
}

// Lookup returns the document path stored for the key, if still valid.
func (s *IdempotencyStore) Lookup(ctx context.Context, clientID, partyID, key string, now time.Time) (string, bool, error) {
	rec, err := GetIdempotency(ctx, s.DB, clientID, partyID, key, now)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.DocPath, true, nil
}

// Record stores docPath for the key. A concurrent request that recorded the
// same key first wins.
func (s *IdempotencyStore) Record(ctx context.Context, clientID, partyID, key, docPath string) error {
	_, err := CreateIdempotency(ctx, s.DB, clientID, partyID, key, docPath, http.StatusAccepted, s.TTL)
	if errors.Is(err, ErrDuplicate) {
		return nil
	}
	return err
}

// Purge deletes expired keys.
func (s *IdempotencyStore) Purge(ctx context.Context) (int64, error) {
	return PurgeIdempotency(ctx, s.DB, time.Now().UTC())
}
