package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// CreateMessage inserts m as-is.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.ChatMessage) error {
	return db.WithContext(ctx).Create(m).Error
}

// GetMessage fetches a chat message by id.
func GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages returns the chat messages of a party in storage order.
func ListMessages(ctx context.Context, db *gorm.DB, partyID string, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	q := db.WithContext(ctx).Where("party_id = ?", partyID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
