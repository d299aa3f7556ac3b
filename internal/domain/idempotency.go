package domain

import "time"

// Idempotency records the outcome of a previously accepted write, keyed by
// (client_id, party_id, key). A retried POST carrying the same
// Idempotency-Key is answered from this record instead of writing again.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	ClientID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_party_key,priority:1"`
	PartyID   string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_party_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_party_key,priority:3"`
	DocPath   string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
