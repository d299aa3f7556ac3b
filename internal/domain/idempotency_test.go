package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestIdempotency_SchemaFromTags(t *testing.T) {
	db := newTestDB(t)
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	m := db.Migrator()
	if !m.HasTable("idempotency") {
		t.Fatalf("expected table idempotency")
	}
	if !m.HasIndex(&Idempotency{}, "ux_client_party_key") {
		t.Fatalf("expected unique index ux_client_party_key")
	}
	for _, col := range []string{"client_id", "party_id", "key", "doc_path", "status", "expires_at"} {
		if !m.HasColumn(&Idempotency{}, col) {
			t.Fatalf("missing column %q", col)
		}
	}
}

func TestIdempotency_Constraints(t *testing.T) {
	db := newTestDB(t)
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	now := time.Now().UTC()

	rec := &Idempotency{
		ID:        "id-1",
		ClientID:  "client-1",
		PartyID:   "3f1c6a0e-8f3b-4c7e-9d21-6b1f0c9a2e11",
		Key:       "k1",
		DocPath:   "rsvps/01J0000000000000000000000A",
		Status:    202,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("insert valid: %v", err)
	}

	var got Idempotency
	if err := db.First(&got, "id = ?", "id-1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.DocPath != rec.DocPath || got.Status != 202 || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected row: %+v", got)
	}

	// Same (client, party, key) is rejected even with a different document.
	dup := *rec
	dup.ID, dup.DocPath = "id-2", "rsvps/01J0000000000000000000000B"
	if err := db.Create(&dup).Error; err == nil {
		t.Fatalf("expected UNIQUE violation on (client_id, party_id, key)")
	}

	// Another client may reuse the key.
	other := *rec
	other.ID, other.ClientID = "id-3", "client-2"
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("other client, same key: %v", err)
	}

	// Party creation is keyed with an empty party id.
	create := *rec
	create.ID, create.PartyID, create.DocPath = "id-4", "", "parties/3f1c6a0e-8f3b-4c7e-9d21-6b1f0c9a2e11"
	if err := db.Create(&create).Error; err != nil {
		t.Fatalf("empty party id: %v", err)
	}

	// NOT NULL holds at the SQL level.
	err := db.Exec(`INSERT INTO idempotency ("id","client_id","party_id","key","doc_path","status","created_at","expires_at")
		VALUES (?,?,?,?,?,?,?,?)`, "id-5", "client-3", "p", "k", nil, 202, now, now).Error
	if err == nil {
		t.Fatalf("expected NOT NULL violation on doc_path")
	}
}
