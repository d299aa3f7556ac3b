package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/repo"
)

// GormBackend stores documents in relational tables through the repo package.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend wraps db. Tables must already be migrated (repo.AutoMigrate).
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (b *GormBackend) Insert(ctx context.Context, rec domain.Record) error {
	switch v := rec.(type) {
	case *domain.Party:
		return repo.CreateParty(ctx, b.db, v)
	case *domain.RSVP:
		return repo.CreateRSVP(ctx, b.db, v)
	case *domain.ChatMessage:
		return repo.CreateMessage(ctx, b.db, v)
	}
	return fmt.Errorf("%w: unsupported record %T", ErrInvalidLocation, rec)
}

func (b *GormBackend) Get(ctx context.Context, loc Location) (domain.Record, error) {
	var (
		rec domain.Record
		err error
	)
	switch loc.Collection {
	case domain.CollectionParties:
		var p *domain.Party
		if p, err = repo.GetParty(ctx, b.db, loc.ID); err == nil {
			rec = p
		}
	case domain.CollectionRSVPs:
		var r *domain.RSVP
		if r, err = repo.GetRSVP(ctx, b.db, loc.ID); err == nil {
			rec = r
		}
	case domain.CollectionMessages:
		var m *domain.ChatMessage
		if m, err = repo.GetMessage(ctx, b.db, loc.ID); err == nil {
			rec = m
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidLocation, loc)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (b *GormBackend) List(ctx context.Context, q Query) ([]domain.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if strings.EqualFold(q.Field, "id") {
		rec, err := b.Get(ctx, Location{Collection: q.Collection, ID: q.Value})
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []domain.Record{rec}, nil
	}

	switch q.Collection {
	case domain.CollectionParties:
		rows, err := repo.ListParties(ctx, b.db, 0)
		return records(rows, err)
	case domain.CollectionRSVPs:
		rows, err := repo.ListRSVPs(ctx, b.db, q.Value, 0)
		return records(rows, err)
	default:
		rows, err := repo.ListMessages(ctx, b.db, q.Value, 0)
		return records(rows, err)
	}
}

func (b *GormBackend) Stats(ctx context.Context, q Query) (int64, *time.Time, error) {
	if err := q.Validate(); err != nil {
		return 0, nil, err
	}
	if q.Collection == domain.CollectionParties || strings.EqualFold(q.Field, "id") {
		return 0, nil, fmt.Errorf("%w: stats need a party filter", ErrInvalidQuery)
	}
	return repo.CollectionStats(ctx, b.db, q.Collection, q.Value)
}

func records[T any, P interface {
	*T
	domain.Record
}](rows []T, err error) ([]domain.Record, error) {
	if err != nil {
		return nil, err
	}
	out := make([]domain.Record, len(rows))
	for i := range rows {
		out[i] = P(&rows[i])
	}
	return out, nil
}
