package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// Rules is the server-side access policy. The data model is append-only and
// anonymous: anyone may read, and anyone may create a well-formed document.
// Nothing may be updated or deleted.
type Rules struct {
	backend Backend
}

// NewRules returns the default rules, resolving party references against b.
func NewRules(b Backend) Rules {
	return Rules{backend: b}
}

// Authorize returns nil when op on loc (with payload rec for writes) is
// allowed, and an error wrapping ErrPermissionDenied otherwise.
func (r Rules) Authorize(ctx context.Context, op Operation, loc Location, rec domain.Record) error {
	switch op {
	case OpGet, OpList:
		return nil
	case OpCreate:
	default:
		return deny("%s is not allowed on %s", op, loc.Collection)
	}

	if rec == nil {
		return deny("empty payload")
	}
	if rec.Collection() != loc.Collection || rec.DocID() != loc.ID {
		return deny("payload does not belong at %s", loc)
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	if ref := rec.PartyRef(); loc.Collection != domain.CollectionParties {
		_, err := r.backend.Get(ctx, Location{Collection: domain.CollectionParties, ID: ref})
		if errors.Is(err, ErrNotFound) {
			return deny("party %q does not exist", ref)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func deny(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrPermissionDenied}, args...)...)
}
