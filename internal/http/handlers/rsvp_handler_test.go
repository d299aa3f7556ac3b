package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
)

// heldRSVPs blocks RSVP inserts until release is closed, then rejects them.
type heldRSVPs struct {
	docstore.Backend
	release chan struct{}
}

func (b *heldRSVPs) Insert(ctx context.Context, rec domain.Record) error {
	if rec.Collection() != domain.CollectionRSVPs {
		return b.Backend.Insert(ctx, rec)
	}
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return errors.New("disk full")
}

func TestRSVP_SubmitListAndETag(t *testing.T) {
	e := newEnv(t)
	id := e.createParty(t, "Rooftop Bash")

	for _, name := range []string{"Dana", "Lee"} {
		w := e.do(t, http.MethodPost, "/api/parties/"+id+"/rsvps", PostRSVPRequest{Name: name})
		if w.Code != http.StatusAccepted {
			t.Fatalf("post %s: %d %s", name, w.Code, w.Body.String())
		}
		if r := decode[RSVPResponse](t, w).RSVP; r.PartyID != id || r.Name != name {
			t.Fatalf("unexpected rsvp: %+v", r)
		}
	}

	var tag string
	eventually(t, "both RSVPs committed", func() bool {
		w := e.do(t, http.MethodGet, "/api/parties/"+id+"/rsvps", nil)
		resp := decode[ListRSVPsResponse](t, w)
		if resp.Count != 2 || resp.RSVPs[0].CreatedAt == nil || resp.RSVPs[1].CreatedAt == nil {
			return false
		}
		tag = w.Header().Get("ETag")
		return true
	})

	w := e.do(t, http.MethodGet, "/api/parties/"+id+"/rsvps", nil)
	resp := decode[ListRSVPsResponse](t, w)
	if resp.RSVPs[0].Name != "Lee" || resp.RSVPs[1].Name != "Dana" {
		t.Fatalf("RSVPs should be newest first: %s, %s", resp.RSVPs[0].Name, resp.RSVPs[1].Name)
	}
	if !strings.HasPrefix(tag, `W/"rsvps:`+id+`:2:`) {
		t.Fatalf("unexpected etag %q", tag)
	}

	w = e.do(t, http.MethodGet, "/api/parties/"+id+"/rsvps", nil, "If-None-Match", tag)
	if w.Code != http.StatusNotModified {
		t.Fatalf("If-None-Match: status=%d", w.Code)
	}

	w = e.do(t, http.MethodGet, "/api/parties/"+id+"/rsvps?limit=1", nil)
	if resp := decode[ListRSVPsResponse](t, w); len(resp.RSVPs) != 1 || resp.Count != 2 {
		t.Fatalf("limit=1: %d rsvps, count %d", len(resp.RSVPs), resp.Count)
	}
}

func TestRSVP_ETagTracksPendingWrites(t *testing.T) {
	held := &heldRSVPs{release: make(chan struct{})}
	e := newEnvOver(t, func(b docstore.Backend) docstore.Backend {
		held.Backend = b
		return held
	})
	released := false
	t.Cleanup(func() {
		if !released {
			close(held.release)
		}
	})
	id := e.createParty(t, "Rooftop Bash")
	path := "/api/parties/" + id + "/rsvps"

	w := e.do(t, http.MethodGet, path, nil)
	before := w.Header().Get("ETag")
	if resp := decode[ListRSVPsResponse](t, w); resp.Count != 0 || before == "" {
		t.Fatalf("empty list: count %d, etag %q", resp.Count, before)
	}

	if w := e.do(t, http.MethodPost, path, PostRSVPRequest{Name: "Dana"}); w.Code != http.StatusAccepted {
		t.Fatalf("post: %d %s", w.Code, w.Body.String())
	}

	// The pending RSVP is listed, so the old tag no longer matches.
	w = e.do(t, http.MethodGet, path, nil, "If-None-Match", before)
	if w.Code != http.StatusOK {
		t.Fatalf("stale tag while pending: status=%d", w.Code)
	}
	pending := w.Header().Get("ETag")
	if resp := decode[ListRSVPsResponse](t, w); resp.Count != 1 || resp.RSVPs[0].Name != "Dana" {
		t.Fatalf("pending RSVP should be listed: %+v", resp)
	}
	if pending == before {
		t.Fatalf("pending write must change the etag, both %q", pending)
	}
	if w := e.do(t, http.MethodGet, path, nil, "If-None-Match", pending); w.Code != http.StatusNotModified {
		t.Fatalf("current pending tag: status=%d", w.Code)
	}

	close(held.release)
	released = true
	eventually(t, "rejected RSVP removed", func() bool {
		return decode[ListRSVPsResponse](t, e.do(t, http.MethodGet, path, nil)).Count == 0
	})

	w = e.do(t, http.MethodGet, path, nil, "If-None-Match", pending)
	if w.Code != http.StatusOK {
		t.Fatalf("tag of a rejected write must not validate: status=%d", w.Code)
	}
	if resp := decode[ListRSVPsResponse](t, w); resp.Count != 0 {
		t.Fatalf("rejected RSVP still listed: %+v", resp)
	}
	if got := w.Header().Get("ETag"); got != before {
		t.Fatalf("etag after rejection = %q, want %q", got, before)
	}
}

func TestRSVP_Validation(t *testing.T) {
	e := newEnv(t)
	id := e.createParty(t, "Picnic")

	w := e.do(t, http.MethodPost, "/api/parties/"+id+"/rsvps", PostRSVPRequest{Name: "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank name: %d", w.Code)
	}
	w = e.do(t, http.MethodPost, "/api/parties/"+id+"/rsvps", PostRSVPRequest{Name: strings.Repeat("n", 101)})
	if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Message != "name too long" {
		t.Fatalf("long name: %d %s", w.Code, w.Body.String())
	}
	w = e.do(t, http.MethodPost, "/api/parties/"+id+"/rsvps", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("no body: %d", w.Code)
	}
}

func TestRSVP_UnknownPartyIsReportedAsNotification(t *testing.T) {
	e := newEnv(t)
	missing := uuid.NewString()

	w := e.do(t, http.MethodPost, "/api/parties/"+missing+"/rsvps", PostRSVPRequest{Name: "Dana"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("the write is optimistic; status=%d", w.Code)
	}
	rsvpID := decode[RSVPResponse](t, w).RSVP.ID

	var got NotificationsResponse
	eventually(t, "permission notification", func() bool {
		got = decode[NotificationsResponse](t, e.do(t, http.MethodGet, "/api/notifications", nil))
		return len(got.Notifications) > 0
	})
	if len(got.Notifications) != 1 {
		t.Fatalf("exactly one notification per failure, got %d", len(got.Notifications))
	}
	n := got.Notifications[0]
	if n.Title != "Permission Denied" || n.Path != "rsvps/"+rsvpID || n.Operation != "create" {
		t.Fatalf("unexpected notification: %+v", n)
	}

	w = e.do(t, http.MethodGet, "/api/parties/"+missing+"/rsvps", nil)
	if resp := decode[ListRSVPsResponse](t, w); resp.Count != 0 {
		t.Fatalf("rejected RSVP must not be listed: %+v", resp)
	}
}
