package docstore

import (
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-party-backend/internal/domain"
)

func TestNewLocation_IDs(t *testing.T) {
	p := NewLocation(domain.CollectionParties)
	if len(p.ID) != 36 {
		t.Fatalf("party id should be a UUID, got %q", p.ID)
	}
	r1 := NewLocation(domain.CollectionRSVPs)
	r2 := NewLocation(domain.CollectionRSVPs)
	if len(r1.ID) != 26 || r1.ID == r2.ID {
		t.Fatalf("child ids should be distinct ULIDs: %q %q", r1.ID, r2.ID)
	}
	if r1.ID > r2.ID {
		t.Fatalf("ULIDs should be creation ordered: %q > %q", r1.ID, r2.ID)
	}
	if !strings.HasPrefix(r1.Path(), "rsvps/") {
		t.Fatalf("unexpected path %q", r1.Path())
	}
}

func TestParsePath(t *testing.T) {
	loc, err := ParsePath("messages/abc")
	if err != nil || loc.Collection != "messages" || loc.ID != "abc" {
		t.Fatalf("ParsePath = %+v, %v", loc, err)
	}
	for _, bad := range []string{"", "messages", "messages/", "/abc", "a/b/c"} {
		if _, err := ParsePath(bad); !errors.Is(err, ErrInvalidLocation) {
			t.Fatalf("ParsePath(%q) err = %v", bad, err)
		}
	}
}

func TestQuery_ValidateAndMatches(t *testing.T) {
	cases := []struct {
		q  Query
		ok bool
	}{
		{Query{Collection: "parties"}, true},
		{ByID(Location{Collection: "parties", ID: "p1"}), true},
		{ByParty("rsvps", "p1"), true},
		{ByParty("messages", "p1"), true},
		{Query{Collection: "rsvps"}, false},
		{ByParty("parties", "p1"), false},
		{ByParty("rsvps", ""), false},
		{Where("rsvps", "name", "Dana"), false},
		{Query{Collection: "nope"}, false},
	}
	for _, tc := range cases {
		err := tc.q.Validate()
		if (err == nil) != tc.ok {
			t.Fatalf("%v.Validate() = %v; want ok=%v", tc.q, err, tc.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("expected ErrInvalidQuery, got %v", err)
		}
	}

	q := ByParty(domain.CollectionRSVPs, "p1")
	if !q.Matches(&domain.RSVP{ID: "r", PartyID: "p1"}) {
		t.Fatalf("expected match")
	}
	if q.Matches(&domain.RSVP{ID: "r", PartyID: "p2"}) || q.Matches(&domain.ChatMessage{PartyID: "p1"}) || q.Matches(nil) {
		t.Fatalf("unexpected match")
	}
	if q != ByParty(domain.CollectionRSVPs, "p1") {
		t.Fatalf("queries with equal fields must compare equal")
	}
}
