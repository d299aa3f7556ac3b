package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/tbourn/go-party-backend/internal/brainstorm"
)

type stubProvider struct {
	got   brainstorm.Input
	ideas brainstorm.Ideas
	err   error
}

func (p *stubProvider) Brainstorm(_ context.Context, in brainstorm.Input) (brainstorm.Ideas, error) {
	p.got = in
	return p.ideas, p.err
}

func TestBrainstorm_CatalogIdeas(t *testing.T) {
	e := newEnv(t)
	id := e.createParty(t, "Summer Beach Party")

	w := e.do(t, http.MethodPost, "/api/parties/"+id+"/brainstorm", BrainstormRequest{SpecialRequests: "mocktails"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	ideas := decode[brainstorm.Ideas](t, w)
	if len(ideas.Themes) != 3 || len(ideas.Activities) != 3 || len(ideas.MenuSuggestions) != 3 {
		t.Fatalf("expected three of each: %+v", ideas)
	}
	if ideas.Themes[0].Name != "Tropical Luau" {
		t.Fatalf("top theme = %q", ideas.Themes[0].Name)
	}
}

func TestBrainstorm_UsesPartyDetails(t *testing.T) {
	p := &stubProvider{ideas: brainstorm.Ideas{Themes: []brainstorm.Idea{{Name: "Disco", Description: "Mirror balls"}}}}
	e := newEnv(t, withProvider(p))
	id := e.createParty(t, "Rooftop Bash")

	w := e.do(t, http.MethodPost, "/api/parties/"+id+"/brainstorm", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if p.got.PartyName != "Rooftop Bash" || p.got.PartyDate != "2025-07-04" {
		t.Fatalf("provider input: %+v", p.got)
	}
}

func TestBrainstorm_FailureIsGeneric(t *testing.T) {
	p := &stubProvider{err: errors.Join(brainstorm.ErrUnavailable, errors.New("upstream 503"))}
	e := newEnv(t, withProvider(p))
	id := e.createParty(t, "Rooftop Bash")

	w := e.do(t, http.MethodPost, "/api/parties/"+id+"/brainstorm", BrainstormRequest{PartyType: "birthday"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status=%d", w.Code)
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != ErrCodeBrainstormUnavailable || er.Message != brainstormUnavailableMessage {
		t.Fatalf("unexpected body: %+v", er)
	}

	// The 502 is the report; nothing is kept for later.
	notes := decode[NotificationsResponse](t, e.do(t, http.MethodGet, "/api/notifications", nil)).Notifications
	if len(notes) != 0 {
		t.Fatalf("failure reported twice: %+v", notes)
	}
}

func TestBrainstorm_FailureToastsOpenStream(t *testing.T) {
	p := &stubProvider{err: brainstorm.ErrUnavailable}
	e := newEnv(t, withProvider(p))
	id := e.createParty(t, "Rooftop Bash")

	ch, unregister := e.hub.Register(testClient)
	defer unregister()

	w := e.do(t, http.MethodPost, "/api/parties/"+id+"/brainstorm", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status=%d", w.Code)
	}
	select {
	case n := <-ch:
		if n.Title != "Brainstorm failed" || n.Variant != "destructive" {
			t.Fatalf("unexpected toast: %+v", n)
		}
	default:
		t.Fatalf("open stream should get the toast")
	}
}

func TestBrainstorm_UnknownParty(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/parties/"+uuid.NewString()+"/brainstorm", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestNotifications_EmptyList(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/notifications", nil)
	if w.Code != http.StatusOK || w.Body.String() != `{"notifications":[]}` {
		t.Fatalf("unexpected: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("notifications must not be cached")
	}
}
