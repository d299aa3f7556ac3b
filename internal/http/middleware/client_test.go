package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-party-backend/internal/notify"
)

func clientRouter(seen *string, ctxSeen *string) *gin.Engine {
	r := gin.New()
	r.Use(ClientID(ClientIDOptions{}))
	r.GET("/x", func(c *gin.Context) {
		*seen = GetClientID(c)
		*ctxSeen = notify.ClientIDFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestClientID_HeaderWins(t *testing.T) {
	var id, ctxID string
	w := do(clientRouter(&id, &ctxID), http.MethodGet, "/x", map[string]string{
		HeaderClientID: "tab-1",
		"Cookie":       CookieClientID + "=cookie-id",
	})
	if id != "tab-1" || ctxID != "tab-1" {
		t.Fatalf("id=%q ctx=%q; want tab-1", id, ctxID)
	}
	if w.Header().Get(HeaderClientID) != "tab-1" {
		t.Fatalf("id should be echoed")
	}
	if w.Header().Get("Set-Cookie") != "" {
		t.Fatalf("no cookie should be minted when an id is supplied")
	}
}

func TestClientID_CookieFallback(t *testing.T) {
	var id, ctxID string
	do(clientRouter(&id, &ctxID), http.MethodGet, "/x", map[string]string{
		HeaderClientID: "bad id with spaces",
		"Cookie":       CookieClientID + "=cookie-id",
	})
	if id != "cookie-id" {
		t.Fatalf("id = %q; want cookie-id", id)
	}
}

func TestClientID_MintsCookie(t *testing.T) {
	var id, ctxID string
	w := do(clientRouter(&id, &ctxID), http.MethodGet, "/x", nil)
	if len(id) != 36 || id != ctxID {
		t.Fatalf("expected minted uuid, got %q / %q", id, ctxID)
	}
	sc := w.Header().Get("Set-Cookie")
	if !strings.Contains(sc, CookieClientID+"="+id) || !strings.Contains(sc, "HttpOnly") || !strings.Contains(sc, "SameSite=Lax") {
		t.Fatalf("unexpected Set-Cookie: %q", sc)
	}
}

func TestGetClientID_Unset(t *testing.T) {
	r := gin.New()
	var got = "x"
	r.GET("/x", func(c *gin.Context) { got = GetClientID(c) })
	do(r, http.MethodGet, "/x", nil)
	if got != "" {
		t.Fatalf("GetClientID without middleware = %q", got)
	}
}
