// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements ClientID, which gives every browser a stable anonymous
// identity. The identity scopes idempotency keys and rate-limit buckets, and
// routes permission-error notifications back to the client whose write
// failed. It is not an authentication mechanism.
package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-party-backend/internal/notify"
)

const (
	// HeaderClientID lets non-browser clients supply their identity.
	HeaderClientID = "X-Client-ID"
	// CookieClientID stores the identity assigned to browsers.
	CookieClientID = "pp_cid"

	ctxKeyClientID = "clientID"
)

var clientIDRE = regexp.MustCompile(`^[A-Za-z0-9._~\-:]{1,64}$`)

// ClientIDOptions configures the client identity cookie.
type ClientIDOptions struct {
	// CookieMaxAge defaults to one year.
	CookieMaxAge time.Duration
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// ClientID resolves the client identity from the X-Client-ID header, then the
// pp_cid cookie, and otherwise mints a UUID and sets the cookie. The id is
// stored in the Gin context, echoed in X-Client-ID, and attached to the
// request context with notify.WithClientID.
func ClientID(opts ClientIDOptions) gin.HandlerFunc {
	maxAge := opts.CookieMaxAge
	if maxAge <= 0 {
		maxAge = 365 * 24 * time.Hour
	}
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderClientID)
		if !clientIDRE.MatchString(id) {
			id, _ = c.Cookie(CookieClientID)
		}
		if !clientIDRE.MatchString(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieClientID, id, int(maxAge.Seconds()), "/", "", opts.Secure, true)
		}

		c.Set(ctxKeyClientID, id)
		c.Header(HeaderClientID, id)
		c.Request = c.Request.WithContext(notify.WithClientID(c.Request.Context(), id))
		c.Next()
	}
}

// GetClientID returns the identity set by ClientID, or "" when the
// middleware did not run.
func GetClientID(c *gin.Context) string {
	return c.GetString(ctxKeyClientID)
}
