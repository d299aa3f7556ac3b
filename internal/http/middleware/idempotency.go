// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for document-creating POSTs. It
// validates the Idempotency-Key header, asks a lookup whether the same
// (client, party, key) already produced a document, and annotates the
// request so that:
//   - handlers read the normalized key (GetIdempotencyKey)
//   - handlers serve the stored document instead of writing again
//     (GetReplayPath, MarkReplayed)
//   - the rate limiter skips replays
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderIdempotencyKey is the request header carrying the client's key.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotencyReplayed is set to "true" on responses served from a
	// previous request with the same key.
	HeaderIdempotencyReplayed = "Idempotency-Replayed"
)

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // string: stored document path
	ctxKeyRateBypass = "rate.bypass"
)

// GetIdempotencyKey returns the validated key stored by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// GetReplayPath returns the document path recorded for this request's key
// when the request is a replay.
func GetReplayPath(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemReplay)
	return s, s != ""
}

// IsReplay reports whether the request repeats a completed one.
func IsReplay(c *gin.Context) bool {
	_, ok := GetReplayPath(c)
	return ok
}

// MarkReplayed sets the Idempotency-Replayed response header.
func MarkReplayed(c *gin.Context) {
	c.Header(HeaderIdempotencyReplayed, "true")
}

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyLookup returns the path of the document previously created for
// (clientID, partyID, key), if one is still valid at now. partyID is empty
// for party creation. Errors are treated as "not found".
type IdempotencyLookup func(ctx context.Context, clientID, partyID, key string, now time.Time) (docPath string, found bool, err error)

// IdempotencyValidator validates the Idempotency-Key header on POST requests
// and detects replays via lookup.
//
// Behavior:
//   - Other methods, or no header: no-op.
//   - Invalid header: 400 bad_idempotency_key.
//   - Lookup hit: the stored path is stashed and rate limiting is bypassed.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			path, found, err := lookup(c.Request.Context(), GetClientID(c), c.Param("id"), key, time.Now().UTC())
			if err == nil && found && path != "" {
				c.Set(ctxKeyIdemReplay, path)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}
