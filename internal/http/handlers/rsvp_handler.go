// RSVP HTTP handlers.
//
//   - POST /parties/{id}/rsvps   (submit, optimistic)
//   - GET  /parties/{id}/rsvps   (newest first, with total count and ETag)
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/services"
	"github.com/tbourn/go-party-backend/internal/utils"
)

const (
	defaultRSVPLimit = 100
	maxRSVPLimit     = 1000
)

// PostRSVPRequest is the JSON payload of the RSVP form.
type PostRSVPRequest struct {
	Name string `json:"name" binding:"required" example:"Dana"`
}

// RSVPResponse wraps an RSVP and the state of its write.
type RSVPResponse struct {
	RSVP  *domain.RSVP `json:"rsvp"`
	Write string       `json:"write" example:"pending"`
}

// ListRSVPsResponse holds a party's RSVPs, newest first.
type ListRSVPsResponse struct {
	RSVPs []*domain.RSVP `json:"rsvps"`
	// Count is the number of guests attending, including pending RSVPs.
	Count int `json:"count" example:"12"`
}

// etag is the weak validator for a party's collection. It changes whenever
// a write is committed, issued, or rejected, since pending documents are
// part of the listed body.
func etag(collection, partyID string, st services.Stats) string {
	var ts int64
	if st.Latest != nil {
		ts = st.Latest.UnixNano()
	}
	tag := fmt.Sprintf("%s:%s:%d:%d", collection, partyID, st.Count, ts)
	if len(st.Pending) > 0 {
		d := xxhash.New()
		for _, id := range st.Pending {
			_, _ = d.WriteString(id)
			_, _ = d.Write([]byte{0})
		}
		tag += fmt.Sprintf(":%d:%x", len(st.Pending), d.Sum64())
	}
	return `W/"` + tag + `"`
}

// notModified answers 304 when If-None-Match holds tag.
func notModified(c *gin.Context, tag string) bool {
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == tag {
		c.Header("ETag", tag)
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// PostRSVP godoc
// @ID          postRSVP
// @Summary     RSVP to a party
// @Description Issues the RSVP and returns at once. An RSVP to a party that does not exist is
// @Description rejected by the store and reported as a notification, not in this response.
// @Tags        RSVPs
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       id               path    string  true  "Party ID (UUID)"  format(uuid)
// @Param       body             body    handlers.PostRSVPRequest  true  "Guest name"
//
// @Success     202  {object}  handlers.RSVPResponse   "RSVP issued"
// @Success     200  {object}  handlers.RSVPResponse   "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /parties/{id}/rsvps [post]
func (h *Handlers) PostRSVP(c *gin.Context) {
	id, valid := partyParam(c)
	if !valid {
		return
	}
	if rec, found := h.replayed(c); found {
		if r, isRSVP := rec.(*domain.RSVP); isRSVP {
			ok(c, http.StatusOK, RSVPResponse{RSVP: r, Write: writeState(r)})
			return
		}
	}

	var req PostRSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	}

	r, intent, err := h.rsvps.Submit(c.Request.Context(), id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyName):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		case errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name too long")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	h.remember(c, id, docstore.LocationOf(r))
	ok(c, http.StatusAccepted, RSVPResponse{RSVP: r, Write: intent.State().String()})
}

// ListRSVPs godoc
// @ID          listRSVPs
// @Summary     List a party's RSVPs
// @Description Returns RSVPs newest first. RSVPs still being written have no created_at and sort last.
// @Tags        RSVPs
// @Produce     json
//
// @Param       id             path    string  true  "Party ID (UUID)"  format(uuid)
// @Param       limit          query   int     false "Maximum RSVPs returned"  minimum(1) maximum(1000) default(100)
// @Param       If-None-Match  header  string  false "ETag from a previous response"
//
// @Success     200  {object}  handlers.ListRSVPsResponse
// @Success     304  "Not modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /parties/{id}/rsvps [get]
func (h *Handlers) ListRSVPs(c *gin.Context) {
	id, valid := partyParam(c)
	if !valid {
		return
	}
	ctx := c.Request.Context()

	// ETag pre-check (best effort); the tag sent with a body is always
	// derived from the snapshot that body came from.
	if c.GetHeader("If-None-Match") != "" {
		if st, err := h.rsvps.Stats(ctx, id); err == nil && notModified(c, etag(domain.CollectionRSVPs, id, st)) {
			return
		}
	}

	limit := utils.ParseLimit(c.Query("limit"), defaultRSVPLimit, maxRSVPLimit)
	items, st, err := h.rsvps.List(ctx, id, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []*domain.RSVP{}
	}
	c.Header("ETag", etag(domain.CollectionRSVPs, id, st))
	ok(c, http.StatusOK, ListRSVPsResponse{RSVPs: items, Count: st.Total()})
}
