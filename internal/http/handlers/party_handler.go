// Party HTTP handlers.
//
// This file exposes REST endpoints for parties:
//   - POST /parties        (create, optimistic)
//   - GET  /parties/{id}   (load, including a party whose creation is pending)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/services"
)

//
// DTOs
//

// CreatePartyRequest is the JSON payload of the party creation form.
type CreatePartyRequest struct {
	Name        string `json:"name"        binding:"required,max=200"  example:"Rooftop Bash"`
	Date        string `json:"date"        binding:"required,max=32"   example:"2025-07-04"`
	Time        string `json:"time"        binding:"required,max=32"   example:"19:30"`
	Location    string `json:"location"    binding:"required,max=300"  example:"12 Harbour St, roof terrace"`
	Description string `json:"description" binding:"max=5000"          example:"Bring sunscreen."`
}

// PartyResponse wraps a party and the state of its write.
type PartyResponse struct {
	Party *domain.Party `json:"party"`
	// SharePath is the link guests open to see the party.
	SharePath string `json:"share_path" example:"/party/3f1c6a0e-8f3b-4c7e-9d21-6b1f0c9a2e11"`
	// Write is pending, confirmed, or failed.
	Write string `json:"write" example:"pending"`
}

func sharePath(id string) string { return "/party/" + id }

//
// Handlers
//

// CreateParty godoc
// @ID          createParty
// @Summary     Create a party
// @Description Issues the party's creation and returns at once with the party id and share link.
// @Description The write completes in the background; a rejected write is reported as a notification.
// @Description Supports idempotency via the Idempotency-Key header (same key → same party).
// @Tags        Parties
// @Accept      json
// @Produce     json
//
// @Param       X-Client-ID      header  string  false "Client identity (otherwise a cookie is issued)"
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       body             body    handlers.CreatePartyRequest  true  "Party details"
//
// @Success     202  {object}  handlers.PartyResponse  "Creation issued"
// @Success     200  {object}  handlers.PartyResponse  "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /parties [post]
func (h *Handlers) CreateParty(c *gin.Context) {
	if rec, found := h.replayed(c); found {
		if p, isParty := rec.(*domain.Party); isParty {
			ok(c, http.StatusOK, PartyResponse{Party: p, SharePath: sharePath(p.ID), Write: writeState(p)})
			return
		}
	}

	var req CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, date, time, and location are required")
		return
	}

	p, intent, err := h.parties.Create(c.Request.Context(), services.PartyInput{
		Name:        req.Name,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidParty) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidParty, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}

	h.remember(c, "", docstore.LocationOf(p))
	ok(c, http.StatusAccepted, PartyResponse{Party: p, SharePath: sharePath(p.ID), Write: intent.State().String()})
}

// GetParty godoc
// @ID          getParty
// @Summary     Get a party
// @Description Returns the party, including one whose creation has not been committed yet (no created_at).
// @Tags        Parties
// @Produce     json
//
// @Param       id   path  string  true  "Party ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.PartyResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Party not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /parties/{id} [get]
func (h *Handlers) GetParty(c *gin.Context) {
	id, valid := partyParam(c)
	if !valid {
		return
	}
	p, err := h.parties.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPartyNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "party not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, PartyResponse{Party: p, SharePath: sharePath(p.ID), Write: writeState(p)})
}
