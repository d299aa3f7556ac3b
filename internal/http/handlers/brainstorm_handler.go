// Brainstorm and notification HTTP handlers.
//
//   - POST /parties/{id}/brainstorm   (themes, activities, and menu ideas)
//   - GET  /notifications             (notifications not yet delivered to a stream)
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-party-backend/internal/brainstorm"
	"github.com/tbourn/go-party-backend/internal/http/middleware"
	"github.com/tbourn/go-party-backend/internal/notify"
	"github.com/tbourn/go-party-backend/internal/services"
)

// BrainstormRequest carries optional details; the party's name and date are
// used when omitted.
type BrainstormRequest struct {
	PartyName       string `json:"party_name,omitempty"       binding:"max=200"            example:"Rooftop Bash"`
	PartyType       string `json:"party_type,omitempty"       binding:"max=100"            example:"summer birthday"`
	PartyDate       string `json:"party_date,omitempty"       binding:"max=32"             example:"2025-07-04"`
	NumberOfGuests  int    `json:"number_of_guests,omitempty" binding:"gte=0,lte=100000"   example:"25"`
	Budget          string `json:"budget,omitempty"           binding:"max=100"            example:"modest"`
	SpecialRequests string `json:"special_requests,omitempty" binding:"max=2000"           example:"vegetarian menu, no loud music"`
}

// NotificationsResponse lists notifications in the order they were raised.
type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}

// Brainstorm godoc
// @ID          brainstorm
// @Summary     Brainstorm party ideas
// @Description Suggests themes, activities, and menu items for the party. When generation fails
// @Description the response is a 502 with a generic message and a notification is raised.
// @Tags        Brainstorm
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true   "Party ID (UUID)"  format(uuid)
// @Param       body  body  handlers.BrainstormRequest  false  "Optional details"
//
// @Success     200  {object}  brainstorm.Ideas
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Party not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Generation unavailable"
// @Router      /parties/{id}/brainstorm [post]
func (h *Handlers) Brainstorm(c *gin.Context) {
	id, valid := partyParam(c)
	if !valid {
		return
	}
	var req BrainstormRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid brainstorm details")
			return
		}
	}
	if h.brainstorm == nil {
		h.brainstormFailed(c, brainstorm.ErrUnavailable)
		return
	}

	ideas, err := h.brainstorm.Brainstorm(c.Request.Context(), id, brainstorm.Input{
		PartyName:       req.PartyName,
		PartyType:       req.PartyType,
		PartyDate:       req.PartyDate,
		NumberOfGuests:  req.NumberOfGuests,
		Budget:          req.Budget,
		SpecialRequests: req.SpecialRequests,
	})
	switch {
	case err == nil:
		ok(c, http.StatusOK, ideas)
	case errors.Is(err, services.ErrPartyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "party not found")
	case errors.Is(err, services.ErrInvalidParty):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "party name required")
	default:
		h.brainstormFailed(c, err)
	}
}

// brainstormFailed answers 502. Open streams of the client also get a
// toast; nothing is queued, since the response already reports the failure.
func (h *Handlers) brainstormFailed(c *gin.Context, err error) {
	lg := middleware.LoggerFrom(c)
	lg.Warn().Err(err).Msg("brainstorm failed")
	if h.hub != nil {
		h.hub.Push(c.Request.Context(), notify.Notification{
			Title:       "Brainstorm failed",
			Description: brainstormUnavailableMessage,
			Variant:     notify.VariantDestructive,
			At:          time.Now().UTC(),
		})
	}
	fail(c, http.StatusBadGateway, ErrCodeBrainstormUnavailable, brainstormUnavailableMessage)
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     Take pending notifications
// @Description Returns and clears notifications raised for this client while it had no open stream,
// @Description such as a rejected RSVP or message write.
// @Tags        Notifications
// @Produce     json
// @Param       X-Client-ID  header  string  false "Client identity (otherwise the pp_cid cookie)"
// @Success     200  {object}  handlers.NotificationsResponse
// @Router      /notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	out := []notify.Notification{}
	if h.hub != nil {
		if got := h.hub.Drain(middleware.GetClientID(c)); len(got) > 0 {
			out = got
		}
	}
	c.Header("Cache-Control", "no-store")
	ok(c, http.StatusOK, NotificationsResponse{Notifications: out})
}
