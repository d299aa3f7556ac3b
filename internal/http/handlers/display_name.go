// Display name HTTP handlers.
//
// A display name is chosen per party and kept only on the guest's device,
// in the cookie dn_<party id>. It is never written to the store and has no
// uniqueness guarantee.
//
//   - GET    /parties/{id}/display-name
//   - PUT    /parties/{id}/display-name
//   - DELETE /parties/{id}/display-name
package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-party-backend/internal/domain"
)

const (
	displayNameCookiePrefix = "dn_"
	maxDisplayNameRunes     = 100
)

// DisplayNameRequest sets the display name for a party.
type DisplayNameRequest struct {
	DisplayName string `json:"display_name" binding:"required" example:"Dana"`
}

// DisplayNameResponse reports the saved display name and the sender name
// messages will carry.
type DisplayNameResponse struct {
	PartyID     string `json:"party_id"`
	DisplayName string `json:"display_name" example:"Dana"`
	Sender      string `json:"sender"       example:"Dana"`
}

func displayNameCookieName(partyID string) string { return displayNameCookiePrefix + partyID }

// displayNameCookie returns the saved display name for partyID, or "".
func displayNameCookie(c *gin.Context, partyID string) string {
	v, err := c.Cookie(displayNameCookieName(partyID))
	if err != nil {
		return ""
	}
	return cleanDisplayName(v)
}

// cleanDisplayName collapses whitespace and title-cases all-lowercase names.
func cleanDisplayName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s != "" && s == strings.ToLower(s) {
		s = cases.Title(language.English).String(s)
	}
	return s
}

func displayNameResponse(partyID, name string) DisplayNameResponse {
	sender := name
	if sender == "" {
		sender = domain.DefaultSender
	}
	return DisplayNameResponse{PartyID: partyID, DisplayName: name, Sender: sender}
}

// GetDisplayName godoc
// @ID          getDisplayName
// @Summary     Get the display name saved for a party
// @Tags        Display name
// @Produce     json
// @Param       id   path  string  true  "Party ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.DisplayNameResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /parties/{id}/display-name [get]
func (h *Handlers) GetDisplayName(c *gin.Context) {
	id, valid := partyParam(c)
	if !valid {
		return
	}
	ok(c, http.StatusOK, displayNameResponse(id, displayNameCookie(c, id)))
}

// PutDisplayName godoc
// @ID          putDisplayName
// @Summary     Save a display name for a party
// @Description Stored in a cookie on this device only.
// @Tags        Display name
// @Accept      json
// @Produce     json
// @Param       id    path  string  true  "Party ID (UUID)"  format(uuid)
// @Param       body  body  handlers.DisplayNameRequest  true  "Display name"
// @Success     200  {object}  handlers.DisplayNameResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /parties/{id}/display-name [put]
func (h *Handlers) PutDisplayName(c *gin.Context) {
	id, valid := partyParam(c)
	if !valid {
		return
	}
	var req DisplayNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "display_name required")
		return
	}
	name := cleanDisplayName(req.DisplayName)
	switch {
	case name == "":
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "display_name required")
		return
	case utf8.RuneCountInString(name) > maxDisplayNameRunes:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "display_name too long")
		return
	}

	h.setDisplayNameCookie(c, id, name)
	ok(c, http.StatusOK, displayNameResponse(id, name))
}

// DeleteDisplayName godoc
// @ID          deleteDisplayName
// @Summary     Forget the display name saved for a party
// @Tags        Display name
// @Param       id   path  string  true  "Party ID (UUID)"  format(uuid)
// @Success     204  "Forgotten"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /parties/{id}/display-name [delete]
func (h *Handlers) DeleteDisplayName(c *gin.Context) {
	id, valid := partyParam(c)
	if !valid {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(displayNameCookieName(id), "", -1, "/", "", h.opts.SecureCookies, false)
	noContent(c)
}

func (h *Handlers) setDisplayNameCookie(c *gin.Context, partyID, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(displayNameCookieName(partyID), name,
		int(h.opts.DisplayNameMaxAge.Seconds()), "/", "", h.opts.SecureCookies, false)
}
