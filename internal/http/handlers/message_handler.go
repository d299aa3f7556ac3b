// Message HTTP handlers.
//
//   - POST /parties/{id}/messages   (send, optimistic)
//   - GET  /parties/{id}/messages   (most recent messages, oldest first)
//
// The sender is the request's "sender" field, else the display name saved
// for the party (cookie dn_<party>), else "Guest".
package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/domain"
	"github.com/tbourn/go-party-backend/internal/services"
	"github.com/tbourn/go-party-backend/internal/utils"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 500
)

// PostMessageRequest is the JSON payload for a chat message.
type PostMessageRequest struct {
	Text   string `json:"text"             binding:"required" example:"Who's bringing the speaker?"`
	Sender string `json:"sender,omitempty"                    example:"Dana"`
}

// MessageResponse wraps a message and the state of its write.
type MessageResponse struct {
	Message *domain.ChatMessage `json:"message"`
	Write   string              `json:"write" example:"pending"`
}

// ListMessagesResponse holds chat messages in chronological order.
type ListMessagesResponse struct {
	Messages []*domain.ChatMessage `json:"messages"`
}

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeText normalizes line endings, collapses blank-line runs, and trims.
func sanitizeText(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Send a chat message
// @Description Issues the message and returns at once. Failures are reported as notifications.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       id               path    string  true  "Party ID (UUID)"  format(uuid)
// @Param       body             body    handlers.PostMessageRequest  true  "Message"
//
// @Success     202  {object}  handlers.MessageResponse  "Message issued"
// @Success     200  {object}  handlers.MessageResponse  "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse    "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse    "Internal error"
// @Router      /parties/{id}/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	id, valid := partyParam(c)
	if !valid {
		return
	}
	if rec, found := h.replayed(c); found {
		if m, isMsg := rec.(*domain.ChatMessage); isMsg {
			ok(c, http.StatusOK, MessageResponse{Message: m, Write: writeState(m)})
			return
		}
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}
	sender := strings.TrimSpace(req.Sender)
	if sender == "" {
		sender = displayNameCookie(c, id)
	}

	m, intent, err := h.chat.Send(c.Request.Context(), id, sender, sanitizeText(req.Text))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyText):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		case errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text too long")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	h.remember(c, id, docstore.LocationOf(m))
	ok(c, http.StatusAccepted, MessageResponse{Message: m, Write: intent.State().String()})
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List a party's chat
// @Description Returns the most recent messages, oldest first.
// @Tags        Messages
// @Produce     json
//
// @Param       id             path    string  true  "Party ID (UUID)"  format(uuid)
// @Param       limit          query   int     false "Most recent messages returned"  minimum(1) maximum(500) default(50)
// @Param       If-None-Match  header  string  false "ETag from a previous response"
//
// @Success     200  {object}  handlers.ListMessagesResponse
// @Success     304  "Not modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /parties/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	id, valid := partyParam(c)
	if !valid {
		return
	}
	ctx := c.Request.Context()

	if c.GetHeader("If-None-Match") != "" {
		if st, err := h.chat.Stats(ctx, id); err == nil && notModified(c, etag(domain.CollectionMessages, id, st)) {
			return
		}
	}

	limit := utils.ParseLimit(c.Query("limit"), defaultMessageLimit, maxMessageLimit)
	items, st, err := h.chat.List(ctx, id, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []*domain.ChatMessage{}
	}
	c.Header("ETag", etag(domain.CollectionMessages, id, st))
	ok(c, http.StatusOK, ListMessagesResponse{Messages: items})
}
