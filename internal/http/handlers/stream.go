// Party stream.
//
//   - GET /parties/{id}/stream   (websocket)
//
// The server pushes:
//   - {"type":"snapshot","data":<livesync.Frame>} whenever the party, its
//     RSVPs, or its chat change (pending writes included);
//   - {"type":"toast","data":<notify.Notification>} for failures caused by
//     this client, such as a rejected write;
//   - {"type":"ack","data":{...}} after a client frame was accepted;
//   - {"type":"error","data":<ErrorResponse>} for a rejected client frame.
//
// The client may send:
//   - {"type":"rsvp","name":"Dana","ref":"1"}
//   - {"type":"message","text":"hi","ref":"2"}
//   - {"type":"display_name","name":"Dana","ref":"3"}
//
// Frames are handled in the order received. Writes are optimistic: the ack
// reports "pending" and the next snapshot already contains the document.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-party-backend/internal/docstore"
	"github.com/tbourn/go-party-backend/internal/http/middleware"
	"github.com/tbourn/go-party-backend/internal/livesync"
	"github.com/tbourn/go-party-backend/internal/notify"
	"github.com/tbourn/go-party-backend/internal/services"
)

const (
	frameSnapshot    = "snapshot"
	frameToast       = "toast"
	frameAck         = "ack"
	frameError       = "error"
	frameRSVP        = "rsvp"
	frameMessage     = "message"
	frameDisplayName = "display_name"

	streamWriteWait    = 10 * time.Second
	streamMaxFrameSize = 16 << 10
	streamOutBuffer    = 16
)

// ServerFrame is a frame pushed to stream clients.
type ServerFrame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ClientFrame is a frame sent by stream clients.
type ClientFrame struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
	// Ref is echoed in the ack or error answering this frame.
	Ref string `json:"ref,omitempty"`
}

// Ack confirms a client frame was accepted.
type Ack struct {
	Ref   string `json:"ref,omitempty"`
	Kind  string `json:"kind"`
	Path  string `json:"path,omitempty"`
	State string `json:"state,omitempty"`
	// DisplayName is set when Kind is display_name.
	DisplayName string `json:"display_name,omitempty"`
}

// FrameError reports a rejected client frame.
type FrameError struct {
	ErrorResponse
	Ref string `json:"ref,omitempty"`
}

// Stream godoc
// @ID          partyStream
// @Summary     Live party view (websocket)
// @Description Upgrades to a websocket that pushes snapshot frames of the party, its RSVPs (newest
// @Description first), and its chat (oldest first), plus toast frames for failures. Accepts rsvp,
// @Description message, and display_name frames.
// @Tags        Stream
// @Param       id   path  string  true  "Party ID (UUID)"  format(uuid)
// @Success     101  "Switching protocols"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503  {object}  handlers.ErrorResponse  "Stream unavailable"
// @Router      /parties/{id}/stream [get]
func (h *Handlers) Stream(c *gin.Context) {
	id, valid := partyParam(c)
	if !valid {
		return
	}
	if h.live == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeInternal, "live updates unavailable")
		return
	}

	clientID := middleware.GetClientID(c)
	name := displayNameCookie(c, id)
	lg := middleware.LoggerFrom(c).With().Str("party_id", id).Logger()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		lg.Debug().Err(err).Msg("stream upgrade failed")
		return
	}
	defer conn.Close()

	closed := middleware.StreamOpened()
	defer closed()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	s := &stream{
		h:        h,
		conn:     conn,
		partyID:  id,
		clientID: clientID,
		name:     name,
		out:      make(chan ServerFrame, streamOutBuffer),
		log:      lg,
	}

	view := livesync.NewPartyView(h.live, h.notifier)
	defer view.Close()
	if err := view.SetParty(ctx, id); err != nil {
		lg.Warn().Err(err).Msg("stream bind failed")
	}

	var notes <-chan notify.Notification
	if h.hub != nil {
		ch, unregister := h.hub.Register(clientID)
		defer unregister()
		notes = ch
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer cancel()
		s.readLoop(ctx)
	}()

	s.writeLoop(ctx, view, notes)
	cancel()
	_ = conn.Close()
	<-readDone
}

// stream is one connected client.
type stream struct {
	h        *Handlers
	conn     *websocket.Conn
	partyID  string
	clientID string
	// name is only touched by readLoop.
	name string
	out  chan ServerFrame
	log  zerolog.Logger
}

// writeLoop owns all writes to the connection.
func (s *stream) writeLoop(ctx context.Context, view *livesync.PartyView, notes <-chan notify.Notification) {
	ping := time.NewTicker(s.h.opts.PingInterval)
	defer ping.Stop()

	for {
		var f ServerFrame
		select {
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(streamWriteWait))
			return
		case <-view.Changes():
			f = ServerFrame{Type: frameSnapshot, Data: view.Frame()}
		case n, open := <-notes:
			if !open {
				notes = nil
				continue
			}
			f = ServerFrame{Type: frameToast, Data: n}
		case f = <-s.out:
		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
			continue
		}

		_ = s.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := s.conn.WriteJSON(f); err != nil {
			s.log.Debug().Err(err).Msg("stream write failed")
			return
		}
		middleware.CountFrame("out", f.Type)
	}
}

// readLoop handles client frames until the connection fails or ctx ends.
func (s *stream) readLoop(ctx context.Context) {
	pongWait := 2 * s.h.opts.PingInterval
	s.conn.SetReadLimit(streamMaxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f ClientFrame
		if err := s.conn.ReadJSON(&f); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("stream read ended")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		middleware.CountFrame("in", f.Type)
		s.handle(ctx, f)
	}
}

func (s *stream) handle(ctx context.Context, f ClientFrame) {
	if f.Type != frameDisplayName && s.h.limiter != nil && !s.h.limiter.Allow("stream:"+s.clientID) {
		s.reject(ctx, f, ErrCodeRateLimited, "too many requests")
		return
	}

	switch f.Type {
	case frameRSVP:
		r, intent, err := s.h.rsvps.Submit(ctx, s.partyID, f.Name)
		if err != nil {
			s.rejectWrite(ctx, f, err)
			return
		}
		s.ack(ctx, f, docstore.LocationOf(r), intent)

	case frameMessage:
		m, intent, err := s.h.chat.Send(ctx, s.partyID, s.name, sanitizeText(f.Text))
		if err != nil {
			s.rejectWrite(ctx, f, err)
			return
		}
		s.ack(ctx, f, docstore.LocationOf(m), intent)

	case frameDisplayName:
		name := cleanDisplayName(f.Name)
		if name == "" || utf8.RuneCountInString(name) > maxDisplayNameRunes {
			s.reject(ctx, f, ErrCodeBadRequest, "display name must be 1-100 characters")
			return
		}
		s.name = name
		s.send(ctx, ServerFrame{Type: frameAck, Data: Ack{Ref: f.Ref, Kind: f.Type, DisplayName: name}})

	default:
		s.reject(ctx, f, ErrCodeBadFrame, "unknown frame type")
	}
}

func (s *stream) ack(ctx context.Context, f ClientFrame, loc docstore.Location, intent *livesync.Intent) {
	s.send(ctx, ServerFrame{Type: frameAck, Data: Ack{
		Ref:   f.Ref,
		Kind:  f.Type,
		Path:  loc.Path(),
		State: intent.State().String(),
	}})
}

func (s *stream) rejectWrite(ctx context.Context, f ClientFrame, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyName):
		s.reject(ctx, f, ErrCodeBadRequest, "name required")
	case errors.Is(err, services.ErrEmptyText):
		s.reject(ctx, f, ErrCodeBadRequest, "text required")
	case errors.Is(err, services.ErrTooLong):
		s.reject(ctx, f, ErrCodeBadRequest, "too long")
	default:
		s.log.Error().Err(err).Str("frame", f.Type).Msg("stream write failed")
		s.reject(ctx, f, ErrCodeCreateFailed, "could not save")
	}
}

func (s *stream) reject(ctx context.Context, f ClientFrame, code, msg string) {
	s.send(ctx, ServerFrame{Type: frameError, Data: FrameError{
		ErrorResponse: ErrorResponse{Code: code, Message: msg},
		Ref:           f.Ref,
	}})
}

func (s *stream) send(ctx context.Context, f ServerFrame) {
	select {
	case s.out <- f:
	case <-ctx.Done():
	}
}
