package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard-server/internal/core"
	"github.com/vovakirdan/wireboard-server/internal/proto"
)

const writeTimeout = 10 * time.Second

var (
	errEvicted     = errors.New("outbound queue overflow")
	errHubShutdown = errors.New("server shutting down")
)

// SessionHub is the part of the core hub the transport drives.
type SessionHub interface {
	Connect(identity core.Identity) *core.Session
	Disconnect(s *core.Session)
}

// WSOptions tunes WebSocket connections.
type WSOptions struct {
	MaxMessageBytes int64
	EventsPerMinute int
	OriginPatterns  []string
}

// WSHandler authenticates upgrade requests and bridges connections to core sessions.
type WSHandler struct {
	hub  SessionHub
	auth Authenticator
	opts WSOptions
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub SessionHub, authn Authenticator, opts WSOptions, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, auth: authn, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	identity, err := h.auth.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		h.log.Info().Str("remote", r.RemoteAddr).Msg("ws connection rejected: unauthenticated")
		stdhttp.Error(w, "unauthorized", stdhttp.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Without configured origins any origin is accepted.
		InsecureSkipVerify: len(h.opts.OriginPatterns) == 0,
		OriginPatterns:     h.opts.OriginPatterns,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.opts.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.opts.MaxMessageBytes)
	}

	session := h.hub.Connect(identity)
	defer h.hub.Disconnect(session)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, session)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status, reason := h.closeStatus(session, err)
	conn.Close(status, reason)
}

func (h *WSHandler) closeStatus(session *core.Session, err error) (websocket.StatusCode, string) {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
		return websocket.StatusNormalClosure, "closing"
	case errors.Is(err, errEvicted):
		h.log.Warn().Str("session_id", session.ID).Msg("closing slow consumer")
		return websocket.StatusPolicyViolation, "too slow"
	case errors.Is(err, errHubShutdown):
		return websocket.StatusGoingAway, "server shutting down"
	}

	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
		return websocket.StatusNormalClosure, "closing"
	}
	if status == -1 {
		status = websocket.StatusInternalError
	}
	h.log.Warn().Err(err).Str("session_id", session.ID).Msg("ws connection closed with error")
	return status, "closing"
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	limiter := newRateLimiter(h.opts.EventsPerMinute, time.Minute)

	for {
		var raw json.RawMessage
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			h.log.Debug().Err(err).Str("session_id", session.ID).Msg("read ws inbound")
			return err
		}

		if ok, notify := limiter.allow(); !ok {
			if notify {
				h.log.Warn().Str("session_id", session.ID).Str("user_id", session.Identity.UserID).Msg("rate limit exceeded")
				session.Fail(errRateLimited)
			}
			continue
		}

		var env proto.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.log.Debug().Err(err).Str("session_id", session.ID).Msg("malformed envelope")
			session.Fail(errInvalidPayload)
			continue
		}

		cmd, protoErr := inboundToCommand(env)
		if protoErr != nil {
			h.log.Debug().Str("session_id", session.ID).Str("event", env.Type).Str("error", protoErr.Code).Msg("rejected inbound event")
			session.Fail(protoErr)
			continue
		}
		if !session.Submit(cmd) {
			return errHubShutdown
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		select {
		case event := <-session.Events():
			if err := h.write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Debug().Err(err).Str("session_id", session.ID).Msg("write ws event")
				return err
			}
		case <-session.Evicted():
			return errEvicted
		case <-session.Done():
			return errHubShutdown
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, msg proto.Outbound) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
