package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wirenest/roomcast/internal/app"
	"github.com/wirenest/roomcast/internal/config"
	"github.com/wirenest/roomcast/internal/core"
	"github.com/wirenest/roomcast/internal/metrics"
)

var upgrader = websocket.Upgrader{
	// TODO: restrict origins once the frontend origin list is settled.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller terminates websocket connections: one handshake per attempt,
// then a read/write pump pair per admitted session.
type Controller struct {
	Handshake  *app.Handshake
	Router     *app.Router
	Cfg        *config.WebSocketConfig
	TokenParam string
	Limiter    *RateLimiter
}

// HandleChat serves GET /ws/chat?roomId=... The bearer credential comes
// from the Authorization header or the token query parameter. Rejections
// are HTTP statuses written before the upgrade, so the caller can tell
// re-login, request-access and bad-navigation apart.
func (ctl *Controller) HandleChat(ctx context.Context, c *gin.Context) {
	token := bearerToken(c, ctl.TokenParam)
	roomID := c.Query("roomId")

	adm, err := ctl.Handshake.Admit(c.Request.Context(), token, roomID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	wsock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Str("module", "adapters.ws").Err(err).Msg("upgrade failed")
		return
	}

	conn := newWSConn(wsock, ctl.Cfg.SendBuffer)
	sess := ctl.Handshake.Register(adm, conn)
	log.Info().Str("module", "adapters.ws").Str("sid", string(sess.ID)).
		Str("user", string(sess.User.ID)).Str("room", string(sess.Room)).Msg("session open")

	if f, err := (core.Envelope{Event: "connected", Payload: mustJSON(gin.H{
		"sessionId": sess.ID,
		"room":      sess.Room,
	})}).Encode(); err == nil {
		_ = conn.TrySend(f)
	}

	connCtx, cancel := context.WithCancel(ctx)
	go func() {
		ctl.writePump(connCtx, conn)
		// Unblocks the read pump if the write side died first.
		conn.Close()
		cancel()
	}()
	ctl.readPump(connCtx, sess, conn)
	cancel()

	ctl.Handshake.Release(sess)
	if ctl.Limiter != nil && !ctl.Handshake.Registry.UserConnected(sess.User.ID) {
		ctl.Limiter.Forget(sess.User.ID)
	}
	log.Info().Str("module", "adapters.ws").Str("sid", string(sess.ID)).Msg("session closed")
}

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	writeTimeout := time.Duration(ctl.Cfg.WriteTimeout) * time.Second
	ping := time.NewTicker(time.Duration(ctl.Cfg.PingInterval) * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Error().Str("module", "adapters.ws").Err(err).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Str("module", "adapters.ws").Err(err).Msg("writePump write error")
				return
			}
			metrics.FramesSent.Inc()
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sess *core.Session, c *wsConn) {
	defer c.Close()

	pongTimeout := time.Duration(ctl.Cfg.PongTimeout) * time.Second
	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Str("module", "adapters.ws").Err(err).
					Str("sid", string(sess.ID)).Msg("readPump read error")
			}
			return
		}
		ctl.handleFrame(sess, c, data)
	}
}

func (ctl *Controller) handleFrame(sess *core.Session, c *wsConn, data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
		ctl.sendError(c, "bad_payload")
		return
	}

	if ctl.Limiter != nil && !ctl.Limiter.Allow(sess.User.ID) {
		ctl.sendError(c, "rate_limited")
		return
	}

	ctl.Router.Route(sess, env.Event, env.Payload)
}

func (ctl *Controller) sendError(c *wsConn, reason string) {
	if f, err := (core.Envelope{Event: "error", Payload: mustJSON(gin.H{"error": reason})}).Encode(); err == nil {
		_ = c.TrySend(f)
	}
}

func bearerToken(c *gin.Context, queryParam string) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tok
		}
	}
	return c.Query(queryParam)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrInvalidRoom):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrMissingToken), errors.Is(err, app.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
