// internal/server/ws.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kabo-gg/kabo/internal/room"
)

// session is the per-connection state: the transport identity and, once a
// create/join/resume succeeds, the room the connection is seated in. It is
// only ever touched by the connection's own read loop.
type session struct {
	connID uuid.UUID
	room   *room.Room
}

// WSHandler upgrades the connection, registers it in the connection table,
// and runs the read loop. On exit — error, closure, or context
// cancellation — the connection's seat is released, which resets or
// deletes its room.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"kabo"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			s.Logger.WithError(err).Warn("websocket accept failed")
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal error")

		if c.Subprotocol() != "kabo" {
			c.Close(websocket.StatusPolicyViolation, "client must use the 'kabo' subprotocol")
			return
		}

		sess := &session{connID: uuid.New()}
		s.registerConn(sess.connID, c)
		s.Logger.WithFields(logrus.Fields{
			"conn":   sess.connID,
			"remote": r.RemoteAddr,
		}).Info("websocket connected")

		s.readMessages(r.Context(), c, sess)

		s.unregisterConn(sess.connID)
		if sess.room != nil {
			s.Registry.HandleDisconnect(sess.room, sess.connID)
			sess.room = nil
		}
		s.Logger.WithField("conn", sess.connID).Info("websocket disconnected")
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readMessages processes requests one at a time: each inbound action runs
// to completion (validate, mutate, broadcast) before the next read, which
// is the single-logical-thread-per-room discipline at the transport edge.
func (s *Server) readMessages(ctx context.Context, c *websocket.Conn, sess *session) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			switch {
			case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
			case strings.Contains(err.Error(), "context canceled"):
			default:
				s.Logger.WithError(err).WithField("conn", sess.connID).Debug("websocket read error")
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			s.sendJSON(sess.connID, failMsg("", room.CodeInvalidArgument, "invalid JSON"))
			continue
		}

		if req.Op == OpPing {
			s.sendJSON(sess.connID, map[string]string{"type": "pong"})
			continue
		}

		ack := s.dispatch(sess, req)
		s.sendJSON(sess.connID, ack)
	}
}
