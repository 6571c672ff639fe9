// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kabo-gg/kabo/internal/archive"
	"github.com/kabo-gg/kabo/internal/history"
	"github.com/kabo-gg/kabo/internal/room"
)

const writeTimeout = 3 * time.Second

// Server owns the connection table and wires the room registry to its
// collaborators: per-connection send, the Redis action history, and the
// Postgres round archive. Rooms call back into it through the registry
// hooks and never touch a socket directly.
type Server struct {
	Logger   *logrus.Logger
	Registry *room.Registry
	History  *history.Publisher
	Archive  *archive.Store

	mu    sync.Mutex
	conns map[uuid.UUID]*websocket.Conn
}

// New builds a server and its registry. History and archive may be nil.
func New(logger *logrus.Logger, hist *history.Publisher, arch *archive.Store) *Server {
	s := &Server{
		Logger:  logger,
		History: hist,
		Archive: arch,
		conns:   make(map[uuid.UUID]*websocket.Conn),
	}
	s.Registry = room.NewRegistry(logger, room.Hooks{
		Send:     s.sendEvent,
		Record:   s.recordAction,
		RoundEnd: s.archiveRound,
	})
	return s
}

func (s *Server) registerConn(id uuid.UUID, c *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[id] = c
}

func (s *Server) unregisterConn(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
}

// sendEvent satisfies the registry's Send hook. It is called while the
// room lock is held, so it must not block: the actual write happens on a
// goroutine with its own timeout.
func (s *Server) sendEvent(connID uuid.UUID, ev room.Event) {
	s.sendJSON(connID, ev)
}

func (s *Server) sendJSON(connID uuid.UUID, v interface{}) {
	s.mu.Lock()
	c, ok := s.conns[connID]
	s.mu.Unlock()
	if !ok {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.Logger.WithError(err).Error("failed to marshal outbound message")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := c.Write(ctx, websocket.MessageText, data); err != nil {
			s.Logger.WithError(err).WithField("conn", connID).Debug("failed to write to connection")
		}
	}()
}

// recordAction satisfies the registry's Record hook; history is
// best-effort and must never block the room, so it also runs detached.
func (s *Server) recordAction(roomCode string, actor uuid.UUID, action string, fields map[string]interface{}) {
	if s.History == nil {
		return
	}
	rec := history.ActionRecord{
		RoomCode:  roomCode,
		ActorConn: actor,
		Action:    action,
		Fields:    fields,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		s.History.Record(ctx, rec)
	}()
}

// archiveRound satisfies the registry's RoundEnd hook. The room already
// invokes it on its own goroutine.
func (s *Server) archiveRound(roomCode string, res room.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Archive.SaveResult(ctx, roomCode, res)
}
