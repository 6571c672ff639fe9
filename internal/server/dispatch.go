// internal/server/dispatch.go
package server

import (
	"github.com/kabo-gg/kabo/internal/auth"
	"github.com/kabo-gg/kabo/internal/room"
)

// Op is the closed set of request variants a client may send. Dispatch is
// a single exhaustive switch — there is no open-ended lookup by name.
type Op string

const (
	OpRoomCreate       Op = "room:create"
	OpRoomJoin         Op = "room:join"
	OpRoomResume       Op = "room:resume"
	OpGameStart        Op = "game:start"
	OpGamePeek         Op = "game:peek"
	OpTurnDraw         Op = "turn:draw"
	OpTurnSwap         Op = "turn:swap"
	OpTurnDiscardDrawn Op = "turn:discardDrawn"
	OpTurnCabo         Op = "turn:cabo"
	OpPowerPeekOwn     Op = "power:peekOwn"
	OpPowerPeekOpp     Op = "power:peekOpp"
	OpPowerSkip        Op = "power:skip"
	OpPowerBlindSwap   Op = "power:blindSwap"
	OpKingPreview      Op = "power:kingPreview"
	OpKingConfirm      Op = "power:kingConfirm"
	OpPing             Op = "ping"
)

// Request is the inbound envelope. Which fields matter depends on the op;
// unused fields are ignored.
type Request struct {
	Op       Op     `json:"op"`
	Name     string `json:"name,omitempty"`
	Room     string `json:"room,omitempty"`
	Token    string `json:"token,omitempty"`
	Index    int    `json:"index"`
	OppIndex int    `json:"oppIndex"`
	Confirm  bool   `json:"confirm"`
}

// Ack is the synchronous response every request receives. Room-affecting
// successes additionally trigger a state broadcast; the ack itself only
// reports the outcome (plus seat and token on create/join/resume).
type Ack struct {
	Type  string `json:"type"`
	Op    Op     `json:"op"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
	Room  string `json:"room,omitempty"`
	Seat  *int   `json:"seat,omitempty"`
	Token string `json:"token,omitempty"`
}

func okAck(op Op) Ack {
	return Ack{Type: "ack", Op: op, OK: true}
}

func failAck(op Op, err error) Ack {
	return Ack{Type: "ack", Op: op, OK: false, Error: err.Error(), Code: string(room.CodeOf(err))}
}

func failMsg(op Op, code room.Code, msg string) Ack {
	return Ack{Type: "ack", Op: op, OK: false, Error: msg, Code: string(code)}
}

// dispatch routes one request. Any panic escaping game logic is converted
// into a generic failure ack rather than tearing down the connection or
// the room.
func (s *Server) dispatch(sess *session, req Request) (ack Ack) {
	defer func() {
		if rec := recover(); rec != nil {
			s.Logger.WithField("op", req.Op).Errorf("panic in action handler: %v", rec)
			ack = failMsg(req.Op, room.CodeInvalidArgument, "internal error handling action")
		}
	}()

	switch req.Op {
	case OpRoomCreate:
		return s.handleCreate(sess, req)
	case OpRoomJoin:
		return s.handleJoin(sess, req)
	case OpRoomResume:
		return s.handleResume(sess, req)

	case OpGameStart:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.Start(sess.connID) })
	case OpGamePeek:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.Peek(sess.connID, req.Index) })
	case OpTurnDraw:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.Draw(sess.connID) })
	case OpTurnSwap:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.Swap(sess.connID, req.Index) })
	case OpTurnDiscardDrawn:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.DiscardDrawn(sess.connID) })
	case OpTurnCabo:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.CallCabo(sess.connID) })
	case OpPowerPeekOwn:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.PowerPeekOwn(sess.connID, req.Index) })
	case OpPowerPeekOpp:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.PowerPeekOpponent(sess.connID, req.Index) })
	case OpPowerSkip:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.PowerSkip(sess.connID) })
	case OpPowerBlindSwap:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.PowerBlindSwap(sess.connID, req.Index, req.OppIndex) })
	case OpKingPreview:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.KingPreview(sess.connID, req.Index, req.OppIndex) })
	case OpKingConfirm:
		return s.roomAck(sess, req, func(r *room.Room) error { return r.KingConfirm(sess.connID, req.Confirm) })

	case OpPing:
		// Handled before dispatch; listed so the switch stays exhaustive.
		return okAck(req.Op)
	}
	return failMsg(req.Op, room.CodeInvalidArgument, "unknown op")
}

// roomAck runs a room-scoped action for a seated session.
func (s *Server) roomAck(sess *session, req Request, fn func(*room.Room) error) Ack {
	if sess.room == nil {
		return failMsg(req.Op, room.CodeNotFound, "join a room first")
	}
	if err := fn(sess.room); err != nil {
		return failAck(req.Op, err)
	}
	return okAck(req.Op)
}

func (s *Server) handleCreate(sess *session, req Request) Ack {
	if sess.room != nil {
		return failMsg(req.Op, room.CodeInvalidArgument, "already in a room")
	}
	if req.Name == "" {
		return failMsg(req.Op, room.CodeInvalidArgument, "a display name is required")
	}

	r, err := s.Registry.Create(req.Name, sess.connID)
	if err != nil {
		return failAck(req.Op, err)
	}
	sess.room = r

	// The host is alone, so this "broadcast" is just their own lobby view.
	view := r.ViewFor(sess.connID)
	s.sendJSON(sess.connID, room.Event{Type: room.EventState, State: &view})

	return s.seatedAck(req.Op, r.Code, req.Name, view.YourSeat)
}

func (s *Server) handleJoin(sess *session, req Request) Ack {
	if sess.room != nil {
		return failMsg(req.Op, room.CodeInvalidArgument, "already in a room")
	}
	if req.Name == "" {
		return failMsg(req.Op, room.CodeInvalidArgument, "a display name is required")
	}
	if req.Room == "" {
		return failMsg(req.Op, room.CodeInvalidArgument, "a room code is required")
	}

	r, err := s.Registry.Join(req.Room, req.Name, sess.connID)
	if err != nil {
		return failAck(req.Op, err)
	}
	sess.room = r
	return s.seatedAck(req.Op, r.Code, req.Name, r.ViewFor(sess.connID).YourSeat)
}

// handleResume reclaims a seat using the token minted at create/join time.
// It only works while the room still exists with a free seat — i.e. after
// a disconnect knocked it back to LOBBY.
func (s *Server) handleResume(sess *session, req Request) Ack {
	if sess.room != nil {
		return failMsg(req.Op, room.CodeInvalidArgument, "already in a room")
	}
	if req.Token == "" {
		return failMsg(req.Op, room.CodeInvalidArgument, "a seat token is required")
	}
	claims, err := auth.VerifySeatToken(req.Token)
	if err != nil {
		return failMsg(req.Op, room.CodeUnauthorized, err.Error())
	}

	r, ok := s.Registry.Get(claims.Room)
	if !ok {
		return failMsg(req.Op, room.CodeNotFound, "room "+claims.Room+" no longer exists")
	}
	if err := r.Join(claims.Name, sess.connID); err != nil {
		return failAck(req.Op, err)
	}
	sess.room = r
	return s.seatedAck(req.Op, r.Code, claims.Name, r.ViewFor(sess.connID).YourSeat)
}

// seatedAck mints the seat token and assembles the ack for a successful
// create/join/resume.
func (s *Server) seatedAck(op Op, code, name string, seat int) Ack {
	ack := okAck(op)
	ack.Room = code
	ack.Seat = &seat
	token, err := auth.CreateSeatToken(code, name, seat)
	if err != nil {
		s.Logger.WithError(err).Warn("failed to mint seat token")
	} else {
		ack.Token = token
	}
	return ack
}
