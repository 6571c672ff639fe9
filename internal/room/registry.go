// internal/room/registry.go
package room

import (
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	codeAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength      = 5
	maxCodeAttempts = 64
)

// Hooks are the collaborator functions applied to every room the registry
// creates: per-connection send, action-history recording, and round-end
// notification. Any of them may be nil.
type Hooks struct {
	Send     func(connID uuid.UUID, ev Event)
	Record   func(roomCode string, actor uuid.UUID, action string, fields map[string]interface{})
	RoundEnd func(roomCode string, res Result)
}

// Registry is the injected store mapping room codes to live rooms. Rooms
// are independent; the registry lock guards only the map itself.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	log   *logrus.Logger
	hooks Hooks
}

func NewRegistry(logger *logrus.Logger, hooks Hooks) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		log:   logger,
		hooks: hooks,
	}
}

// Create allocates a room under a fresh shareable code and seats the host.
func (reg *Registry) Create(hostName string, connID uuid.UUID) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, err := reg.newCode()
	if err != nil {
		return nil, err
	}
	r := New(code, hostName, connID)
	reg.applyHooks(r)
	reg.rooms[code] = r

	reg.log.WithFields(logrus.Fields{"room": code, "host": hostName}).Info("room created")
	return r, nil
}

// Join seats a player in an existing room.
func (reg *Registry) Join(code, name string, connID uuid.UUID) (*Room, error) {
	reg.mu.Lock()
	r, ok := reg.rooms[code]
	reg.mu.Unlock()
	if !ok {
		return nil, errf(CodeNotFound, "room %s not found", code)
	}
	if err := r.Join(name, connID); err != nil {
		return nil, err
	}
	reg.log.WithFields(logrus.Fields{"room": code, "player": name}).Info("player joined")
	return r, nil
}

// Get looks up a live room by code.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	return r, ok
}

// Delete removes a room from the registry.
func (reg *Registry) Delete(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.rooms[code]; ok {
		delete(reg.rooms, code)
		reg.log.WithField("room", code).Info("room deleted")
	}
}

// HandleDisconnect routes a dropped connection to its room, deleting the
// room once the last seat empties.
func (reg *Registry) HandleDisconnect(r *Room, connID uuid.UUID) {
	if r.HandleDisconnect(connID) {
		reg.Delete(r.Code)
	}
}

// Len reports the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

func (reg *Registry) applyHooks(r *Room) {
	code := r.Code
	r.SendFn = reg.hooks.Send
	if reg.hooks.Record != nil {
		record := reg.hooks.Record
		r.RecordFn = func(actor uuid.UUID, action string, fields map[string]interface{}) {
			record(code, actor, action, fields)
		}
	}
	r.OnRoundEnd = reg.hooks.RoundEnd
}

// newCode draws 5 uppercase base-36 characters from crypto/rand, retrying
// on the (vanishingly rare) collision with a live room. Assumes reg.mu is
// held.
func (reg *Registry) newCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		buf := make([]byte, codeLength)
		for i := range buf {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
			if err != nil {
				return "", errf(CodeResourceExhausted, "random source unavailable: %v", err)
			}
			buf[i] = codeAlphabet[n.Int64()]
		}
		code := string(buf)
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", errf(CodeResourceExhausted, "room code space exhausted")
}
