// internal/room/room.go
package room

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kabo-gg/kabo/internal/deck"
)

// Phase is the room's position in its lifecycle. Transitions are driven
// exclusively by validated actions and by advanceTurn.
type Phase int

const (
	PhaseLobby Phase = iota
	PhasePeek
	PhaseTurnDraw
	PhaseTurnDecide
	PhaseLastTurn
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "LOBBY"
	case PhasePeek:
		return "PEEK"
	case PhaseTurnDraw:
		return "TURN_DRAW"
	case PhaseTurnDecide:
		return "TURN_DECIDE"
	case PhaseLastTurn:
		return "LAST_TURN"
	case PhaseEnded:
		return "ENDED"
	}
	return "UNKNOWN"
}

const (
	maxPlayers    = 2
	handSize      = 4
	initialPeeks  = 2
	caboThreshold = 10 // call is legal only while hand score sum < this
	logWindowSize = 16
	noSeat        = -1
)

// Player is one seated participant. ConnID is a non-owning reference to the
// transport-layer identity, used only for routing.
type Player struct {
	ConnID         uuid.UUID
	Name           string
	Hand           []deck.Card
	PeeksRemaining int
}

// pendingSwap tracks the King's preview-then-confirm protocol. At most one
// may exist per room at any time.
type pendingSwap struct {
	Seat     int
	MyIndex  int
	OppIndex int
}

// PlayerScore is one line of the final scoring table.
type PlayerScore struct {
	Name  string      `json:"name"`
	Seat  int         `json:"seat"`
	Score int         `json:"score"`
	Hand  []*ViewCard `json:"hand"`
}

// Result is the final outcome of a round, populated exactly once when it
// ends. Scores are sorted ascending; ties keep seat order, so the first
// listed player wins a tie.
type Result struct {
	WinnerName string        `json:"winnerName"`
	WinnerSeat int           `json:"winnerSeat"`
	Scores     []PlayerScore `json:"scores"`
}

// Room is the root aggregate for one 2-player match. It owns all players,
// both piles, and the transient per-turn state. Exported methods lock Mu;
// unexported helpers assume the lock is held. That mutex is the
// single-logical-thread-per-room discipline: one action runs to completion
// before the next is admitted.
type Room struct {
	Code string

	Mu sync.Mutex

	Phase       Phase
	Players     []*Player // seat order; seat 0 is host
	DrawPile    []deck.Card
	DiscardPile []deck.Card

	TurnIndex  int
	ActiveDraw *deck.Card // held by the acting player, visible only to them

	CaboCallerSeat int // seat that called the end condition, or noSeat
	LastTurnSeat   int // seat granted the single remaining turn, or noSeat
	SkipNextSeat   int // seat to skip once at its next turn start, or noSeat

	pending *pendingSwap

	Log   []string
	Ended *Result

	// ShuffleFn permutes a pile in place. Defaults to the crypto shuffle;
	// tests inject a deterministic one.
	ShuffleFn func([]deck.Card)

	// SendFn delivers an event to a single connection. Nil disables output.
	SendFn func(connID uuid.UUID, ev Event)

	// RecordFn receives an action-history record for every successful
	// state-changing action. Nil disables history.
	RecordFn func(actor uuid.UUID, action string, fields map[string]interface{})

	// OnRoundEnd is invoked once when the round reaches ENDED.
	OnRoundEnd func(code string, res Result)
}

// New creates a room in LOBBY with the host seated at seat 0.
func New(code, hostName string, hostConn uuid.UUID) *Room {
	r := &Room{
		Code:           code,
		Phase:          PhaseLobby,
		CaboCallerSeat: noSeat,
		LastTurnSeat:   noSeat,
		SkipNextSeat:   noSeat,
		ShuffleFn:      deck.Shuffle,
	}
	r.Players = append(r.Players, &Player{ConnID: hostConn, Name: hostName})
	return r
}

// Join seats a second player. Fails once both seats are taken.
func (r *Room) Join(name string, connID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if len(r.Players) >= maxPlayers {
		return errf(CodeResourceExhausted, "room %s is full", r.Code)
	}
	r.Players = append(r.Players, &Player{ConnID: connID, Name: name})
	r.logf("%s joined the room", name)
	r.record(connID, "room:join", map[string]interface{}{"name": name})
	r.broadcastState()
	return nil
}

// Start deals a fresh round. Host only, exactly two seats required. Also
// reinitializes an ENDED room into a new round.
func (r *Room) Start(connID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat := r.seatOf(connID)
	if seat == noSeat {
		return errf(CodeNotFound, "you are not seated in room %s", r.Code)
	}
	if seat != 0 {
		return errf(CodeUnauthorized, "only the host can start the game")
	}
	if r.Phase != PhaseLobby && r.Phase != PhaseEnded {
		return errf(CodeInvalidPhase, "cannot start while the round is in progress")
	}
	if len(r.Players) != maxPlayers {
		return errf(CodeInvalidArgument, "need %d players to start, have %d", maxPlayers, len(r.Players))
	}

	r.deal()
	r.logf("%s started the game", r.Players[seat].Name)
	r.record(connID, "game:start", nil)
	r.broadcastState()
	return nil
}

// deal shuffles the full deck, gives each player 4 face-down cards, and
// leaves the rest as the draw pile. The discard pile starts empty, so the
// 52-card partition invariant holds from the first moment of the round.
// Assumes lock is held.
func (r *Room) deal() {
	cards := deck.New()
	r.ShuffleFn(cards)

	for _, p := range r.Players {
		p.Hand = append([]deck.Card(nil), cards[:handSize]...)
		cards = cards[handSize:]
		p.PeeksRemaining = initialPeeks
	}
	r.DrawPile = cards
	r.DiscardPile = nil

	r.Phase = PhasePeek
	r.TurnIndex = 0
	r.ActiveDraw = nil
	r.CaboCallerSeat = noSeat
	r.LastTurnSeat = noSeat
	r.SkipNextSeat = noSeat
	r.pending = nil
	r.Ended = nil
}

// advanceTurn runs after every turn-ending action. It ends the round the
// instant control would return to the cabo caller; otherwise it rotates,
// applies a pending skip exactly once, and resets the phase for the next
// draw. Assumes lock is held.
func (r *Room) advanceTurn() {
	r.ActiveDraw = nil
	r.pending = nil

	next := (r.TurnIndex + 1) % len(r.Players)
	if r.CaboCallerSeat != noSeat && next == r.CaboCallerSeat {
		r.endRound()
		return
	}

	if r.SkipNextSeat == next {
		r.logf("%s is skipped this turn", r.Players[next].Name)
		r.SkipNextSeat = noSeat
		next = (next + 1) % len(r.Players)
		if r.CaboCallerSeat != noSeat && next == r.CaboCallerSeat {
			r.endRound()
			return
		}
	}

	r.TurnIndex = next
	r.Phase = PhaseTurnDraw
}

// endRound scores both hands and freezes the room in ENDED. Lowest total
// wins; the stable sort keeps seat order on ties, so the first-listed
// player wins a tie. Assumes lock is held.
func (r *Room) endRound() {
	scores := make([]PlayerScore, 0, len(r.Players))
	for seat, p := range r.Players {
		total := 0
		hand := make([]*ViewCard, 0, len(p.Hand))
		for _, c := range p.Hand {
			total += deck.ScoreValue(c)
			hand = append(hand, viewCard(c))
		}
		scores = append(scores, PlayerScore{Name: p.Name, Seat: seat, Score: total, Hand: hand})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score < scores[j].Score })

	r.Ended = &Result{
		WinnerName: scores[0].Name,
		WinnerSeat: scores[0].Seat,
		Scores:     scores,
	}
	r.Phase = PhaseEnded
	r.logf("round over: %s wins with %d", r.Ended.WinnerName, scores[0].Score)

	if r.OnRoundEnd != nil {
		// Archive/broadcast hooks must not block the room.
		go r.OnRoundEnd(r.Code, *r.Ended)
	}
}

// HandleDisconnect removes the connection's seat. It reports whether the
// room is now empty (and should be deleted by the registry). With one
// player remaining, the room reverts to LOBBY with cleared piles and
// hands; the survivor keeps a seat and becomes host.
func (r *Room) HandleDisconnect(connID uuid.UUID) (empty bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat := r.seatOf(connID)
	if seat == noSeat {
		return len(r.Players) == 0
	}
	name := r.Players[seat].Name
	r.Players = append(r.Players[:seat], r.Players[seat+1:]...)
	if len(r.Players) == 0 {
		return true
	}

	r.resetToLobby()
	r.logf("%s left; room reset to lobby", name)
	r.record(connID, "room:leave", map[string]interface{}{"name": name})
	r.broadcastState()
	return false
}

// resetToLobby clears all round state but keeps the remaining seats and the
// event log. Assumes lock is held.
func (r *Room) resetToLobby() {
	r.Phase = PhaseLobby
	r.DrawPile = nil
	r.DiscardPile = nil
	r.TurnIndex = 0
	r.ActiveDraw = nil
	r.CaboCallerSeat = noSeat
	r.LastTurnSeat = noSeat
	r.SkipNextSeat = noSeat
	r.pending = nil
	r.Ended = nil
	for _, p := range r.Players {
		p.Hand = nil
		p.PeeksRemaining = 0
	}
}

// seatOf maps a connection identity to its seat, or noSeat. Assumes lock is
// held.
func (r *Room) seatOf(connID uuid.UUID) int {
	for i, p := range r.Players {
		if p.ConnID == connID {
			return i
		}
	}
	return noSeat
}

// opponentOf is only meaningful once two players are seated.
func opponentOf(seat int) int {
	return 1 - seat
}

// handScore sums the end-of-round score values of a hand. Assumes lock is
// held.
func handScore(p *Player) int {
	total := 0
	for _, c := range p.Hand {
		total += deck.ScoreValue(c)
	}
	return total
}

// drawFromPile pops the top of the draw pile, reshuffling the discard pile
// into a fresh draw pile first if needed. Fails with ResourceExhausted only
// when both piles are empty, which cannot occur under correct gameplay.
// Assumes lock is held.
func (r *Room) drawFromPile() (deck.Card, *Error) {
	if len(r.DrawPile) == 0 {
		if len(r.DiscardPile) == 0 {
			return deck.Card{}, errf(CodeResourceExhausted, "no cards left to draw")
		}
		r.DrawPile = append(r.DrawPile, r.DiscardPile...)
		r.DiscardPile = nil
		r.ShuffleFn(r.DrawPile)
		r.logf("draw pile empty; reshuffled %d cards from the center pile", len(r.DrawPile))
	}
	card := r.DrawPile[0]
	r.DrawPile = r.DrawPile[1:]
	return card, nil
}

// consumeActiveDraw moves the held card onto the discard pile, where it
// becomes the visible top, and returns it. Assumes lock is held and a card
// is held.
func (r *Room) consumeActiveDraw() deck.Card {
	card := *r.ActiveDraw
	r.DiscardPile = append(r.DiscardPile, card)
	r.ActiveDraw = nil
	return card
}

// logf appends to the bounded, most-recent-relevant event log. Assumes lock
// is held.
func (r *Room) logf(format string, args ...interface{}) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
	if len(r.Log) > logWindowSize {
		r.Log = r.Log[len(r.Log)-logWindowSize:]
	}
}

// record forwards an action-history record if a sink is wired. Assumes lock
// is held.
func (r *Room) record(actor uuid.UUID, action string, fields map[string]interface{}) {
	if r.RecordFn != nil {
		r.RecordFn(actor, action, fields)
	}
}

// sendTo delivers a private event to one connection. Assumes lock is held.
func (r *Room) sendTo(connID uuid.UUID, ev Event) {
	if r.SendFn != nil {
		r.SendFn(connID, ev)
	}
}

// broadcastState sends each seat its own projection of the room. Assumes
// lock is held.
func (r *Room) broadcastState() {
	if r.SendFn == nil {
		return
	}
	for seat, p := range r.Players {
		view := r.viewFor(seat)
		r.SendFn(p.ConnID, Event{Type: EventState, State: &view})
	}
}
