// internal/room/actions.go
package room

import (
	"github.com/google/uuid"
)

// Every handler in this file shares the same contract: validate first, then
// mutate, then broadcast. A validation failure returns a coded error and
// leaves the room untouched.

// Peek consumes one of the player's allotted PEEK-phase peeks and reveals
// the named hand card privately to them. Once both players have spent their
// peeks the room auto-advances to TURN_DRAW.
func (r *Room) Peek(connID uuid.UUID, index int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat := r.seatOf(connID)
	if seat == noSeat {
		return errf(CodeNotFound, "you are not seated in room %s", r.Code)
	}
	if r.Phase != PhasePeek {
		return errf(CodeInvalidPhase, "peeking is only allowed during the peek phase")
	}
	p := r.Players[seat]
	if index < 0 || index >= len(p.Hand) {
		return errf(CodeInvalidArgument, "hand index %d out of range", index)
	}
	if p.PeeksRemaining <= 0 {
		return errf(CodeResourceExhausted, "no peeks left")
	}

	p.PeeksRemaining--
	r.sendTo(connID, Event{Type: EventPrivatePeek, Card: reveal(p.Hand[index], index, p.Name)})
	r.logf("%s peeked at one of their cards", p.Name)
	r.record(connID, "game:peek", map[string]interface{}{"index": index})

	if r.peeksExhausted() {
		r.Phase = PhaseTurnDraw
		r.TurnIndex = 0
		r.logf("peek phase over; %s to act", r.Players[0].Name)
	}
	r.broadcastState()
	return nil
}

func (r *Room) peeksExhausted() bool {
	for _, p := range r.Players {
		if p.PeeksRemaining > 0 {
			return false
		}
	}
	return true
}

// Draw moves the top of the draw pile into the acting player's held card
// and flips the phase to TURN_DECIDE. The card is revealed only to the
// acting player via a private event. A second draw while a card is already
// held fails without touching the piles.
func (r *Room) Draw(connID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat := r.seatOf(connID)
	if seat == noSeat {
		return errf(CodeNotFound, "you are not seated in room %s", r.Code)
	}
	if r.Phase != PhaseTurnDraw && r.Phase != PhaseLastTurn {
		return errf(CodeInvalidPhase, "cannot draw during %s", r.Phase)
	}
	if seat != r.TurnIndex {
		return errf(CodeUnauthorized, "it is not your turn")
	}
	if r.ActiveDraw != nil {
		return errf(CodeInvalidArgument, "you already hold a drawn card")
	}

	card, derr := r.drawFromPile()
	if derr != nil {
		return derr
	}
	r.ActiveDraw = &card
	r.Phase = PhaseTurnDecide

	p := r.Players[seat]
	r.sendTo(connID, Event{Type: EventPrivateDrawn, Card: reveal(card, -1, "")})
	r.logf("%s drew a card", p.Name)
	r.record(connID, "turn:draw", nil)
	r.broadcastState()
	return nil
}

// Swap replaces one of the acting player's hand slots with the held card;
// the displaced card becomes the public discard top. Ends the turn.
func (r *Room) Swap(connID uuid.UUID, index int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat, err := r.decidePrelude(connID)
	if err != nil {
		return err
	}
	p := r.Players[seat]
	if index < 0 || index >= len(p.Hand) {
		return errf(CodeInvalidArgument, "hand index %d out of range", index)
	}

	displaced := p.Hand[index]
	p.Hand[index] = *r.ActiveDraw
	r.DiscardPile = append(r.DiscardPile, displaced)
	r.ActiveDraw = nil

	r.logf("%s swapped a card, discarding %s", p.Name, displaced)
	r.record(connID, "turn:swap", map[string]interface{}{"index": index, "discarded": displaced.String()})
	r.advanceTurn()
	r.broadcastState()
	return nil
}

// DiscardDrawn places the held card directly on the discard pile without it
// entering any hand. Ends the turn.
func (r *Room) DiscardDrawn(connID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat, err := r.decidePrelude(connID)
	if err != nil {
		return err
	}

	card := *r.ActiveDraw
	r.DiscardPile = append(r.DiscardPile, card)
	r.ActiveDraw = nil

	r.logf("%s discarded %s", r.Players[seat].Name, card)
	r.record(connID, "turn:discardDrawn", map[string]interface{}{"discarded": card.String()})
	r.advanceTurn()
	r.broadcastState()
	return nil
}

// CallCabo declares the end condition. Legal only at the top of the
// caller's turn, before drawing, and only while their hand scores strictly
// under the threshold. The opponent is granted the last turn immediately.
func (r *Room) CallCabo(connID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat := r.seatOf(connID)
	if seat == noSeat {
		return errf(CodeNotFound, "you are not seated in room %s", r.Code)
	}
	if r.Phase != PhaseTurnDraw {
		return errf(CodeInvalidPhase, "cabo must be called at the start of your turn, before drawing")
	}
	if seat != r.TurnIndex {
		return errf(CodeUnauthorized, "it is not your turn")
	}
	p := r.Players[seat]
	if score := handScore(p); score >= caboThreshold {
		return errf(CodeInvalidArgument, "hand scores %d; cabo requires less than %d", score, caboThreshold)
	}

	opp := opponentOf(seat)
	r.CaboCallerSeat = seat
	r.LastTurnSeat = opp
	r.TurnIndex = opp
	r.Phase = PhaseLastTurn

	r.logf("%s called cabo! %s gets one last turn", p.Name, r.Players[opp].Name)
	r.record(connID, "turn:cabo", nil)
	r.broadcastState()
	return nil
}

// decidePrelude is the shared validation for actions that resolve a held
// card: correct seat, TURN_DECIDE phase, turn ownership, a card actually
// held, and no pending multi-step action in flight. Assumes lock is held.
func (r *Room) decidePrelude(connID uuid.UUID) (int, error) {
	seat := r.seatOf(connID)
	if seat == noSeat {
		return noSeat, errf(CodeNotFound, "you are not seated in room %s", r.Code)
	}
	if r.Phase != PhaseTurnDecide {
		return noSeat, errf(CodeInvalidPhase, "no drawn card to resolve during %s", r.Phase)
	}
	if seat != r.TurnIndex {
		return noSeat, errf(CodeUnauthorized, "it is not your turn")
	}
	if r.ActiveDraw == nil {
		return noSeat, errf(CodeInvalidArgument, "no card is currently held")
	}
	if r.pending != nil {
		return noSeat, errf(CodeInvalidArgument, "resolve the pending king preview first")
	}
	return seat, nil
}
