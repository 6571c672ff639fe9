// internal/room/powers.go
package room

import (
	"github.com/google/uuid"
)

// Special powers trigger only from a freshly drawn card still held as the
// active draw. Resolving a power consumes that card onto the discard pile
// (it always becomes the visible top, never buried) and ends the turn —
// except the King's preview step, which leaves the turn open until the
// confirm step lands.

// PowerPeekOwn (ranks 7, 8) reveals one of the acting player's own hand
// cards privately to themself.
func (r *Room) PowerPeekOwn(connID uuid.UUID, index int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat, err := r.powerPrelude(connID, "7", "8")
	if err != nil {
		return err
	}
	p := r.Players[seat]
	if index < 0 || index >= len(p.Hand) {
		return errf(CodeInvalidArgument, "hand index %d out of range", index)
	}

	r.sendTo(connID, Event{Type: EventPrivatePeek, Card: reveal(p.Hand[index], index, p.Name)})
	used := r.consumeActiveDraw()
	r.logf("%s used %s to peek at one of their own cards", p.Name, used)
	r.record(connID, "power:peekOwn", map[string]interface{}{"index": index, "used": used.String()})
	r.advanceTurn()
	r.broadcastState()
	return nil
}

// PowerPeekOpponent (ranks 9, 10) reveals one of the opponent's hand cards
// privately to the acting player.
func (r *Room) PowerPeekOpponent(connID uuid.UUID, index int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat, err := r.powerPrelude(connID, "9", "10")
	if err != nil {
		return err
	}
	opp := r.Players[opponentOf(seat)]
	if index < 0 || index >= len(opp.Hand) {
		return errf(CodeInvalidArgument, "opponent hand index %d out of range", index)
	}

	r.sendTo(connID, Event{Type: EventPrivatePeek, Card: reveal(opp.Hand[index], index, opp.Name)})
	used := r.consumeActiveDraw()
	r.logf("%s used %s to peek at one of %s's cards", r.Players[seat].Name, used, opp.Name)
	r.record(connID, "power:peekOpp", map[string]interface{}{"index": index, "used": used.String()})
	r.advanceTurn()
	r.broadcastState()
	return nil
}

// PowerSkip (rank J) marks the opponent to be skipped at their next turn
// start. The skip is applied exactly once by advanceTurn and never
// compounds.
func (r *Room) PowerSkip(connID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat, err := r.powerPrelude(connID, "J")
	if err != nil {
		return err
	}
	opp := opponentOf(seat)
	r.SkipNextSeat = opp

	used := r.consumeActiveDraw()
	r.logf("%s played %s: %s will be skipped", r.Players[seat].Name, used, r.Players[opp].Name)
	r.record(connID, "power:skip", map[string]interface{}{"used": used.String()})
	r.advanceTurn()
	r.broadcastState()
	return nil
}

// PowerBlindSwap (rank Q) exchanges one of the acting player's cards with
// one of the opponent's without revealing either to anyone.
func (r *Room) PowerBlindSwap(connID uuid.UUID, myIndex, oppIndex int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat, err := r.powerPrelude(connID, "Q")
	if err != nil {
		return err
	}
	if err := r.validateSwapIndices(seat, myIndex, oppIndex); err != nil {
		return err
	}

	r.swapAcrossHands(seat, myIndex, oppIndex)
	used := r.consumeActiveDraw()
	r.logf("%s played %s for a blind swap", r.Players[seat].Name, used)
	r.record(connID, "power:blindSwap", map[string]interface{}{"myIndex": myIndex, "oppIndex": oppIndex, "used": used.String()})
	r.advanceTurn()
	r.broadcastState()
	return nil
}

// KingPreview (rank K, step one) reveals both candidate cards privately to
// the acting player and opens the single pending confirmation slot. The
// drawn King stays held until the confirm step.
func (r *Room) KingPreview(connID uuid.UUID, myIndex, oppIndex int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat, err := r.powerPrelude(connID, "K")
	if err != nil {
		return err
	}
	if err := r.validateSwapIndices(seat, myIndex, oppIndex); err != nil {
		return err
	}

	p := r.Players[seat]
	opp := r.Players[opponentOf(seat)]
	r.pending = &pendingSwap{Seat: seat, MyIndex: myIndex, OppIndex: oppIndex}

	r.sendTo(connID, Event{
		Type: EventPrivateKingPreview,
		Own:  reveal(p.Hand[myIndex], myIndex, p.Name),
		Opp:  reveal(opp.Hand[oppIndex], oppIndex, opp.Name),
	})
	r.logf("%s is weighing a king swap", p.Name)
	r.record(connID, "power:kingPreview", map[string]interface{}{"myIndex": myIndex, "oppIndex": oppIndex})
	r.broadcastState()
	return nil
}

// KingConfirm (rank K, step two) either performs the previewed swap or
// cancels it. Either way the drawn King is consumed and the turn ends.
// Only the player who opened the preview may confirm it.
func (r *Room) KingConfirm(connID uuid.UUID, confirm bool) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat := r.seatOf(connID)
	if seat == noSeat {
		return errf(CodeNotFound, "you are not seated in room %s", r.Code)
	}
	if r.Phase != PhaseTurnDecide {
		return errf(CodeInvalidPhase, "no king preview to confirm during %s", r.Phase)
	}
	if r.pending == nil {
		return errf(CodeInvalidArgument, "no king preview is pending")
	}
	if r.pending.Seat != seat {
		return errf(CodeUnauthorized, "only the player who opened the preview may confirm it")
	}

	p := r.Players[seat]
	if confirm {
		r.swapAcrossHands(seat, r.pending.MyIndex, r.pending.OppIndex)
	}
	r.pending = nil
	used := r.consumeActiveDraw()
	if confirm {
		r.logf("%s completed the king swap with %s", p.Name, used)
	} else {
		r.logf("%s declined the king swap, discarding %s", p.Name, used)
	}
	r.record(connID, "power:kingConfirm", map[string]interface{}{"confirm": confirm, "used": used.String()})
	r.advanceTurn()
	r.broadcastState()
	return nil
}

// powerPrelude extends decidePrelude with a rank check on the held card.
// Assumes lock is held.
func (r *Room) powerPrelude(connID uuid.UUID, ranks ...string) (int, error) {
	seat, err := r.decidePrelude(connID)
	if err != nil {
		return noSeat, err
	}
	for _, rank := range ranks {
		if r.ActiveDraw.Rank == rank {
			return seat, nil
		}
	}
	return noSeat, errf(CodeInvalidArgument, "held card %s does not grant this power", r.ActiveDraw)
}

// validateSwapIndices bounds-checks both sides of a cross-hand swap.
// Assumes lock is held.
func (r *Room) validateSwapIndices(seat, myIndex, oppIndex int) error {
	if myIndex < 0 || myIndex >= len(r.Players[seat].Hand) {
		return errf(CodeInvalidArgument, "hand index %d out of range", myIndex)
	}
	opp := r.Players[opponentOf(seat)]
	if oppIndex < 0 || oppIndex >= len(opp.Hand) {
		return errf(CodeInvalidArgument, "opponent hand index %d out of range", oppIndex)
	}
	return nil
}

// swapAcrossHands exchanges the two named slots. Assumes lock is held and
// indices validated.
func (r *Room) swapAcrossHands(seat, myIndex, oppIndex int) {
	mine := r.Players[seat]
	theirs := r.Players[opponentOf(seat)]
	mine.Hand[myIndex], theirs.Hand[oppIndex] = theirs.Hand[oppIndex], mine.Hand[myIndex]
}
