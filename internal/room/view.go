// internal/room/view.go
package room

import (
	"github.com/google/uuid"

	"github.com/kabo-gg/kabo/internal/deck"
)

// ViewCard is a fully visible card in a projection: the discard top, or any
// hand card once the round has ended.
type ViewCard struct {
	Rank  string `json:"rank"`
	Suit  string `json:"suit"`
	Base  int    `json:"base"`
	Score int    `json:"score"`
}

func viewCard(c deck.Card) *ViewCard {
	return &ViewCard{Rank: c.Rank, Suit: c.Suit, Base: deck.BaseValue(c), Score: deck.ScoreValue(c)}
}

// ViewPlayer is one seat as every viewer may see it. Hand slots are null
// placeholders until the round ends; card knowledge travels only through
// private reveal events. Kabo is a memory game, so even the viewer's own
// slots stay hidden here.
type ViewPlayer struct {
	Name           string      `json:"name"`
	Seat           int         `json:"seat"`
	HandSize       int         `json:"handSize"`
	Hand           []*ViewCard `json:"hand"`
	PeeksRemaining int         `json:"peeksRemaining"`
	You            bool        `json:"you"`
}

// View is the redacted projection of a room for one viewer. It must never
// contain another player's hidden card, the acting player's held card, or
// anyone's peek results.
type View struct {
	Room           string       `json:"room"`
	Phase          string       `json:"phase"`
	TurnSeat       int          `json:"turnSeat"`
	YourSeat       int          `json:"yourSeat"`
	DrawCount      int          `json:"drawCount"`
	DiscardTop     *ViewCard    `json:"discardTop,omitempty"`
	Players        []ViewPlayer `json:"players"`
	CaboCallerSeat int          `json:"caboCallerSeat"`
	HoldingDraw    bool         `json:"holdingDraw"` // you hold an unresolved drawn card
	Log            []string     `json:"log"`
	Ended          *Result      `json:"ended,omitempty"`
}

// ViewFor builds the projection for the given connection. An unknown
// viewer gets YourSeat = -1; the transport layer never routes one in
// practice.
func (r *Room) ViewFor(connID uuid.UUID) View {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.viewFor(r.seatOf(connID))
}

// viewFor assumes lock is held.
func (r *Room) viewFor(seat int) View {
	v := View{
		Room:           r.Code,
		Phase:          r.Phase.String(),
		TurnSeat:       r.TurnIndex,
		YourSeat:       seat,
		DrawCount:      len(r.DrawPile),
		CaboCallerSeat: r.CaboCallerSeat,
		HoldingDraw:    seat == r.TurnIndex && r.ActiveDraw != nil,
		Log:            append([]string(nil), r.Log...),
		Ended:          r.Ended,
	}
	if n := len(r.DiscardPile); n > 0 {
		v.DiscardTop = viewCard(r.DiscardPile[n-1])
	}
	for i, p := range r.Players {
		vp := ViewPlayer{
			Name:           p.Name,
			Seat:           i,
			HandSize:       len(p.Hand),
			Hand:           make([]*ViewCard, len(p.Hand)),
			PeeksRemaining: p.PeeksRemaining,
			You:            i == seat,
		}
		if r.Phase == PhaseEnded {
			for j, c := range p.Hand {
				vp.Hand[j] = viewCard(c)
			}
		}
		v.Players = append(v.Players, vp)
	}
	return v
}
