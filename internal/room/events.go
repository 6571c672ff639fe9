// internal/room/events.go
package room

import "github.com/kabo-gg/kabo/internal/deck"

// EventType names an outbound room event. State events are broadcast to
// every seat (each seat gets its own projection); private events are
// addressed to exactly one connection and are the only channel through
// which hidden card identities ever leave the server.
type EventType string

const (
	EventState              EventType = "room:state"
	EventPrivateDrawn       EventType = "private:drawn"
	EventPrivatePeek        EventType = "private:peek"
	EventPrivateKingPreview EventType = "private:kingPreview"
)

// CardReveal carries a fully identified card in a private event.
type CardReveal struct {
	Rank  string `json:"rank"`
	Suit  string `json:"suit"`
	Base  int    `json:"base"`
	Score int    `json:"score"`

	// Index is the hand slot the reveal refers to, or -1 for a drawn card.
	Index int `json:"index"`

	// Owner is the display name of the hand's owner, empty for a drawn card.
	Owner string `json:"owner,omitempty"`
}

func reveal(c deck.Card, index int, owner string) *CardReveal {
	return &CardReveal{
		Rank:  c.Rank,
		Suit:  c.Suit,
		Base:  deck.BaseValue(c),
		Score: deck.ScoreValue(c),
		Index: index,
		Owner: owner,
	}
}

// Event is the single outbound envelope for both broadcast and private
// messages.
type Event struct {
	Type  EventType   `json:"type"`
	State *View       `json:"state,omitempty"`
	Card  *CardReveal `json:"card,omitempty"`
	Own   *CardReveal `json:"own,omitempty"`
	Opp   *CardReveal `json:"opp,omitempty"`
}
