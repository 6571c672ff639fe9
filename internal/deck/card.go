// internal/deck/card.go
package deck

import "fmt"

// Card is an immutable (rank, suit) value. Identity is the pair itself:
// a standard deck contains exactly one card per combination.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// Ranks in ascending base-value order.
var Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Suits: Spades, Hearts, Diamonds, Clubs.
var Suits = []string{"S", "H", "D", "C"}

var baseValues = map[string]int{
	"A": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8,
	"9": 9, "10": 10, "J": 11, "Q": 12, "K": 13,
}

// BaseValue returns the face value of a card: A=1, J=11, Q=12, K=13,
// number ranks count as themselves.
func BaseValue(c Card) int {
	return baseValues[c.Rank]
}

// ScoreValue returns the value a card counts for when held in a hand at
// round end. Identical to BaseValue except the red Kings (hearts,
// diamonds), which score -1. That asymmetry is the core Kabo scoring rule.
func ScoreValue(c Card) int {
	if c.Rank == "K" && (c.Suit == "H" || c.Suit == "D") {
		return -1
	}
	return baseValues[c.Rank]
}

// IsPowerCard reports whether drawing this card grants a one-time special
// ability before it is discarded (ranks 7 through King).
func IsPowerCard(c Card) bool {
	switch c.Rank {
	case "7", "8", "9", "10", "J", "Q", "K":
		return true
	}
	return false
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}
