// internal/deck/deck.go
package deck

import (
	"crypto/rand"
	"math/big"
)

// New returns all 52 cards in suit-major order. The order is irrelevant in
// play since every deck is shuffled before dealing.
func New() []Card {
	cards := make([]Card, 0, len(Suits)*len(Ranks))
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return cards
}

// Shuffle permutes cards in place with a Fisher-Yates walk driven by
// crypto/rand. Shuffle outcomes gate game fairness, so the random source
// must not be predictable by a remote client; a seeded PRNG here would be
// a regression.
func Shuffle(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken,
			// at which point continuing to deal cards is pointless.
			panic("deck: crypto/rand unavailable: " + err.Error())
		}
		j := int(n.Int64())
		cards[i], cards[j] = cards[j], cards[i]
	}
}
