// internal/room/powers_test.go
package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabo-gg/kabo/internal/deck"
)

func TestPowerRequiresMatchingRank(t *testing.T) {
	tt := newPlayingTable(t)

	// The default top card is the 9S, which grants an opponent peek only.
	require.NoError(t, tt.room.Draw(tt.alice))
	err := tt.room.PowerSkip(tt.alice)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
	err = tt.room.PowerPeekOwn(tt.alice, 0)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
	assert.NotNil(t, tt.room.ActiveDraw)
	assert.Equal(t, PhaseTurnDecide, tt.room.Phase)
}

func TestPowerPeekOwn(t *testing.T) {
	tt := newPlayingTable(t)
	r := tt.room

	used := bringToTop(t, r, "7")
	require.NoError(t, r.Draw(tt.alice))
	require.NoError(t, r.PowerPeekOwn(tt.alice, 1))

	peeks := tt.rec.ofType(tt.alice, EventPrivatePeek)
	require.Len(t, peeks, 1)
	assert.Equal(t, "2", peeks[0].Card.Rank)
	assert.Equal(t, "S", peeks[0].Card.Suit)
	assert.Equal(t, "alice", peeks[0].Card.Owner)

	require.NotEmpty(t, r.DiscardPile)
	assert.Equal(t, used, r.DiscardPile[len(r.DiscardPile)-1])
	assert.Equal(t, 1, r.TurnIndex)
	assert.Equal(t, PhaseTurnDraw, r.Phase)
	assertCardConservation(t, r)
}

func TestPowerPeekOpponent(t *testing.T) {
	tt := newPlayingTable(t)
	r := tt.room

	require.NoError(t, r.Draw(tt.alice)) // 9S
	require.NoError(t, r.PowerPeekOpponent(tt.alice, 3))

	peeks := tt.rec.ofType(tt.alice, EventPrivatePeek)
	require.Len(t, peeks, 1)
	assert.Equal(t, "8", peeks[0].Card.Rank)
	assert.Equal(t, "bob", peeks[0].Card.Owner)
	assert.Equal(t, 3, peeks[0].Card.Index)
	assert.Empty(t, tt.rec.ofType(tt.bob, EventPrivatePeek))
	assert.Equal(t, 1, r.TurnIndex)
}

func TestPowerSkipAppliedExactlyOnce(t *testing.T) {
	tt := newPlayingTable(t)
	r := tt.room

	bringToTop(t, r, "J")
	require.NoError(t, r.Draw(tt.alice))
	require.NoError(t, r.PowerSkip(tt.alice))

	// Bob is skipped, so alice acts again immediately.
	assert.Equal(t, 0, r.TurnIndex)
	assert.Equal(t, PhaseTurnDraw, r.Phase)
	assert.Equal(t, noSeat, r.SkipNextSeat)

	// The skip does not recur on the following rotation.
	require.NoError(t, r.Draw(tt.alice))
	require.NoError(t, r.DiscardDrawn(tt.alice))
	assert.Equal(t, 1, r.TurnIndex)
}

func TestPowerBlindSwap(t *testing.T) {
	tt := newPlayingTable(t)
	r := tt.room

	used := bringToTop(t, r, "Q")
	require.NoError(t, r.Draw(tt.alice))
	require.NoError(t, r.PowerBlindSwap(tt.alice, 0, 1))

	// Alice's AS and bob's 6S trade places, unseen by either.
	assert.Equal(t, deck.Card{Rank: "6", Suit: "S"}, r.Players[0].Hand[0])
	assert.Equal(t, deck.Card{Rank: "A", Suit: "S"}, r.Players[1].Hand[1])
	assert.Empty(t, tt.rec.ofType(tt.alice, EventPrivatePeek))
	assert.Empty(t, tt.rec.ofType(tt.bob, EventPrivatePeek))
	assert.Equal(t, used, r.DiscardPile[len(r.DiscardPile)-1])
	assert.Equal(t, 1, r.TurnIndex)
	assertCardConservation(t, r)
}

func TestBlindSwapIndexValidation(t *testing.T) {
	tt := newPlayingTable(t)

	bringToTop(t, tt.room, "Q")
	require.NoError(t, tt.room.Draw(tt.alice))
	err := tt.room.PowerBlindSwap(tt.alice, 0, 7)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
	err = tt.room.PowerBlindSwap(tt.alice, -1, 0)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
	assert.NotNil(t, tt.room.ActiveDraw)
}

func TestKingPreviewThenDecline(t *testing.T) {
	tt := newPlayingTable(t)
	r := tt.room

	used := bringToTop(t, r, "K")
	require.NoError(t, r.Draw(tt.alice))
	require.NoError(t, r.KingPreview(tt.alice, 0, 0))

	previews := tt.rec.ofType(tt.alice, EventPrivateKingPreview)
	require.Len(t, previews, 1)
	require.NotNil(t, previews[0].Own)
	require.NotNil(t, previews[0].Opp)
	assert.Equal(t, "A", previews[0].Own.Rank)
	assert.Equal(t, "5", previews[0].Opp.Rank)

	// The preview leaves the King held and the turn open.
	assert.Equal(t, PhaseTurnDecide, r.Phase)
	assert.NotNil(t, r.ActiveDraw)
	assert.NotNil(t, r.pending)

	// No other resolution is allowed while the preview is pending.
	err := r.Swap(tt.alice, 0)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
	err = r.DiscardDrawn(tt.alice)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))

	require.NoError(t, r.KingConfirm(tt.alice, false))
	assert.Equal(t, deck.Card{Rank: "A", Suit: "S"}, r.Players[0].Hand[0])
	assert.Equal(t, deck.Card{Rank: "5", Suit: "S"}, r.Players[1].Hand[0])
	assert.Equal(t, used, r.DiscardPile[len(r.DiscardPile)-1])
	assert.Nil(t, r.pending)
	assert.Equal(t, 1, r.TurnIndex)
	assertCardConservation(t, r)
}

func TestKingPreviewThenConfirm(t *testing.T) {
	tt := newPlayingTable(t)
	r := tt.room

	bringToTop(t, r, "K")
	require.NoError(t, r.Draw(tt.alice))
	require.NoError(t, r.KingPreview(tt.alice, 0, 0))
	require.NoError(t, r.KingConfirm(tt.alice, true))

	assert.Equal(t, deck.Card{Rank: "5", Suit: "S"}, r.Players[0].Hand[0])
	assert.Equal(t, deck.Card{Rank: "A", Suit: "S"}, r.Players[1].Hand[0])
	assert.Equal(t, 1, r.TurnIndex)
	assertCardConservation(t, r)
}

func TestKingConfirmOnlyByPreviewOwner(t *testing.T) {
	tt := newPlayingTable(t)
	r := tt.room

	bringToTop(t, r, "K")
	require.NoError(t, r.Draw(tt.alice))
	require.NoError(t, r.KingPreview(tt.alice, 0, 0))

	err := r.KingConfirm(tt.bob, true)
	assert.Equal(t, CodeUnauthorized, CodeOf(err))
	assert.NotNil(t, r.pending)
}

func TestKingConfirmWithoutPreview(t *testing.T) {
	tt := newPlayingTable(t)

	bringToTop(t, tt.room, "K")
	require.NoError(t, tt.room.Draw(tt.alice))
	err := tt.room.KingConfirm(tt.alice, true)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
}
