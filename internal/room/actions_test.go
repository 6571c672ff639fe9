// internal/room/actions_test.go
package room

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabo-gg/kabo/internal/deck"
)

func TestPeekRevealsPrivately(t *testing.T) {
	tt := newDealtTable(t)

	require.NoError(t, tt.room.Peek(tt.alice, 0))

	peeks := tt.rec.ofType(tt.alice, EventPrivatePeek)
	require.Len(t, peeks, 1)
	require.NotNil(t, peeks[0].Card)
	assert.Equal(t, "A", peeks[0].Card.Rank)
	assert.Equal(t, "S", peeks[0].Card.Suit)
	assert.Equal(t, 0, peeks[0].Card.Index)
	assert.Equal(t, "alice", peeks[0].Card.Owner)

	// Bob must not learn anything from alice's peek.
	assert.Empty(t, tt.rec.ofType(tt.bob, EventPrivatePeek))
	assert.Equal(t, 1, tt.room.Players[0].PeeksRemaining)
}

func TestPeekBudgetExhausted(t *testing.T) {
	tt := newDealtTable(t)

	require.NoError(t, tt.room.Peek(tt.alice, 0))
	require.NoError(t, tt.room.Peek(tt.alice, 1))
	err := tt.room.Peek(tt.alice, 2)
	assert.Equal(t, CodeResourceExhausted, CodeOf(err))
}

func TestPeekPhaseOnly(t *testing.T) {
	tt := newLobbyTable(t)
	err := tt.room.Peek(tt.alice, 0)
	assert.Equal(t, CodeInvalidPhase, CodeOf(err))
}

func TestPeekAutoAdvance(t *testing.T) {
	tt := newDealtTable(t)

	require.NoError(t, tt.room.Peek(tt.alice, 0))
	require.NoError(t, tt.room.Peek(tt.alice, 1))
	assert.Equal(t, PhasePeek, tt.room.Phase)

	require.NoError(t, tt.room.Peek(tt.bob, 2))
	require.NoError(t, tt.room.Peek(tt.bob, 3))
	assert.Equal(t, PhaseTurnDraw, tt.room.Phase)
	assert.Equal(t, 0, tt.room.TurnIndex)
}

func TestDrawRevealsOnlyToActor(t *testing.T) {
	tt := newPlayingTable(t)

	require.NoError(t, tt.room.Draw(tt.alice))
	assert.Equal(t, PhaseTurnDecide, tt.room.Phase)
	require.NotNil(t, tt.room.ActiveDraw)
	assert.Equal(t, deck.Card{Rank: "9", Suit: "S"}, *tt.room.ActiveDraw)
	assert.Len(t, tt.room.DrawPile, 43)

	drawn := tt.rec.ofType(tt.alice, EventPrivateDrawn)
	require.Len(t, drawn, 1)
	assert.Equal(t, "9", drawn[0].Card.Rank)
	assert.Equal(t, -1, drawn[0].Card.Index)
	assert.Empty(t, tt.rec.ofType(tt.bob, EventPrivateDrawn))
	assertCardConservation(t, tt.room)
}

func TestSecondDrawRejectedWithoutTouchingPiles(t *testing.T) {
	tt := newPlayingTable(t)

	require.NoError(t, tt.room.Draw(tt.alice))
	held := *tt.room.ActiveDraw

	err := tt.room.Draw(tt.alice)
	assert.Equal(t, CodeInvalidPhase, CodeOf(err))
	assert.Len(t, tt.room.DrawPile, 43)
	assert.Equal(t, held, *tt.room.ActiveDraw)
}

func TestDrawOutOfTurn(t *testing.T) {
	tt := newPlayingTable(t)
	err := tt.room.Draw(tt.bob)
	assert.Equal(t, CodeUnauthorized, CodeOf(err))

	err = tt.room.Draw(uuid.New())
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestSwapDisplacesToDiscardTop(t *testing.T) {
	tt := newPlayingTable(t)
	r := tt.room

	require.NoError(t, r.Draw(tt.alice))
	require.NoError(t, r.Swap(tt.alice, 2))

	assert.Equal(t, deck.Card{Rank: "9", Suit: "S"}, r.Players[0].Hand[2])
	require.Len(t, r.DiscardPile, 1)
	assert.Equal(t, deck.Card{Rank: "3", Suit: "S"}, r.DiscardPile[0])
	assert.Nil(t, r.ActiveDraw)
	assert.Equal(t, 1, r.TurnIndex)
	assert.Equal(t, PhaseTurnDraw, r.Phase)
	assertCardConservation(t, r)
}

func TestSwapIndexOutOfRange(t *testing.T) {
	tt := newPlayingTable(t)

	require.NoError(t, tt.room.Draw(tt.alice))
	err := tt.room.Swap(tt.alice, 4)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
	err = tt.room.Swap(tt.alice, -1)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
	assert.NotNil(t, tt.room.ActiveDraw)
}

func TestSwapWithoutDraw(t *testing.T) {
	tt := newPlayingTable(t)
	err := tt.room.Swap(tt.alice, 0)
	assert.Equal(t, CodeInvalidPhase, CodeOf(err))
}

func TestDiscardDrawnEndsTurn(t *testing.T) {
	tt := newPlayingTable(t)
	r := tt.room

	before := append([]deck.Card(nil), r.Players[0].Hand...)
	require.NoError(t, r.Draw(tt.alice))
	require.NoError(t, r.DiscardDrawn(tt.alice))

	assert.Equal(t, before, r.Players[0].Hand)
	require.Len(t, r.DiscardPile, 1)
	assert.Equal(t, deck.Card{Rank: "9", Suit: "S"}, r.DiscardPile[0])
	assert.Equal(t, 1, r.TurnIndex)
	assert.Equal(t, PhaseTurnDraw, r.Phase)
	assertCardConservation(t, r)
}

func TestCaboNotAfterDrawing(t *testing.T) {
	tt := newPlayingTable(t)

	require.NoError(t, tt.room.Draw(tt.alice))
	err := tt.room.CallCabo(tt.alice)
	assert.Equal(t, CodeInvalidPhase, CodeOf(err))
}

func TestCaboOutOfTurn(t *testing.T) {
	tt := newPlayingTable(t)
	err := tt.room.CallCabo(tt.bob)
	assert.Equal(t, CodeUnauthorized, CodeOf(err))
}
