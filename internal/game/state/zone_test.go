package state

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsmith/engine-go/internal/game/ids"
)

func testDeck(t *testing.T, cards ...ids.CardID) Zone {
	t.Helper()
	zone, err := NewZone(ZoneSpec{
		ID: ids.NewZoneID(), Name: "Deck", Kind: ZoneKindDeck,
		Owner: ids.NewPlayerID(), Cards: cards,
		Visibility: VisibilityPrivate, Order: Ordered,
	})
	require.NoError(t, err)
	return zone
}

func TestNewZoneValidation(t *testing.T) {
	id := ids.NewZoneID()

	_, err := NewZone(ZoneSpec{ID: id, Name: "x", Kind: "graveyard", Visibility: VisibilityPublic, Order: Ordered})
	assert.ErrorIs(t, err, ErrInvalidZoneKind)

	_, err = NewZone(ZoneSpec{ID: id, Name: "x", Kind: ZoneKindDeck, Visibility: "hidden", Order: Ordered})
	assert.ErrorIs(t, err, ErrInvalidVisibility)

	_, err = NewZone(ZoneSpec{ID: id, Name: "x", Kind: ZoneKindDeck, Visibility: VisibilityPublic, Order: "sorted"})
	assert.ErrorIs(t, err, ErrInvalidOrdering)

	_, err = NewZone(ZoneSpec{ID: id, Name: "x", Kind: ZoneKindDeck, Visibility: VisibilityPublic, Order: Ordered, MaxSize: -1})
	assert.ErrorIs(t, err, ErrNegativeMaxSize)

	dup := ids.NewCardID()
	_, err = NewZone(ZoneSpec{
		ID: id, Name: "x", Kind: ZoneKindDeck, Visibility: VisibilityPublic, Order: Ordered,
		Cards: []ids.CardID{dup, dup},
	})
	assert.ErrorIs(t, err, ErrDuplicateEntity)
}

func TestZoneConstructorsDefaults(t *testing.T) {
	owner := ids.NewPlayerID()

	deck, err := NewDeck(ids.NewZoneID(), "Deck", owner)
	require.NoError(t, err)
	assert.Equal(t, VisibilityPrivate, deck.Visibility)
	assert.Equal(t, Ordered, deck.Order)

	hand, err := NewHand(ids.NewZoneID(), "Hand", owner)
	require.NoError(t, err)
	assert.Equal(t, VisibilityPrivate, hand.Visibility)
	assert.Equal(t, Unordered, hand.Order)

	discard, err := NewDiscard(ids.NewZoneID(), "Discard", owner)
	require.NoError(t, err)
	assert.Equal(t, VisibilityPublic, discard.Visibility)
	assert.Equal(t, Ordered, discard.Order)

	stack, err := NewStack(ids.NewZoneID(), "Stack")
	require.NoError(t, err)
	assert.True(t, stack.IsShared())
	assert.Equal(t, Ordered, stack.Order)
}

func TestWithCardAddedPositions(t *testing.T) {
	a, b, c := ids.NewCardID(), ids.NewCardID(), ids.NewCardID()
	zone := testDeck(t, a, b)

	// Append.
	appended, err := zone.WithCardAdded(c, AppendPosition)
	require.NoError(t, err)
	assert.Equal(t, []ids.CardID{a, b, c}, appended.Cards)

	// Insert at the top.
	top, err := zone.WithCardAdded(c, 0)
	require.NoError(t, err)
	assert.Equal(t, []ids.CardID{c, a, b}, top.Cards)

	// Original untouched either way.
	assert.Equal(t, []ids.CardID{a, b}, zone.Cards)

	_, err = zone.WithCardAdded(c, 5)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)

	_, err = zone.WithCardAdded(a, AppendPosition)
	assert.ErrorIs(t, err, ErrCardAlreadyInZone)
}

func TestWithCardAddedCapacity(t *testing.T) {
	a := ids.NewCardID()
	zone, err := NewZone(ZoneSpec{
		ID: ids.NewZoneID(), Name: "Hand", Kind: ZoneKindHand,
		Owner: ids.NewPlayerID(), Cards: []ids.CardID{a},
		Visibility: VisibilityPrivate, Order: Unordered, MaxSize: 1,
	})
	require.NoError(t, err)
	require.True(t, zone.IsFull())

	_, err = zone.WithCardAdded(ids.NewCardID(), AppendPosition)
	assert.ErrorIs(t, err, ErrZoneFull)
	assert.Equal(t, 1, zone.Len(), "failed add must leave zone unchanged")
}

func TestWithCardRemoved(t *testing.T) {
	a, b := ids.NewCardID(), ids.NewCardID()
	zone := testDeck(t, a, b)

	removed, err := zone.WithCardRemoved(a)
	require.NoError(t, err)
	assert.Equal(t, []ids.CardID{b}, removed.Cards)
	assert.True(t, zone.Contains(a), "original must be unchanged")

	_, err = zone.WithCardRemoved(ids.NewCardID())
	assert.ErrorIs(t, err, ErrCardNotInZone)
}

func TestWithCardMoved(t *testing.T) {
	a, b, c := ids.NewCardID(), ids.NewCardID(), ids.NewCardID()
	zone := testDeck(t, a, b, c)

	moved, err := zone.WithCardMoved(c, 0)
	require.NoError(t, err)
	assert.Equal(t, []ids.CardID{c, a, b}, moved.Cards)

	_, err = zone.WithCardMoved(a, 3)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)

	_, err = zone.WithCardMoved(ids.NewCardID(), 0)
	assert.ErrorIs(t, err, ErrCardNotInZone)
}

func TestShuffledIsPermutation(t *testing.T) {
	cards := make([]ids.CardID, 20)
	for i := range cards {
		cards[i] = ids.NewCardID()
	}
	zone := testDeck(t, cards...)

	shuffled, err := zone.Shuffled(rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	require.Equal(t, zone.Len(), shuffled.Len())
	assert.ElementsMatch(t, zone.Cards, shuffled.Cards)
	assert.Equal(t, cards, zone.Cards, "original order must survive the shuffle")
}

func TestShuffledUnorderedFails(t *testing.T) {
	hand, err := NewHand(ids.NewZoneID(), "Hand", ids.NewPlayerID())
	require.NoError(t, err)

	_, err = hand.Shuffled(nil)
	assert.ErrorIs(t, err, ErrUnorderedShuffle)
}

func TestDrawFromTopPreservesOrder(t *testing.T) {
	a, b, c := ids.NewCardID(), ids.NewCardID(), ids.NewCardID()
	zone := testDeck(t, a, b, c)

	drawn, remaining, err := zone.Draw(2, true)
	require.NoError(t, err)
	assert.Equal(t, []ids.CardID{a, b}, drawn)
	assert.Equal(t, []ids.CardID{c}, remaining.Cards)
	assert.Equal(t, 3, zone.Len(), "original must be unchanged")
}

func TestDrawFromBottom(t *testing.T) {
	a, b, c := ids.NewCardID(), ids.NewCardID(), ids.NewCardID()
	zone := testDeck(t, a, b, c)

	drawn, remaining, err := zone.Draw(2, false)
	require.NoError(t, err)
	assert.Equal(t, []ids.CardID{b, c}, drawn)
	assert.Equal(t, []ids.CardID{a}, remaining.Cards)
}

func TestDrawErrors(t *testing.T) {
	zone := testDeck(t, ids.NewCardID())

	_, _, err := zone.Draw(0, true)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)

	_, _, err = zone.Draw(2, true)
	assert.ErrorIs(t, err, ErrNotEnoughCards)
}
