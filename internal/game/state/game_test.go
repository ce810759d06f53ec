package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsmith/engine-go/internal/game/ids"
)

// buildGame assembles a two-zone, one-player, one-card game with full
// referential integrity.
func buildGame(t *testing.T) (Game, Player, Zone, Card) {
	t.Helper()

	playerID := ids.NewPlayerID()
	deckID := ids.NewZoneID()
	handID := ids.NewZoneID()
	cardID := ids.NewCardID()

	player, err := NewPlayer(PlayerSpec{
		ID: playerID, Name: "Alice",
		Resources: map[string]int{"life": 20},
		Zones:     []ids.ZoneID{deckID, handID},
	})
	require.NoError(t, err)

	deck, err := NewZone(ZoneSpec{
		ID: deckID, Name: "Deck", Kind: ZoneKindDeck, Owner: playerID,
		Cards: []ids.CardID{cardID}, Visibility: VisibilityPrivate, Order: Ordered,
	})
	require.NoError(t, err)

	hand, err := NewHand(handID, "Hand", playerID)
	require.NoError(t, err)

	card, err := NewCard(CardSpec{
		ID: cardID, Name: "Goblin", Owner: playerID, CurrentZone: deckID,
	})
	require.NoError(t, err)

	game, err := NewGame(GameSpec{
		ID:            ids.NewGameID(),
		Players:       []Player{player},
		Zones:         []Zone{deck, hand},
		Cards:         []Card{card},
		CurrentPlayer: playerID,
		Turn:          1,
	})
	require.NoError(t, err)
	return game, player, deck, card
}

func TestNewGameDefaultsPhaseToMain(t *testing.T) {
	game, _, _, _ := buildGame(t)
	assert.Equal(t, "main", game.Phase)
}

func TestNewGameRejectsDanglingReferences(t *testing.T) {
	playerID := ids.NewPlayerID()
	zoneID := ids.NewZoneID()

	player, err := NewPlayer(PlayerSpec{ID: playerID, Name: "Alice"})
	require.NoError(t, err)
	zone, err := NewDeck(zoneID, "Deck", playerID)
	require.NoError(t, err)

	// Current player not in the game.
	_, err = NewGame(GameSpec{
		ID: ids.NewGameID(), Players: []Player{player}, Zones: []Zone{zone},
		CurrentPlayer: ids.NewPlayerID(), Turn: 1,
	})
	assert.ErrorIs(t, err, ErrDanglingReference)

	// Zone owned by an unknown player.
	orphanZone, err := NewDeck(ids.NewZoneID(), "Deck", ids.NewPlayerID())
	require.NoError(t, err)
	_, err = NewGame(GameSpec{
		ID: ids.NewGameID(), Players: []Player{player}, Zones: []Zone{orphanZone}, Turn: 1,
	})
	assert.ErrorIs(t, err, ErrDanglingReference)

	// Card whose zone does not list it.
	card, err := NewCard(CardSpec{
		ID: ids.NewCardID(), Name: "Goblin", Owner: playerID, CurrentZone: zoneID,
	})
	require.NoError(t, err)
	_, err = NewGame(GameSpec{
		ID: ids.NewGameID(), Players: []Player{player}, Zones: []Zone{zone},
		Cards: []Card{card}, Turn: 1,
	})
	assert.ErrorIs(t, err, ErrDanglingReference)
}

func TestNewGameRejectsDuplicates(t *testing.T) {
	player, err := NewPlayer(PlayerSpec{ID: ids.NewPlayerID(), Name: "Alice"})
	require.NoError(t, err)

	_, err = NewGame(GameSpec{
		ID: ids.NewGameID(), Players: []Player{player, player}, Turn: 1,
	})
	assert.ErrorIs(t, err, ErrDuplicateEntity)
}

func TestNewGameRejectsBadTurn(t *testing.T) {
	_, err := NewGame(GameSpec{ID: ids.NewGameID(), Turn: 0})
	assert.ErrorIs(t, err, ErrInvalidTurn)
}

func TestGameLookups(t *testing.T) {
	game, player, deck, card := buildGame(t)

	gotPlayer, ok := game.Player(player.ID)
	require.True(t, ok)
	assert.Equal(t, player.Name, gotPlayer.Name)

	gotZone, ok := game.Zone(deck.ID)
	require.True(t, ok)
	assert.Equal(t, ZoneKindDeck, gotZone.Kind)

	gotCard, ok := game.Card(card.ID)
	require.True(t, ok)
	assert.Equal(t, card.Name, gotCard.Name)

	found, ok := game.FindZone(ZoneKindHand, player.ID)
	require.True(t, ok)
	assert.Equal(t, ZoneKindHand, found.Kind)

	_, ok = game.FindZone(ZoneKindDiscard, player.ID)
	assert.False(t, ok)
}

func TestWithPlayerReplacesWithoutMutating(t *testing.T) {
	game, player, _, _ := buildGame(t)

	updated, err := game.WithPlayer(player.WithResource("life", 10))
	require.NoError(t, err)

	got, _ := updated.Player(player.ID)
	assert.Equal(t, 10, got.Resource("life"))

	original, _ := game.Player(player.ID)
	assert.Equal(t, 20, original.Resource("life"), "original game must be unchanged")
}

func TestWithPlayerUnknownFails(t *testing.T) {
	game, _, _, _ := buildGame(t)
	stranger, err := NewPlayer(PlayerSpec{ID: ids.NewPlayerID(), Name: "Eve"})
	require.NoError(t, err)

	_, err = game.WithPlayer(stranger)
	assert.ErrorIs(t, err, ErrDanglingReference)
}

func TestWithZoneAddedRegistersOwnership(t *testing.T) {
	game, player, _, _ := buildGame(t)

	area, err := NewPlayArea(ids.NewZoneID(), "Battlefield", player.ID)
	require.NoError(t, err)

	updated, err := game.WithZoneAdded(area)
	require.NoError(t, err)

	owner, _ := updated.Player(player.ID)
	assert.True(t, owner.OwnsZone(area.ID))

	before, _ := game.Player(player.ID)
	assert.False(t, before.OwnsZone(area.ID), "original game must be unchanged")

	_, err = updated.WithZoneAdded(area)
	assert.ErrorIs(t, err, ErrDuplicateEntity)
}

func TestWithPhaseAndTurn(t *testing.T) {
	game, _, _, _ := buildGame(t)

	next := game.WithPhase("combat")
	assert.Equal(t, "combat", next.Phase)
	assert.Equal(t, "main", game.Phase)

	turned, err := game.WithTurn(2)
	require.NoError(t, err)
	assert.Equal(t, 2, turned.Turn)

	_, err = game.WithTurn(0)
	assert.ErrorIs(t, err, ErrInvalidTurn)
}

func TestWithGlobalProperty(t *testing.T) {
	game, _, _, _ := buildGame(t)

	next := game.WithGlobalProperty("weather", "rain")
	v, ok := next.GlobalProperty("weather")
	require.True(t, ok)
	assert.Equal(t, "rain", v)

	_, ok = game.GlobalProperty("weather")
	assert.False(t, ok, "original game must be unchanged")
}
