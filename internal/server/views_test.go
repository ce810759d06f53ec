package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsmith/engine-go/internal/game/actions"
	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
)

func TestBuildGameView(t *testing.T) {
	playerID := ids.NewPlayerID()
	deckID := ids.NewZoneID()
	cardID := ids.NewCardID()

	player, err := state.NewPlayer(state.PlayerSpec{
		ID: playerID, Name: "Alice",
		Resources: map[string]int{"life": 20},
		Zones:     []ids.ZoneID{deckID},
	})
	require.NoError(t, err)
	deck, err := state.NewZone(state.ZoneSpec{
		ID: deckID, Name: "Deck", Kind: state.ZoneKindDeck, Owner: playerID,
		Cards: []ids.CardID{cardID}, Visibility: state.VisibilityPrivate, Order: state.Ordered,
	})
	require.NoError(t, err)
	card, err := state.NewCard(state.CardSpec{
		ID: cardID, Name: "Goblin", Owner: playerID, CurrentZone: deckID,
		Counters: []state.Counter{{Type: "charge", Count: 2}},
	})
	require.NoError(t, err)
	game, err := state.NewGame(state.GameSpec{
		ID:            ids.NewGameID(),
		Players:       []state.Player{player},
		Zones:         []state.Zone{deck},
		Cards:         []state.Card{card},
		CurrentPlayer: playerID,
		Turn:          3,
	})
	require.NoError(t, err)

	view := buildGameView(game)

	assert.Equal(t, game.ID.String(), view.ID)
	assert.Equal(t, "main", view.Phase)
	assert.Equal(t, 3, view.Turn)

	require.Len(t, view.Players, 1)
	assert.Equal(t, "Alice", view.Players[0].Name)
	assert.Equal(t, []string{deckID.String()}, view.Players[0].Zones)

	require.Len(t, view.Zones, 1)
	assert.Equal(t, "deck", view.Zones[0].Kind)
	assert.Equal(t, []string{cardID.String()}, view.Zones[0].Cards)

	require.Len(t, view.Cards, 1)
	require.Len(t, view.Cards[0].Counters, 1)
	assert.Equal(t, "charge", view.Cards[0].Counters[0].Type)
	assert.Equal(t, 2, view.Cards[0].Counters[0].Count)
}

func TestBuildActionDefaultsToAppendPosition(t *testing.T) {
	action, err := buildAction(ActionRequest{
		Kind:       "move-card",
		CardID:     "card-1",
		FromZoneID: "zone-a",
		ToZoneID:   "zone-b",
	})
	require.NoError(t, err)
	assert.Equal(t, actions.KindMoveCard, action.Kind)
	assert.Equal(t, state.AppendPosition, action.Position)

	position := 0
	action, err = buildAction(ActionRequest{
		Kind: "move-card", CardID: "card-1",
		FromZoneID: "zone-a", ToZoneID: "zone-b", Position: &position,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, action.Position)
}

func TestBuildActionRejectsBlankTargets(t *testing.T) {
	_, err := buildAction(ActionRequest{
		Kind: "play-card", PlayerID: "p1", CardID: "c1",
		Targets: []string{"  "},
	})
	assert.ErrorIs(t, err, ids.ErrEmptyID)
}
