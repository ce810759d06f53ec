package repository

import (
	"fmt"

	"github.com/cardsmith/engine-go/internal/game/events"
	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
	"github.com/cardsmith/engine-go/internal/rules"
)

// Rehydrated is the live form of a loaded project: a validated game with
// the project's cards dealt into the owner's deck, plus the compiled
// listeners ready to attach to the game's event manager.
type Rehydrated struct {
	Game      state.Game
	Listeners []events.Listener
}

// Rehydrate builds a playtest game from a persisted project. The document is
// untrusted, so every entity goes through its constructor and the aggregate
// through NewGame, which rejects any dangling reference the document may
// carry. Cards keep their persisted ids when present so rules that name
// specific cards keep working across save/load.
func Rehydrate(project *Project, playerName string) (*Rehydrated, error) {
	if project == nil {
		return nil, fmt.Errorf("project: %w", ErrProjectNotFound)
	}
	if playerName == "" {
		playerName = "Playtester"
	}

	playerID := ids.NewPlayerID()
	deckID := ids.NewZoneID()
	handID := ids.NewZoneID()
	discardID := ids.NewZoneID()
	playAreaID := ids.NewZoneID()
	stackID := ids.NewZoneID()

	cards := make([]state.Card, 0, len(project.Cards))
	deckCards := make([]ids.CardID, 0, len(project.Cards))
	for i, doc := range project.Cards {
		cardID := ids.CardID(doc.ID)
		if doc.ID == "" {
			cardID = ids.NewCardID()
		}
		card, err := state.NewCard(state.CardSpec{
			ID:          cardID,
			Name:        doc.Name,
			RulesText:   doc.RulesText,
			Type:        doc.Type,
			Owner:       playerID,
			CurrentZone: deckID,
			Properties:  doc.Properties,
		})
		if err != nil {
			return nil, fmt.Errorf("project %s card %d: %w", project.ID, i, err)
		}
		cards = append(cards, card)
		deckCards = append(deckCards, card.ID)
	}

	player, err := state.NewPlayer(state.PlayerSpec{
		ID:        playerID,
		Name:      playerName,
		Resources: map[string]int{"life": 20, "mana": 0},
		Zones:     []ids.ZoneID{deckID, handID, discardID, playAreaID},
	})
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", project.ID, err)
	}

	deck, err := state.NewZone(state.ZoneSpec{
		ID: deckID, Name: "Deck", Kind: state.ZoneKindDeck, Owner: playerID,
		Cards: deckCards, Visibility: state.VisibilityPrivate, Order: state.Ordered,
	})
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", project.ID, err)
	}
	hand, err := state.NewHand(handID, "Hand", playerID)
	if err != nil {
		return nil, err
	}
	discard, err := state.NewDiscard(discardID, "Discard", playerID)
	if err != nil {
		return nil, err
	}
	playArea, err := state.NewPlayArea(playAreaID, "Play Area", playerID)
	if err != nil {
		return nil, err
	}
	stack, err := state.NewStack(stackID, "Stack")
	if err != nil {
		return nil, err
	}

	game, err := state.NewGame(state.GameSpec{
		ID:            ids.NewGameID(),
		Players:       []state.Player{player},
		Zones:         []state.Zone{deck, hand, discard, playArea, stack},
		Cards:         cards,
		CurrentPlayer: playerID,
		Phase:         "main",
		Turn:          1,
		EffectStack:   stackID,
	})
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", project.ID, err)
	}

	listeners, err := rules.CompileAll(project.Rules)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", project.ID, err)
	}
	return &Rehydrated{Game: game, Listeners: listeners}, nil
}
