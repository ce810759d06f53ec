package actions

import (
	"fmt"

	"github.com/cardsmith/engine-go/internal/game/events"
	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
)

// Execute is the single entry point of the action library. It re-validates
// every precondition regardless of any prior CanExecute call and returns the
// next game plus the events the action raised. On error the input game is
// returned unchanged; an action is applied completely or not at all.
func Execute(game state.Game, action Action) (state.Game, []events.GameEvent, error) {
	next, raised, err := apply(game, action)
	if err != nil {
		return game, nil, err
	}
	return next, raised, nil
}

// Validate performs a dry, side-effect-free check of the action's
// preconditions. Because the game is immutable, validation simply applies
// the action against the snapshot and discards the result.
func Validate(game state.Game, action Action) error {
	_, _, err := apply(game, action)
	return err
}

// CanExecute is the boolean synonym of Validate used by UI callers to decide
// whether to offer an action at all.
func CanExecute(game state.Game, action Action) bool {
	return Validate(game, action) == nil
}

func apply(game state.Game, action Action) (state.Game, []events.GameEvent, error) {
	switch action.Kind {
	case KindMoveCard:
		return applyMoveCard(game, action)
	case KindDrawCards:
		return applyDrawCards(game, action)
	case KindPlayCard:
		return applyPlayCard(game, action)
	case KindModifyStat:
		return applyModifyStat(game, action)
	case KindTap:
		return applyTapped(game, action, true)
	case KindUntap:
		return applyTapped(game, action, false)
	case KindDiscard:
		return applyDiscard(game, action)
	case KindShuffleZone:
		return applyShuffleZone(game, action)
	case KindAddCounter:
		return applyCounter(game, action, true)
	case KindRemoveCounter:
		return applyCounter(game, action, false)
	case KindSetPhase:
		return applySetPhase(game, action)
	default:
		return state.Game{}, nil, fmt.Errorf("%q: %w", action.Kind, ErrUnknownKind)
	}
}

func applyMoveCard(game state.Game, action Action) (state.Game, []events.GameEvent, error) {
	card, ok := game.Card(action.Card)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("card %s: %w", action.Card, ErrCardNotFound)
	}
	from, ok := game.Zone(action.FromZone)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("zone %s: %w", action.FromZone, ErrZoneNotFound)
	}
	to, ok := game.Zone(action.ToZone)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("zone %s: %w", action.ToZone, ErrZoneNotFound)
	}
	if !from.Contains(card.ID) || card.CurrentZone != from.ID {
		return state.Game{}, nil, fmt.Errorf("card %s in zone %s: %w",
			card.ID, from.ID, state.ErrCardNotInZone)
	}

	reducedFrom, err := from.WithCardRemoved(card.ID)
	if err != nil {
		return state.Game{}, nil, err
	}
	if to.ID == from.ID {
		to = reducedFrom
	}
	grownTo, err := to.WithCardAdded(card.ID, action.Position)
	if err != nil {
		return state.Game{}, nil, err
	}

	next := game
	if from.ID != grownTo.ID {
		if next, err = next.WithZone(reducedFrom); err != nil {
			return state.Game{}, nil, err
		}
	}
	if next, err = next.WithZone(grownTo); err != nil {
		return state.Game{}, nil, err
	}
	if next, err = next.WithCard(card.WithZone(grownTo.ID)); err != nil {
		return state.Game{}, nil, err
	}

	raised, err := raise(events.EventCardMoved, action.Player, map[string]any{
		"cardId":     card.ID.String(),
		"fromZoneId": from.ID.String(),
		"toZoneId":   grownTo.ID.String(),
	})
	if err != nil {
		return state.Game{}, nil, err
	}
	return next, raised, nil
}

func applyDrawCards(game state.Game, action Action) (state.Game, []events.GameEvent, error) {
	if action.Count <= 0 {
		return state.Game{}, nil, fmt.Errorf("draw %d: %w", action.Count, ErrInvalidCount)
	}
	player, ok := game.Player(action.Player)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", action.Player, ErrPlayerNotFound)
	}
	deck, ok := game.FindZone(state.ZoneKindDeck, player.ID)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", player.ID, ErrNoDeckZone)
	}
	hand, ok := game.FindZone(state.ZoneKindHand, player.ID)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", player.ID, ErrNoHandZone)
	}
	if deck.Len() < action.Count {
		return state.Game{}, nil, fmt.Errorf("deck %s has %d cards, drawing %d: %w",
			deck.ID, deck.Len(), action.Count, ErrNotEnoughCards)
	}
	if hand.MaxSize > 0 && hand.Len()+action.Count > hand.MaxSize {
		return state.Game{}, nil, fmt.Errorf("hand %s: %w", hand.ID, state.ErrZoneFull)
	}

	drawn, reducedDeck, err := deck.Draw(action.Count, true)
	if err != nil {
		return state.Game{}, nil, err
	}
	grownHand := hand
	for _, cardID := range drawn {
		if grownHand, err = grownHand.WithCardAdded(cardID, state.AppendPosition); err != nil {
			return state.Game{}, nil, err
		}
	}

	next, err := game.WithZone(reducedDeck)
	if err != nil {
		return state.Game{}, nil, err
	}
	if next, err = next.WithZone(grownHand); err != nil {
		return state.Game{}, nil, err
	}
	cardIDs := make([]string, len(drawn))
	for i, cardID := range drawn {
		card, ok := next.Card(cardID)
		if !ok {
			return state.Game{}, nil, fmt.Errorf("card %s: %w", cardID, ErrCardNotFound)
		}
		if next, err = next.WithCard(card.WithZone(grownHand.ID)); err != nil {
			return state.Game{}, nil, err
		}
		cardIDs[i] = cardID.String()
	}

	raised, err := raise(events.EventCardsDrawn, player.ID, map[string]any{
		"playerId": player.ID.String(),
		"cardIds":  cardIDs,
		"count":    action.Count,
	})
	if err != nil {
		return state.Game{}, nil, err
	}
	return next, raised, nil
}

func applyPlayCard(game state.Game, action Action) (state.Game, []events.GameEvent, error) {
	player, ok := game.Player(action.Player)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", action.Player, ErrPlayerNotFound)
	}
	card, ok := game.Card(action.Card)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("card %s: %w", action.Card, ErrCardNotFound)
	}
	hand, ok := game.Zone(card.CurrentZone)
	if !ok || hand.Kind != state.ZoneKindHand || hand.Owner != player.ID {
		return state.Game{}, nil, fmt.Errorf("card %s: %w", card.ID, ErrNotInHand)
	}
	for _, target := range action.Targets {
		if _, ok := game.Card(target); !ok {
			return state.Game{}, nil, fmt.Errorf("target %s: %w", target, ErrTargetNotFound)
		}
	}

	// A card without a manaCost property is free to play.
	cost := card.NumericProperty("manaCost")
	if cost > player.Resource("mana") {
		return state.Game{}, nil, fmt.Errorf("cost %d, mana %d: %w",
			cost, player.Resource("mana"), ErrInsufficientMana)
	}

	next := game
	var err error
	playArea, ok := game.FindZone(state.ZoneKindPlayArea, player.ID)
	if !ok {
		playArea, ok = game.FindZone(state.ZoneKindPlayArea, "")
	}
	if !ok {
		playArea, err = state.NewPlayArea(ids.NewZoneID(), player.Name+" play area", player.ID)
		if err != nil {
			return state.Game{}, nil, err
		}
		if next, err = next.WithZoneAdded(playArea); err != nil {
			return state.Game{}, nil, err
		}
	}

	reducedHand, err := hand.WithCardRemoved(card.ID)
	if err != nil {
		return state.Game{}, nil, err
	}
	grownArea, err := playArea.WithCardAdded(card.ID, state.AppendPosition)
	if err != nil {
		return state.Game{}, nil, err
	}

	if cost > 0 {
		if next, err = next.WithPlayer(player.WithResourceDelta("mana", -cost)); err != nil {
			return state.Game{}, nil, err
		}
	}
	if next, err = next.WithZone(reducedHand); err != nil {
		return state.Game{}, nil, err
	}
	if next, err = next.WithZone(grownArea); err != nil {
		return state.Game{}, nil, err
	}
	if next, err = next.WithCard(card.WithZone(grownArea.ID)); err != nil {
		return state.Game{}, nil, err
	}

	targets := make([]string, len(action.Targets))
	for i, target := range action.Targets {
		targets[i] = target.String()
	}
	raised, err := raise(events.EventCardPlayed, player.ID, map[string]any{
		"cardId":   card.ID.String(),
		"playerId": player.ID.String(),
		"manaCost": cost,
		"targets":  targets,
	})
	if err != nil {
		return state.Game{}, nil, err
	}
	return next, raised, nil
}

func applyModifyStat(game state.Game, action Action) (state.Game, []events.GameEvent, error) {
	if action.Stat == "" {
		return state.Game{}, nil, fmt.Errorf("stat: %w", state.ErrEmptyName)
	}

	var (
		next       state.Game
		err        error
		targetKind string
		targetID   string
		value      int
	)
	if !action.Card.IsZero() {
		card, ok := game.Card(action.Card)
		if !ok {
			return state.Game{}, nil, fmt.Errorf("card %s: %w", action.Card, ErrCardNotFound)
		}
		value = card.NumericProperty(action.Stat) + action.Delta
		next, err = game.WithCard(card.WithProperty(action.Stat, value))
		targetKind, targetID = "card", card.ID.String()
	} else {
		player, ok := game.Player(action.Player)
		if !ok {
			return state.Game{}, nil, fmt.Errorf("player %s: %w", action.Player, ErrPlayerNotFound)
		}
		value = player.Resource(action.Stat) + action.Delta
		next, err = game.WithPlayer(player.WithResourceDelta(action.Stat, action.Delta))
		targetKind, targetID = "player", player.ID.String()
	}
	if err != nil {
		return state.Game{}, nil, err
	}

	raised, err := raise(events.EventStatModified, action.Player, map[string]any{
		"targetKind": targetKind,
		"targetId":   targetID,
		"stat":       action.Stat,
		"delta":      action.Delta,
		"value":      value,
	})
	if err != nil {
		return state.Game{}, nil, err
	}
	return next, raised, nil
}

func applyTapped(game state.Game, action Action, tapped bool) (state.Game, []events.GameEvent, error) {
	player, ok := game.Player(action.Player)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", action.Player, ErrPlayerNotFound)
	}
	card, ok := game.Card(action.Card)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("card %s: %w", action.Card, ErrCardNotFound)
	}
	if card.Owner != player.ID {
		return state.Game{}, nil, fmt.Errorf("card %s owned by %s: %w",
			card.ID, card.Owner, ErrNotOwner)
	}
	if tapped && card.Tapped {
		return state.Game{}, nil, fmt.Errorf("card %s: %w", card.ID, ErrAlreadyTapped)
	}
	if !tapped && !card.Tapped {
		return state.Game{}, nil, fmt.Errorf("card %s: %w", card.ID, ErrNotTapped)
	}

	next, err := game.WithCard(card.WithTapped(tapped))
	if err != nil {
		return state.Game{}, nil, err
	}
	eventType := events.EventCardTapped
	if !tapped {
		eventType = events.EventCardUntapped
	}
	raised, err := raise(eventType, player.ID, map[string]any{
		"cardId":   card.ID.String(),
		"playerId": player.ID.String(),
	})
	if err != nil {
		return state.Game{}, nil, err
	}
	return next, raised, nil
}

func applyDiscard(game state.Game, action Action) (state.Game, []events.GameEvent, error) {
	player, ok := game.Player(action.Player)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", action.Player, ErrPlayerNotFound)
	}
	card, ok := game.Card(action.Card)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("card %s: %w", action.Card, ErrCardNotFound)
	}
	hand, ok := game.Zone(card.CurrentZone)
	if !ok || hand.Kind != state.ZoneKindHand || hand.Owner != player.ID {
		return state.Game{}, nil, fmt.Errorf("card %s: %w", card.ID, ErrNotInHand)
	}
	discard, ok := game.FindZone(state.ZoneKindDiscard, player.ID)
	if !ok {
		discard, ok = game.FindZone(state.ZoneKindDiscard, "")
	}
	if !ok {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", player.ID, ErrNoDiscardZone)
	}

	reducedHand, err := hand.WithCardRemoved(card.ID)
	if err != nil {
		return state.Game{}, nil, err
	}
	grownDiscard, err := discard.WithCardAdded(card.ID, state.AppendPosition)
	if err != nil {
		return state.Game{}, nil, err
	}

	next, err := game.WithZone(reducedHand)
	if err != nil {
		return state.Game{}, nil, err
	}
	if next, err = next.WithZone(grownDiscard); err != nil {
		return state.Game{}, nil, err
	}
	if next, err = next.WithCard(card.WithZone(grownDiscard.ID)); err != nil {
		return state.Game{}, nil, err
	}

	raised, err := raise(events.EventCardDiscarded, player.ID, map[string]any{
		"cardId":   card.ID.String(),
		"playerId": player.ID.String(),
		"zoneId":   grownDiscard.ID.String(),
	})
	if err != nil {
		return state.Game{}, nil, err
	}
	return next, raised, nil
}

func applyShuffleZone(game state.Game, action Action) (state.Game, []events.GameEvent, error) {
	player, ok := game.Player(action.Player)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", action.Player, ErrPlayerNotFound)
	}
	zone, ok := game.Zone(action.Zone)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("zone %s: %w", action.Zone, ErrZoneNotFound)
	}
	if !zone.IsShared() && zone.Owner != player.ID {
		return state.Game{}, nil, fmt.Errorf("zone %s owned by %s: %w",
			zone.ID, zone.Owner, ErrNotOwner)
	}

	shuffled, err := zone.Shuffled(nil)
	if err != nil {
		return state.Game{}, nil, err
	}
	next, err := game.WithZone(shuffled)
	if err != nil {
		return state.Game{}, nil, err
	}

	raised, err := raise(events.EventZoneShuffled, player.ID, map[string]any{
		"zoneId":   zone.ID.String(),
		"playerId": player.ID.String(),
	})
	if err != nil {
		return state.Game{}, nil, err
	}
	return next, raised, nil
}

func applyCounter(game state.Game, action Action, add bool) (state.Game, []events.GameEvent, error) {
	if _, ok := game.Player(action.Player); !ok {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", action.Player, ErrPlayerNotFound)
	}

	var (
		next       state.Game
		err        error
		targetKind string
		targetID   string
	)
	if !action.Card.IsZero() {
		card, ok := game.Card(action.Card)
		if !ok {
			return state.Game{}, nil, fmt.Errorf("card %s: %w", action.Card, ErrCardNotFound)
		}
		var updated state.Card
		if add {
			updated, err = card.WithCounterAdded(action.CounterType, action.Count)
		} else {
			updated, err = card.WithCounterRemoved(action.CounterType, action.Count)
		}
		if err != nil {
			return state.Game{}, nil, err
		}
		next, err = game.WithCard(updated)
		targetKind, targetID = "card", card.ID.String()
	} else {
		player, _ := game.Player(action.Player)
		var updated state.Player
		if add {
			updated, err = player.WithCounterAdded(action.CounterType, action.Count)
		} else {
			updated, err = player.WithCounterRemoved(action.CounterType, action.Count)
		}
		if err != nil {
			return state.Game{}, nil, err
		}
		next, err = game.WithPlayer(updated)
		targetKind, targetID = "player", player.ID.String()
	}
	if err != nil {
		return state.Game{}, nil, err
	}

	eventType := events.EventCounterAdded
	if !add {
		eventType = events.EventCounterRemoved
	}
	raised, err := raise(eventType, action.Player, map[string]any{
		"targetKind":  targetKind,
		"targetId":    targetID,
		"counterType": action.CounterType,
		"count":       action.Count,
	})
	if err != nil {
		return state.Game{}, nil, err
	}
	return next, raised, nil
}

func applySetPhase(game state.Game, action Action) (state.Game, []events.GameEvent, error) {
	player, ok := game.Player(action.Player)
	if !ok {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", action.Player, ErrPlayerNotFound)
	}
	if game.CurrentPlayer != player.ID {
		return state.Game{}, nil, fmt.Errorf("player %s: %w", player.ID, ErrNotCurrentPlayer)
	}
	if action.Phase == "" {
		return state.Game{}, nil, ErrEmptyPhase
	}

	previous := game.Phase
	next := game.WithPhase(action.Phase)
	raised, err := raise(events.EventPhaseChanged, player.ID, map[string]any{
		"from":     previous,
		"to":       action.Phase,
		"playerId": player.ID.String(),
	})
	if err != nil {
		return state.Game{}, nil, err
	}
	return next, raised, nil
}

func raise(eventType string, source ids.PlayerID, payload map[string]any) ([]events.GameEvent, error) {
	event, err := events.NewGameEvent(eventType, payload, source)
	if err != nil {
		return nil, err
	}
	return []events.GameEvent{event}, nil
}
