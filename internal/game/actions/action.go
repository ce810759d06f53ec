// Package actions implements the validated, atomic state transitions of the
// engine. Every action is a tagged payload applied through Execute, which
// either returns a complete new game plus the events it raised, or an error
// and no change at all.
package actions

import (
	"errors"

	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
)

// Kind tags the action payload.
type Kind string

const (
	KindMoveCard      Kind = "move-card"
	KindDrawCards     Kind = "draw-cards"
	KindPlayCard      Kind = "play-card"
	KindModifyStat    Kind = "modify-stat"
	KindTap           Kind = "tap"
	KindUntap         Kind = "untap"
	KindDiscard       Kind = "discard"
	KindShuffleZone   Kind = "shuffle-zone"
	KindAddCounter    Kind = "add-counter"
	KindRemoveCounter Kind = "remove-counter"
	KindSetPhase      Kind = "set-phase"
)

// Action precondition errors. Execute and Validate wrap these with detail.
var (
	ErrUnknownKind      = errors.New("unknown action kind")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrCardNotFound     = errors.New("card not found")
	ErrZoneNotFound     = errors.New("zone not found")
	ErrNotEnoughCards   = errors.New("not enough cards in deck")
	ErrInsufficientMana = errors.New("insufficient mana")
	ErrNotInHand        = errors.New("card is not in the player's hand")
	ErrNotOwner         = errors.New("player does not own the target")
	ErrNoDeckZone       = errors.New("player has no deck zone")
	ErrNoHandZone       = errors.New("player has no hand zone")
	ErrNoDiscardZone    = errors.New("player has no discard zone")
	ErrAlreadyTapped    = errors.New("card is already tapped")
	ErrNotTapped        = errors.New("card is not tapped")
	ErrNotCurrentPlayer = errors.New("only the current player may do this")
	ErrEmptyPhase       = errors.New("phase must not be empty")
	ErrInvalidCount     = errors.New("count must be positive")
	ErrTargetNotFound   = errors.New("target does not exist")
)

// Action is one pending state transition. Which fields are meaningful
// depends on Kind; the constructors below build well-formed payloads.
type Action struct {
	Kind     Kind
	Player   ids.PlayerID
	Card     ids.CardID
	FromZone ids.ZoneID
	ToZone   ids.ZoneID
	Zone     ids.ZoneID
	// Position is the insertion index for move-card;
	// state.AppendPosition appends.
	Position    int
	Count       int
	Stat        string
	Delta       int
	CounterType string
	Phase       string
	Targets     []ids.CardID
}

// MoveCard moves a card between two zones, appending at the destination.
func MoveCard(card ids.CardID, from, to ids.ZoneID) Action {
	return Action{Kind: KindMoveCard, Card: card, FromZone: from, ToZone: to, Position: state.AppendPosition}
}

// MoveCardAt moves a card between two zones with an explicit insertion
// position at the destination.
func MoveCardAt(card ids.CardID, from, to ids.ZoneID, position int) Action {
	a := MoveCard(card, from, to)
	a.Position = position
	return a
}

// DrawCards draws count cards from the top of the player's deck into the
// player's hand.
func DrawCards(player ids.PlayerID, count int) Action {
	return Action{Kind: KindDrawCards, Player: player, Count: count}
}

// PlayCard plays a card from the player's hand into a play area, debiting
// the card's mana cost. Targets are validated for existence only; their
// legality is left to reactive listeners.
func PlayCard(player ids.PlayerID, card ids.CardID, targets ...ids.CardID) Action {
	return Action{Kind: KindPlayCard, Player: player, Card: card, Targets: targets}
}

// ModifyCardStat adds a signed delta to a numeric card property, treating an
// absent property as zero.
func ModifyCardStat(card ids.CardID, stat string, delta int) Action {
	return Action{Kind: KindModifyStat, Card: card, Stat: stat, Delta: delta}
}

// ModifyPlayerStat adds a signed delta to a player resource, treating an
// absent resource as zero.
func ModifyPlayerStat(player ids.PlayerID, stat string, delta int) Action {
	return Action{Kind: KindModifyStat, Player: player, Stat: stat, Delta: delta}
}

// Tap taps a card owned by the acting player.
func Tap(player ids.PlayerID, card ids.CardID) Action {
	return Action{Kind: KindTap, Player: player, Card: card}
}

// Untap untaps a card owned by the acting player.
func Untap(player ids.PlayerID, card ids.CardID) Action {
	return Action{Kind: KindUntap, Player: player, Card: card}
}

// Discard moves a card from the acting player's hand to their discard pile.
func Discard(player ids.PlayerID, card ids.CardID) Action {
	return Action{Kind: KindDiscard, Player: player, Card: card}
}

// ShuffleZone uniformly permutes an ordered zone owned by the acting player
// (or shared).
func ShuffleZone(player ids.PlayerID, zone ids.ZoneID) Action {
	return Action{Kind: KindShuffleZone, Player: player, Zone: zone}
}

// AddCardCounter adds counters of the given type to a card.
func AddCardCounter(player ids.PlayerID, card ids.CardID, counterType string, count int) Action {
	return Action{Kind: KindAddCounter, Player: player, Card: card, CounterType: counterType, Count: count}
}

// AddPlayerCounter adds counters of the given type to a player.
func AddPlayerCounter(player ids.PlayerID, counterType string, count int) Action {
	return Action{Kind: KindAddCounter, Player: player, CounterType: counterType, Count: count}
}

// RemoveCardCounter removes counters of the given type from a card.
func RemoveCardCounter(player ids.PlayerID, card ids.CardID, counterType string, count int) Action {
	return Action{Kind: KindRemoveCounter, Player: player, Card: card, CounterType: counterType, Count: count}
}

// RemovePlayerCounter removes counters of the given type from a player.
func RemovePlayerCounter(player ids.PlayerID, counterType string, count int) Action {
	return Action{Kind: KindRemoveCounter, Player: player, CounterType: counterType, Count: count}
}

// SetPhase changes the game's phase name. Only the current player may
// change phase.
func SetPhase(player ids.PlayerID, phase string) Action {
	return Action{Kind: KindSetPhase, Player: player, Phase: phase}
}
