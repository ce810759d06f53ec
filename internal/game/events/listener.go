package events

import (
	"strings"

	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
)

// Reaction is the behavior attached to a listener. Implementations inspect
// the triggering event and the current game snapshot and may yield zero or
// more new events, which the processor cascades into the next batch.
// Reactions must treat the game as read-only; state changes go through the
// action library.
type Reaction interface {
	React(event GameEvent, game state.Game) []GameEvent
}

// ReactionFunc adapts a plain function to the Reaction interface.
type ReactionFunc func(event GameEvent, game state.Game) []GameEvent

// React implements Reaction.
func (f ReactionFunc) React(event GameEvent, game state.Game) []GameEvent {
	return f(event, game)
}

// Listener is a priority-ordered, optionally conditional subscriber to one
// event type. Lower priorities run first; ties run in subscription order.
type Listener struct {
	ID        ids.ListenerID
	EventType string
	Condition func(GameEvent) bool
	Priority  int
	Reaction  Reaction

	// seq records subscription order inside a manager so that the priority
	// sort stays stable across resorting.
	seq int
}

// NewListener validates the event type and reaction and returns a listener
// with a fresh identifier and the default priority of 0.
func NewListener(eventType string, reaction Reaction) (Listener, error) {
	if strings.TrimSpace(eventType) == "" {
		return Listener{}, ErrEmptyEventType
	}
	if reaction == nil {
		return Listener{}, ErrNilReaction
	}
	return Listener{
		ID:        ids.NewListenerID(),
		EventType: eventType,
		Reaction:  reaction,
	}, nil
}

// WithPriority returns a copy with the given priority.
func (l Listener) WithPriority(priority int) Listener {
	l.Priority = priority
	return l
}

// WithCondition returns a copy with the given predicate. A nil condition
// matches every event of the listener's type.
func (l Listener) WithCondition(condition func(GameEvent) bool) Listener {
	l.Condition = condition
	return l
}

// Matches reports whether the listener should react to the event: the type
// must be equal and the optional condition must accept it.
func (l Listener) Matches(event GameEvent) bool {
	if l.EventType != event.Type {
		return false
	}
	if l.Condition != nil && !l.Condition(event) {
		return false
	}
	return true
}
