// Package events implements the reactive core: short-lived game events, a
// priority-ordered listener registry, and a queue-draining processor with
// bounded cascade depth.
package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cardsmith/engine-go/internal/game/ids"
)

// Event types raised by the action library. Listener reactions may introduce
// further, free-form types; nothing restricts the namespace.
const (
	EventCardMoved      = "CARD_MOVED"
	EventCardsDrawn     = "CARDS_DRAWN"
	EventCardPlayed     = "CARD_PLAYED"
	EventStatModified   = "STAT_MODIFIED"
	EventCardTapped     = "CARD_TAPPED"
	EventCardUntapped   = "CARD_UNTAPPED"
	EventCardDiscarded  = "CARD_DISCARDED"
	EventZoneShuffled   = "ZONE_SHUFFLED"
	EventCounterAdded   = "COUNTER_ADDED"
	EventCounterRemoved = "COUNTER_REMOVED"
	EventPhaseChanged   = "PHASE_CHANGED"
)

var (
	// ErrEmptyEventType is returned when creating an event without a type.
	ErrEmptyEventType = errors.New("event type must not be empty")
	// ErrNilReaction is returned when creating a listener without a reaction.
	ErrNilReaction = errors.New("listener reaction must not be nil")
	// ErrQueueFull is returned by Publish once the pending queue reaches the
	// manager's maximum size.
	ErrQueueFull = errors.New("event queue is full")
	// ErrAlreadyProcessing is returned by Process when invoked re-entrantly.
	ErrAlreadyProcessing = errors.New("event processing already in progress")
	// ErrDuplicateListener is returned when subscribing an id twice.
	ErrDuplicateListener = errors.New("listener already subscribed")
	// ErrListenerNotFound is returned when unsubscribing an unknown id.
	ErrListenerNotFound = errors.New("listener not subscribed")
	// ErrRecursionLimit is recorded when cascading events exceed the depth
	// bound.
	ErrRecursionLimit = errors.New("event recursion limit reached")
)

// GameEvent is a typed notification raised by an action or by a listener
// reaction. Events are short-lived: created, enqueued, consumed during one
// processing pass, never persisted.
type GameEvent struct {
	ID        ids.EventID
	Type      string
	Payload   map[string]any
	Timestamp time.Time
	// Source is the originating player. A zero value means the event was
	// raised by the system rather than a player.
	Source ids.PlayerID
}

// NewGameEvent validates the type and returns an event with a fresh id and
// the current timestamp. The payload map is copied.
func NewGameEvent(eventType string, payload map[string]any, source ids.PlayerID) (GameEvent, error) {
	if strings.TrimSpace(eventType) == "" {
		return GameEvent{}, ErrEmptyEventType
	}
	return GameEvent{
		ID:        ids.NewEventID(),
		Type:      eventType,
		Payload:   copyPayload(payload),
		Timestamp: time.Now(),
		Source:    source,
	}, nil
}

// NewSystemEvent creates an event originated by the system.
func NewSystemEvent(eventType string, payload map[string]any) (GameEvent, error) {
	return NewGameEvent(eventType, payload, "")
}

// IsSystem reports whether the event was raised by the system.
func (e GameEvent) IsSystem() bool { return e.Source.IsZero() }

// String implements fmt.Stringer for log output.
func (e GameEvent) String() string {
	source := "system"
	if !e.Source.IsZero() {
		source = e.Source.String()
	}
	return fmt.Sprintf("%s(%s from %s)", e.Type, e.ID, source)
}

func copyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	next := make(map[string]any, len(payload))
	for k, v := range payload {
		next[k] = v
	}
	return next
}
