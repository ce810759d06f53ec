// Package rules reconstructs event listeners from declarative definitions.
// Rule-authoring tooling and the persistence layer only ever store a
// listener's match criteria and a description of the events its reaction
// emits; Compile re-binds those definitions to executable reactions so that
// no code is ever serialized.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cardsmith/engine-go/internal/game/events"
	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
)

var (
	// ErrEmptyEventType is returned for a spec without a trigger event type.
	ErrEmptyEventType = errors.New("rule spec event type must not be empty")
	// ErrNoEmissions is returned for a spec whose reaction emits nothing.
	ErrNoEmissions = errors.New("rule spec must emit at least one event")
	// ErrEmptyPayloadKey is returned for a condition without a payload key.
	ErrEmptyPayloadKey = errors.New("condition payload key must not be empty")
)

// ConditionSpec matches an event payload entry against an expected value.
// A nil spec matches every event of the rule's type.
type ConditionSpec struct {
	PayloadKey string `json:"payloadKey"`
	Equals     any    `json:"equals"`
}

// EmitSpec describes one event the reaction emits. Payload carries literal
// values; CopyKeys names payload entries copied from the triggering event.
type EmitSpec struct {
	EventType string         `json:"eventType"`
	Payload   map[string]any `json:"payload,omitempty"`
	CopyKeys  []string       `json:"copyKeys,omitempty"`
}

// ListenerSpec is the persisted, declarative form of an event listener.
type ListenerSpec struct {
	ID        string         `json:"id,omitempty"`
	EventType string         `json:"eventType"`
	Priority  int            `json:"priority"`
	Condition *ConditionSpec `json:"condition,omitempty"`
	Emit      []EmitSpec     `json:"emit"`
}

// Compile validates the spec and builds a live listener. A spec id, when
// present, is preserved so persisted rules keep stable identities.
func Compile(spec ListenerSpec) (events.Listener, error) {
	if strings.TrimSpace(spec.EventType) == "" {
		return events.Listener{}, ErrEmptyEventType
	}
	if len(spec.Emit) == 0 {
		return events.Listener{}, ErrNoEmissions
	}
	for _, emit := range spec.Emit {
		if strings.TrimSpace(emit.EventType) == "" {
			return events.Listener{}, fmt.Errorf("emission: %w", ErrEmptyEventType)
		}
	}
	if spec.Condition != nil && strings.TrimSpace(spec.Condition.PayloadKey) == "" {
		return events.Listener{}, ErrEmptyPayloadKey
	}

	listener, err := events.NewListener(spec.EventType, emitReaction(spec.Emit))
	if err != nil {
		return events.Listener{}, err
	}
	listener = listener.WithPriority(spec.Priority)
	if spec.Condition != nil {
		condition := *spec.Condition
		listener = listener.WithCondition(func(event events.GameEvent) bool {
			return event.Payload[condition.PayloadKey] == condition.Equals
		})
	}
	if spec.ID != "" {
		parsed, err := ids.ParseListenerID(spec.ID)
		if err != nil {
			return events.Listener{}, fmt.Errorf("rule id: %w", err)
		}
		listener.ID = parsed
	}
	return listener, nil
}

// CompileAll compiles every spec, failing on the first invalid one.
func CompileAll(specs []ListenerSpec) ([]events.Listener, error) {
	listeners := make([]events.Listener, 0, len(specs))
	for i, spec := range specs {
		listener, err := Compile(spec)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		listeners = append(listeners, listener)
	}
	return listeners, nil
}

// emitReaction builds the reaction for a set of emissions. Emitted events
// inherit the triggering event's source.
func emitReaction(emissions []EmitSpec) events.Reaction {
	return events.ReactionFunc(func(event events.GameEvent, _ state.Game) []events.GameEvent {
		out := make([]events.GameEvent, 0, len(emissions))
		for _, emit := range emissions {
			payload := make(map[string]any, len(emit.Payload)+len(emit.CopyKeys))
			for k, v := range emit.Payload {
				payload[k] = v
			}
			for _, key := range emit.CopyKeys {
				if v, ok := event.Payload[key]; ok {
					payload[key] = v
				}
			}
			raised, err := events.NewGameEvent(emit.EventType, payload, event.Source)
			if err != nil {
				continue
			}
			out = append(out, raised)
		}
		return out
	})
}
