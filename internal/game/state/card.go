package state

import (
	"fmt"
	"strings"

	"github.com/cardsmith/engine-go/internal/game/ids"
)

// Card is an immutable card entity. Every update helper returns a new value;
// the receiver is never modified. CurrentZone must reference a zone whose
// card list contains this card's identifier — that invariant is maintained
// by the action library, not by the card itself.
type Card struct {
	ID          ids.CardID
	Name        string
	RulesText   string
	Type        string
	Owner       ids.PlayerID
	CurrentZone ids.ZoneID
	Properties  map[string]any
	Counters    []Counter
	Tapped      bool
}

// CardSpec carries the fields for constructing a card. Specs typically come
// from untrusted persisted documents, so NewCard re-validates everything.
type CardSpec struct {
	ID          ids.CardID
	Name        string
	RulesText   string
	Type        string
	Owner       ids.PlayerID
	CurrentZone ids.ZoneID
	Properties  map[string]any
	Counters    []Counter
	Tapped      bool
}

// NewCard validates the spec and returns a card. The properties map and
// counter list are copied so the caller cannot alias internal state.
func NewCard(spec CardSpec) (Card, error) {
	if spec.ID.IsZero() {
		return Card{}, fmt.Errorf("card id: %w", ErrInvalidID)
	}
	if strings.TrimSpace(spec.Name) == "" {
		return Card{}, fmt.Errorf("card %s: %w", spec.ID, ErrEmptyName)
	}
	if spec.Owner.IsZero() {
		return Card{}, fmt.Errorf("card %s owner: %w", spec.ID, ErrInvalidID)
	}
	if spec.CurrentZone.IsZero() {
		return Card{}, fmt.Errorf("card %s zone: %w", spec.ID, ErrInvalidID)
	}
	if err := validateCounters(spec.Counters); err != nil {
		return Card{}, fmt.Errorf("card %s: %w", spec.ID, err)
	}
	return Card{
		ID:          spec.ID,
		Name:        spec.Name,
		RulesText:   spec.RulesText,
		Type:        spec.Type,
		Owner:       spec.Owner,
		CurrentZone: spec.CurrentZone,
		Properties:  copyProperties(spec.Properties),
		Counters:    copyCounters(spec.Counters),
		Tapped:      spec.Tapped,
	}, nil
}

// WithTapped returns a copy with the tapped flag set.
func (c Card) WithTapped(tapped bool) Card {
	next := c.clone()
	next.Tapped = tapped
	return next
}

// WithZone returns a copy located in the given zone.
func (c Card) WithZone(zone ids.ZoneID) Card {
	next := c.clone()
	next.CurrentZone = zone
	return next
}

// WithProperty returns a copy with the named property set.
func (c Card) WithProperty(key string, value any) Card {
	next := c.clone()
	if next.Properties == nil {
		next.Properties = make(map[string]any, 1)
	}
	next.Properties[key] = value
	return next
}

// Property returns the named property and whether it is present.
func (c Card) Property(key string) (any, bool) {
	v, ok := c.Properties[key]
	return v, ok
}

// NumericProperty returns the named property as an int, treating an absent
// or non-numeric value as zero.
func (c Card) NumericProperty(key string) int {
	return numericValue(c.Properties[key])
}

// WithCounterAdded returns a copy with count counters of the given type
// merged in.
func (c Card) WithCounterAdded(counterType string, count int) (Card, error) {
	counters, err := addCounter(c.Counters, counterType, count)
	if err != nil {
		return Card{}, err
	}
	next := c.clone()
	next.Counters = counters
	return next, nil
}

// WithCounterRemoved returns a copy with count counters of the given type
// removed. Removing to exactly zero deletes the type entry.
func (c Card) WithCounterRemoved(counterType string, count int) (Card, error) {
	counters, err := removeCounter(c.Counters, counterType, count)
	if err != nil {
		return Card{}, err
	}
	next := c.clone()
	next.Counters = counters
	return next, nil
}

// CounterCount returns the count of counters of the given type, zero when
// absent.
func (c Card) CounterCount(counterType string) int {
	return counterCount(c.Counters, counterType)
}

func (c Card) clone() Card {
	next := c
	next.Properties = copyProperties(c.Properties)
	next.Counters = copyCounters(c.Counters)
	return next
}

func copyProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	next := make(map[string]any, len(props))
	for k, v := range props {
		next[k] = v
	}
	return next
}

// numericValue coerces the loosely-typed values found in property maps
// (JSON documents decode numbers as float64) into an int.
func numericValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
