package state

import (
	"fmt"
	"strings"
)

// Counter is a named, non-negative tally attached to a card or a player
// (e.g. "+1/+1", "poison", "charge"). A holder carries at most one Counter
// per distinct type; a Counter never exists with a count of zero.
type Counter struct {
	Type  string
	Count int
}

// NewCounter validates and creates a counter record.
func NewCounter(counterType string, count int) (Counter, error) {
	if strings.TrimSpace(counterType) == "" {
		return Counter{}, fmt.Errorf("counter type: %w", ErrEmptyName)
	}
	if count <= 0 {
		return Counter{}, fmt.Errorf("counter %q: %w", counterType, ErrInvalidCounter)
	}
	return Counter{Type: counterType, Count: count}, nil
}

// addCounter merges count into the list, returning a new list. An existing
// record of the same type has its count summed; otherwise a record is appended.
func addCounter(counters []Counter, counterType string, count int) ([]Counter, error) {
	added, err := NewCounter(counterType, count)
	if err != nil {
		return nil, err
	}
	next := make([]Counter, len(counters))
	copy(next, counters)
	for i, c := range next {
		if c.Type == counterType {
			next[i].Count += added.Count
			return next, nil
		}
	}
	return append(next, added), nil
}

// removeCounter subtracts count from the matching record, returning a new
// list. Removing more than present fails; removing to exactly zero deletes
// the record.
func removeCounter(counters []Counter, counterType string, count int) ([]Counter, error) {
	if count <= 0 {
		return nil, fmt.Errorf("counter %q: %w", counterType, ErrInvalidCounter)
	}
	for i, c := range counters {
		if c.Type != counterType {
			continue
		}
		if count > c.Count {
			return nil, fmt.Errorf("counter %q has %d, removing %d: %w",
				counterType, c.Count, count, ErrCounterUnderflow)
		}
		next := make([]Counter, 0, len(counters))
		next = append(next, counters[:i]...)
		if remaining := c.Count - count; remaining > 0 {
			next = append(next, Counter{Type: counterType, Count: remaining})
		}
		return append(next, counters[i+1:]...), nil
	}
	return nil, fmt.Errorf("counter %q has 0, removing %d: %w",
		counterType, count, ErrCounterUnderflow)
}

// counterCount returns the count for a type, zero when absent.
func counterCount(counters []Counter, counterType string) int {
	for _, c := range counters {
		if c.Type == counterType {
			return c.Count
		}
	}
	return 0
}

// validateCounters rejects blank types, non-positive counts and duplicate
// type entries in an externally supplied counter list.
func validateCounters(counters []Counter) error {
	seen := make(map[string]bool, len(counters))
	for _, c := range counters {
		if _, err := NewCounter(c.Type, c.Count); err != nil {
			return err
		}
		if seen[c.Type] {
			return fmt.Errorf("counter %q: %w", c.Type, ErrDuplicateEntity)
		}
		seen[c.Type] = true
	}
	return nil
}

func copyCounters(counters []Counter) []Counter {
	if len(counters) == 0 {
		return nil
	}
	next := make([]Counter, len(counters))
	copy(next, counters)
	return next
}
