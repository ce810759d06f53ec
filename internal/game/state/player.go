package state

import (
	"fmt"
	"strings"

	"github.com/cardsmith/engine-go/internal/game/ids"
)

// Player is an immutable player entity: a named bag of integer resources
// (life, mana, ...), a counter set, and the zones the player owns.
type Player struct {
	ID        ids.PlayerID
	Name      string
	Resources map[string]int
	Zones     []ids.ZoneID
	Counters  []Counter
}

// PlayerSpec carries the fields for constructing a player.
type PlayerSpec struct {
	ID        ids.PlayerID
	Name      string
	Resources map[string]int
	Zones     []ids.ZoneID
	Counters  []Counter
}

// NewPlayer validates the spec and returns a player.
func NewPlayer(spec PlayerSpec) (Player, error) {
	if spec.ID.IsZero() {
		return Player{}, fmt.Errorf("player id: %w", ErrInvalidID)
	}
	if strings.TrimSpace(spec.Name) == "" {
		return Player{}, fmt.Errorf("player %s: %w", spec.ID, ErrEmptyName)
	}
	if err := validateCounters(spec.Counters); err != nil {
		return Player{}, fmt.Errorf("player %s: %w", spec.ID, err)
	}
	seen := make(map[ids.ZoneID]bool, len(spec.Zones))
	for _, zoneID := range spec.Zones {
		if zoneID.IsZero() {
			return Player{}, fmt.Errorf("player %s zone id: %w", spec.ID, ErrInvalidID)
		}
		if seen[zoneID] {
			return Player{}, fmt.Errorf("player %s zone %s: %w", spec.ID, zoneID, ErrDuplicateEntity)
		}
		seen[zoneID] = true
	}
	return Player{
		ID:        spec.ID,
		Name:      spec.Name,
		Resources: copyResources(spec.Resources),
		Zones:     copyZoneIDs(spec.Zones),
		Counters:  copyCounters(spec.Counters),
	}, nil
}

// Resource returns the named resource value, zero when absent.
func (p Player) Resource(key string) int { return p.Resources[key] }

// WithResource returns a copy with the named resource set to value.
func (p Player) WithResource(key string, value int) Player {
	next := p.clone()
	if next.Resources == nil {
		next.Resources = make(map[string]int, 1)
	}
	next.Resources[key] = value
	return next
}

// WithResourceDelta returns a copy with the signed delta added to the named
// resource, treating an absent resource as zero.
func (p Player) WithResourceDelta(key string, delta int) Player {
	return p.WithResource(key, p.Resource(key)+delta)
}

// OwnsZone reports whether the player owns the given zone.
func (p Player) OwnsZone(zoneID ids.ZoneID) bool {
	for _, id := range p.Zones {
		if id == zoneID {
			return true
		}
	}
	return false
}

// WithZoneOwned returns a copy that records ownership of the given zone.
// Adding a zone twice is a no-op.
func (p Player) WithZoneOwned(zoneID ids.ZoneID) Player {
	if p.OwnsZone(zoneID) {
		return p.clone()
	}
	next := p.clone()
	next.Zones = append(next.Zones, zoneID)
	return next
}

// WithCounterAdded returns a copy with count counters of the given type
// merged in.
func (p Player) WithCounterAdded(counterType string, count int) (Player, error) {
	counters, err := addCounter(p.Counters, counterType, count)
	if err != nil {
		return Player{}, err
	}
	next := p.clone()
	next.Counters = counters
	return next, nil
}

// WithCounterRemoved returns a copy with count counters of the given type
// removed.
func (p Player) WithCounterRemoved(counterType string, count int) (Player, error) {
	counters, err := removeCounter(p.Counters, counterType, count)
	if err != nil {
		return Player{}, err
	}
	next := p.clone()
	next.Counters = counters
	return next, nil
}

// CounterCount returns the count of counters of the given type.
func (p Player) CounterCount(counterType string) int {
	return counterCount(p.Counters, counterType)
}

func (p Player) clone() Player {
	next := p
	next.Resources = copyResources(p.Resources)
	next.Zones = copyZoneIDs(p.Zones)
	next.Counters = copyCounters(p.Counters)
	return next
}

func copyResources(resources map[string]int) map[string]int {
	if resources == nil {
		return nil
	}
	next := make(map[string]int, len(resources))
	for k, v := range resources {
		next[k] = v
	}
	return next
}

func copyZoneIDs(zones []ids.ZoneID) []ids.ZoneID {
	if len(zones) == 0 {
		return nil
	}
	next := make([]ids.ZoneID, len(zones))
	copy(next, zones)
	return next
}
