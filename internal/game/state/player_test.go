package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsmith/engine-go/internal/game/ids"
)

func testPlayer(t *testing.T) Player {
	t.Helper()
	p, err := NewPlayer(PlayerSpec{
		ID:        ids.NewPlayerID(),
		Name:      "Alice",
		Resources: map[string]int{"life": 20, "mana": 3},
	})
	require.NoError(t, err)
	return p
}

func TestNewPlayerValidation(t *testing.T) {
	_, err := NewPlayer(PlayerSpec{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = NewPlayer(PlayerSpec{ID: ids.NewPlayerID(), Name: " "})
	assert.ErrorIs(t, err, ErrEmptyName)

	dup := ids.NewZoneID()
	_, err = NewPlayer(PlayerSpec{
		ID: ids.NewPlayerID(), Name: "x",
		Zones: []ids.ZoneID{dup, dup},
	})
	assert.ErrorIs(t, err, ErrDuplicateEntity)
}

func TestWithResourceLeavesOriginal(t *testing.T) {
	p := testPlayer(t)
	damaged := p.WithResource("life", 15)

	assert.Equal(t, 15, damaged.Resource("life"))
	assert.Equal(t, 20, p.Resource("life"), "original must be unchanged")
}

func TestWithResourceDelta(t *testing.T) {
	p := testPlayer(t)

	assert.Equal(t, 17, p.WithResourceDelta("life", -3).Resource("life"))
	assert.Equal(t, 5, p.WithResourceDelta("mana", 2).Resource("mana"))

	// Absent resources start from zero; negatives are legal.
	assert.Equal(t, -2, p.WithResourceDelta("poison", -2).Resource("poison"))
}

func TestWithZoneOwnedIdempotent(t *testing.T) {
	p := testPlayer(t)
	zone := ids.NewZoneID()

	once := p.WithZoneOwned(zone)
	twice := once.WithZoneOwned(zone)

	assert.True(t, once.OwnsZone(zone))
	assert.Len(t, twice.Zones, 1)
	assert.False(t, p.OwnsZone(zone), "original must be unchanged")
}

func TestPlayerCounters(t *testing.T) {
	p := testPlayer(t)

	poisoned, err := p.WithCounterAdded("poison", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, poisoned.CounterCount("poison"))
	assert.Equal(t, 0, p.CounterCount("poison"))

	cured, err := poisoned.WithCounterRemoved("poison", 3)
	require.NoError(t, err)
	assert.Empty(t, cured.Counters)

	_, err = cured.WithCounterRemoved("poison", 1)
	assert.ErrorIs(t, err, ErrCounterUnderflow)
}
