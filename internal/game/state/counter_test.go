package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCounterValidation(t *testing.T) {
	_, err := NewCounter("", 1)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = NewCounter("charge", 0)
	assert.ErrorIs(t, err, ErrInvalidCounter)

	_, err = NewCounter("charge", -2)
	assert.ErrorIs(t, err, ErrInvalidCounter)

	c, err := NewCounter("charge", 3)
	require.NoError(t, err)
	assert.Equal(t, "charge", c.Type)
	assert.Equal(t, 3, c.Count)
}

func TestAddCounterMergesSameType(t *testing.T) {
	counters, err := addCounter(nil, "+1/+1", 2)
	require.NoError(t, err)
	counters, err = addCounter(counters, "+1/+1", 3)
	require.NoError(t, err)

	require.Len(t, counters, 1)
	assert.Equal(t, 5, counters[0].Count)
}

func TestRemoveCounterUnderflow(t *testing.T) {
	counters, err := addCounter(nil, "poison", 2)
	require.NoError(t, err)

	_, err = removeCounter(counters, "poison", 3)
	assert.ErrorIs(t, err, ErrCounterUnderflow)

	_, err = removeCounter(counters, "charge", 1)
	assert.ErrorIs(t, err, ErrCounterUnderflow)
}

func TestRemoveCounterToZeroDeletesEntry(t *testing.T) {
	counters, err := addCounter(nil, "poison", 2)
	require.NoError(t, err)

	counters, err = removeCounter(counters, "poison", 2)
	require.NoError(t, err)
	assert.Empty(t, counters)
	assert.Equal(t, 0, counterCount(counters, "poison"))
}

func TestRemoveCounterPartial(t *testing.T) {
	counters, err := addCounter(nil, "charge", 5)
	require.NoError(t, err)

	counters, err = removeCounter(counters, "charge", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, counterCount(counters, "charge"))
}

func TestAddCounterDoesNotMutateInput(t *testing.T) {
	original, err := addCounter(nil, "charge", 1)
	require.NoError(t, err)

	_, err = addCounter(original, "charge", 9)
	require.NoError(t, err)
	assert.Equal(t, 1, original[0].Count)
}
