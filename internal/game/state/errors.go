package state

import "errors"

// Validation and operation errors raised by the entity primitives.
// Actions wrap these with contextual detail; callers can match with errors.Is.
var (
	ErrInvalidID          = errors.New("invalid identifier")
	ErrEmptyName          = errors.New("name must not be empty")
	ErrInvalidVisibility  = errors.New("visibility must be public or private")
	ErrInvalidOrdering    = errors.New("order must be ordered or unordered")
	ErrInvalidZoneKind    = errors.New("unknown zone kind")
	ErrNegativeMaxSize    = errors.New("max size must not be negative")
	ErrZoneFull           = errors.New("zone is at maximum size")
	ErrCardAlreadyInZone  = errors.New("card is already in zone")
	ErrCardNotInZone      = errors.New("card not found in zone")
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrUnorderedShuffle   = errors.New("cannot shuffle an unordered zone")
	ErrNotEnoughCards     = errors.New("not enough cards in zone")
	ErrInvalidCounter     = errors.New("counter count must be positive")
	ErrCounterUnderflow   = errors.New("cannot remove more counters than present")
	ErrDanglingReference  = errors.New("reference to unknown entity")
	ErrDuplicateEntity    = errors.New("duplicate entity identifier")
	ErrInvalidTurn        = errors.New("turn number must be at least 1")
)
