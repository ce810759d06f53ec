// Package ids provides opaque, typed identifiers for the entities managed by
// the engine. Each identifier kind is a distinct Go type so that a CardID can
// never be passed where a ZoneID is expected, even though both wrap a string.
package ids

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyID is returned when parsing an empty or blank identifier.
var ErrEmptyID = errors.New("identifier must not be empty")

// GameID identifies a game aggregate.
type GameID string

// PlayerID identifies a player within a game.
type PlayerID string

// CardID identifies a card within a game.
type CardID string

// ZoneID identifies a zone within a game.
type ZoneID string

// ListenerID identifies a registered event listener.
type ListenerID string

// EventID identifies a single game event instance.
type EventID string

// NewGameID generates a fresh game identifier.
func NewGameID() GameID { return GameID(uuid.NewString()) }

// NewPlayerID generates a fresh player identifier.
func NewPlayerID() PlayerID { return PlayerID(uuid.NewString()) }

// NewCardID generates a fresh card identifier.
func NewCardID() CardID { return CardID(uuid.NewString()) }

// NewZoneID generates a fresh zone identifier.
func NewZoneID() ZoneID { return ZoneID(uuid.NewString()) }

// NewListenerID generates a fresh listener identifier.
func NewListenerID() ListenerID { return ListenerID(uuid.NewString()) }

// NewEventID generates a fresh event identifier.
func NewEventID() EventID { return EventID(uuid.NewString()) }

func parse(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrEmptyID
	}
	return trimmed, nil
}

// ParseGameID validates an externally supplied game identifier.
// Identifiers are opaque: any non-blank string is accepted.
func ParseGameID(value string) (GameID, error) {
	v, err := parse(value)
	return GameID(v), err
}

// ParsePlayerID validates an externally supplied player identifier.
func ParsePlayerID(value string) (PlayerID, error) {
	v, err := parse(value)
	return PlayerID(v), err
}

// ParseCardID validates an externally supplied card identifier.
func ParseCardID(value string) (CardID, error) {
	v, err := parse(value)
	return CardID(v), err
}

// ParseZoneID validates an externally supplied zone identifier.
func ParseZoneID(value string) (ZoneID, error) {
	v, err := parse(value)
	return ZoneID(v), err
}

// ParseListenerID validates an externally supplied listener identifier.
func ParseListenerID(value string) (ListenerID, error) {
	v, err := parse(value)
	return ListenerID(v), err
}

func (id GameID) String() string     { return string(id) }
func (id PlayerID) String() string   { return string(id) }
func (id CardID) String() string     { return string(id) }
func (id ZoneID) String() string     { return string(id) }
func (id ListenerID) String() string { return string(id) }
func (id EventID) String() string    { return string(id) }

// IsZero reports whether the identifier is unset.
func (id GameID) IsZero() bool     { return id == "" }
func (id PlayerID) IsZero() bool   { return id == "" }
func (id CardID) IsZero() bool     { return id == "" }
func (id ZoneID) IsZero() bool     { return id == "" }
func (id ListenerID) IsZero() bool { return id == "" }
func (id EventID) IsZero() bool    { return id == "" }
