package state

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/cardsmith/engine-go/internal/game/ids"
)

// ZoneKind discriminates the five specialized zone flavors. Kinds share the
// same shape and operations; they differ only in their construction defaults.
type ZoneKind string

const (
	ZoneKindDeck     ZoneKind = "deck"
	ZoneKindHand     ZoneKind = "hand"
	ZoneKindDiscard  ZoneKind = "discard"
	ZoneKindPlayArea ZoneKind = "playarea"
	ZoneKindStack    ZoneKind = "stack"
)

// Visibility controls whether a zone's contents are open information.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Ordering controls whether card positions within a zone are meaningful.
type Ordering string

const (
	Ordered   Ordering = "ordered"
	Unordered Ordering = "unordered"
)

// AppendPosition selects the end of the card list when adding a card.
const AppendPosition = -1

// Zone is an immutable container of card identifiers. The head of the card
// list (index 0) is the top of ordered zones.
type Zone struct {
	ID         ids.ZoneID
	Name       string
	Kind       ZoneKind
	Owner      ids.PlayerID // zero value means shared
	Cards      []ids.CardID
	Visibility Visibility
	Order      Ordering
	MaxSize    int // 0 means unlimited
}

// ZoneSpec carries the fields for constructing a zone.
type ZoneSpec struct {
	ID         ids.ZoneID
	Name       string
	Kind       ZoneKind
	Owner      ids.PlayerID
	Cards      []ids.CardID
	Visibility Visibility
	Order      Ordering
	MaxSize    int
}

// NewZone validates the spec and returns a zone.
func NewZone(spec ZoneSpec) (Zone, error) {
	if spec.ID.IsZero() {
		return Zone{}, fmt.Errorf("zone id: %w", ErrInvalidID)
	}
	if strings.TrimSpace(spec.Name) == "" {
		return Zone{}, fmt.Errorf("zone %s: %w", spec.ID, ErrEmptyName)
	}
	switch spec.Kind {
	case ZoneKindDeck, ZoneKindHand, ZoneKindDiscard, ZoneKindPlayArea, ZoneKindStack:
	default:
		return Zone{}, fmt.Errorf("zone %s kind %q: %w", spec.ID, spec.Kind, ErrInvalidZoneKind)
	}
	switch spec.Visibility {
	case VisibilityPublic, VisibilityPrivate:
	default:
		return Zone{}, fmt.Errorf("zone %s visibility %q: %w", spec.ID, spec.Visibility, ErrInvalidVisibility)
	}
	switch spec.Order {
	case Ordered, Unordered:
	default:
		return Zone{}, fmt.Errorf("zone %s order %q: %w", spec.ID, spec.Order, ErrInvalidOrdering)
	}
	if spec.MaxSize < 0 {
		return Zone{}, fmt.Errorf("zone %s: %w", spec.ID, ErrNegativeMaxSize)
	}
	if spec.MaxSize > 0 && len(spec.Cards) > spec.MaxSize {
		return Zone{}, fmt.Errorf("zone %s holds %d cards, max %d: %w",
			spec.ID, len(spec.Cards), spec.MaxSize, ErrZoneFull)
	}
	seen := make(map[ids.CardID]bool, len(spec.Cards))
	for _, cardID := range spec.Cards {
		if cardID.IsZero() {
			return Zone{}, fmt.Errorf("zone %s card id: %w", spec.ID, ErrInvalidID)
		}
		if seen[cardID] {
			return Zone{}, fmt.Errorf("zone %s card %s: %w", spec.ID, cardID, ErrDuplicateEntity)
		}
		seen[cardID] = true
	}
	return Zone{
		ID:         spec.ID,
		Name:       spec.Name,
		Kind:       spec.Kind,
		Owner:      spec.Owner,
		Cards:      copyCardIDs(spec.Cards),
		Visibility: spec.Visibility,
		Order:      spec.Order,
		MaxSize:    spec.MaxSize,
	}, nil
}

// NewDeck creates an owned deck zone: private, ordered.
func NewDeck(id ids.ZoneID, name string, owner ids.PlayerID) (Zone, error) {
	return NewZone(ZoneSpec{
		ID: id, Name: name, Kind: ZoneKindDeck, Owner: owner,
		Visibility: VisibilityPrivate, Order: Ordered,
	})
}

// NewHand creates an owned hand zone: private, unordered.
func NewHand(id ids.ZoneID, name string, owner ids.PlayerID) (Zone, error) {
	return NewZone(ZoneSpec{
		ID: id, Name: name, Kind: ZoneKindHand, Owner: owner,
		Visibility: VisibilityPrivate, Order: Unordered,
	})
}

// NewDiscard creates an owned discard pile: public, ordered.
func NewDiscard(id ids.ZoneID, name string, owner ids.PlayerID) (Zone, error) {
	return NewZone(ZoneSpec{
		ID: id, Name: name, Kind: ZoneKindDiscard, Owner: owner,
		Visibility: VisibilityPublic, Order: Ordered,
	})
}

// NewPlayArea creates a play area: public, unordered. A zero owner makes the
// area shared.
func NewPlayArea(id ids.ZoneID, name string, owner ids.PlayerID) (Zone, error) {
	return NewZone(ZoneSpec{
		ID: id, Name: name, Kind: ZoneKindPlayArea, Owner: owner,
		Visibility: VisibilityPublic, Order: Unordered,
	})
}

// NewStack creates the shared effect stack: public, ordered, unowned.
func NewStack(id ids.ZoneID, name string) (Zone, error) {
	return NewZone(ZoneSpec{
		ID: id, Name: name, Kind: ZoneKindStack,
		Visibility: VisibilityPublic, Order: Ordered,
	})
}

// IsShared reports whether the zone has no owning player.
func (z Zone) IsShared() bool { return z.Owner.IsZero() }

// IsFull reports whether the zone has reached its maximum size.
func (z Zone) IsFull() bool { return z.MaxSize > 0 && len(z.Cards) >= z.MaxSize }

// Len returns the number of cards in the zone.
func (z Zone) Len() int { return len(z.Cards) }

// Contains reports whether the zone holds the given card.
func (z Zone) Contains(cardID ids.CardID) bool { return z.indexOf(cardID) >= 0 }

func (z Zone) indexOf(cardID ids.CardID) int {
	for i, id := range z.Cards {
		if id == cardID {
			return i
		}
	}
	return -1
}

// WithCardAdded returns a copy with the card inserted at the given position.
// AppendPosition (or the list length) appends. Fails when the zone is at
// maximum size, already holds the card, or the position is out of range.
func (z Zone) WithCardAdded(cardID ids.CardID, position int) (Zone, error) {
	if cardID.IsZero() {
		return Zone{}, fmt.Errorf("zone %s: %w", z.ID, ErrInvalidID)
	}
	if z.IsFull() {
		return Zone{}, fmt.Errorf("zone %s (max %d): %w", z.ID, z.MaxSize, ErrZoneFull)
	}
	if z.Contains(cardID) {
		return Zone{}, fmt.Errorf("zone %s card %s: %w", z.ID, cardID, ErrCardAlreadyInZone)
	}
	if position == AppendPosition {
		position = len(z.Cards)
	}
	if position < 0 || position > len(z.Cards) {
		return Zone{}, fmt.Errorf("zone %s position %d: %w", z.ID, position, ErrPositionOutOfRange)
	}
	next := z.clone()
	cards := make([]ids.CardID, 0, len(z.Cards)+1)
	cards = append(cards, z.Cards[:position]...)
	cards = append(cards, cardID)
	cards = append(cards, z.Cards[position:]...)
	next.Cards = cards
	return next, nil
}

// WithCardRemoved returns a copy without the given card. Fails when the card
// is absent.
func (z Zone) WithCardRemoved(cardID ids.CardID) (Zone, error) {
	idx := z.indexOf(cardID)
	if idx < 0 {
		return Zone{}, fmt.Errorf("zone %s card %s: %w", z.ID, cardID, ErrCardNotInZone)
	}
	next := z.clone()
	cards := make([]ids.CardID, 0, len(z.Cards)-1)
	cards = append(cards, z.Cards[:idx]...)
	cards = append(cards, z.Cards[idx+1:]...)
	next.Cards = cards
	return next, nil
}

// WithCardMoved returns a copy with the card relocated to newPosition within
// the same zone. Fails when the card is absent or the position out of bounds.
func (z Zone) WithCardMoved(cardID ids.CardID, newPosition int) (Zone, error) {
	idx := z.indexOf(cardID)
	if idx < 0 {
		return Zone{}, fmt.Errorf("zone %s card %s: %w", z.ID, cardID, ErrCardNotInZone)
	}
	if newPosition < 0 || newPosition >= len(z.Cards) {
		return Zone{}, fmt.Errorf("zone %s position %d: %w", z.ID, newPosition, ErrPositionOutOfRange)
	}
	next := z.clone()
	cards := make([]ids.CardID, 0, len(z.Cards))
	cards = append(cards, z.Cards[:idx]...)
	cards = append(cards, z.Cards[idx+1:]...)
	tail := make([]ids.CardID, 0, len(z.Cards))
	tail = append(tail, cards[:newPosition]...)
	tail = append(tail, cardID)
	tail = append(tail, cards[newPosition:]...)
	next.Cards = tail
	return next, nil
}

// Shuffled returns a copy with the card list uniformly permuted
// (Fisher-Yates). A nil rng uses the shared math/rand source. Shuffling an
// unordered zone fails: without positions a shuffle is meaningless.
func (z Zone) Shuffled(rng *rand.Rand) (Zone, error) {
	if z.Order != Ordered {
		return Zone{}, fmt.Errorf("zone %s: %w", z.ID, ErrUnorderedShuffle)
	}
	next := z.clone()
	cards := copyCardIDs(z.Cards)
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if rng != nil {
		rng.Shuffle(len(cards), swap)
	} else {
		rand.Shuffle(len(cards), swap)
	}
	next.Cards = cards
	return next, nil
}

// Draw removes count cards from the top (index 0) or bottom of the zone,
// preserving their relative order, and returns them with the reduced zone.
// Fails when count is not positive or exceeds the cards available.
func (z Zone) Draw(count int, fromTop bool) ([]ids.CardID, Zone, error) {
	if count <= 0 {
		return nil, Zone{}, fmt.Errorf("zone %s draw %d: %w", z.ID, count, ErrPositionOutOfRange)
	}
	if count > len(z.Cards) {
		return nil, Zone{}, fmt.Errorf("zone %s has %d cards, drawing %d: %w",
			z.ID, len(z.Cards), count, ErrNotEnoughCards)
	}
	next := z.clone()
	var drawn, remaining []ids.CardID
	if fromTop {
		drawn = copyCardIDs(z.Cards[:count])
		remaining = copyCardIDs(z.Cards[count:])
	} else {
		cut := len(z.Cards) - count
		drawn = copyCardIDs(z.Cards[cut:])
		remaining = copyCardIDs(z.Cards[:cut])
	}
	next.Cards = remaining
	return drawn, next, nil
}

func (z Zone) clone() Zone {
	next := z
	next.Cards = copyCardIDs(z.Cards)
	return next
}

func copyCardIDs(cards []ids.CardID) []ids.CardID {
	if len(cards) == 0 {
		return nil
	}
	next := make([]ids.CardID, len(cards))
	copy(next, cards)
	return next
}
