package state

import (
	"fmt"

	"github.com/cardsmith/engine-go/internal/game/ids"
)

// Game is the single aggregate root: all players, zones and cards of one
// game, plus turn and phase tracking, the distinguished effect stack and a
// free-form global property map. Like every entity in this package it is an
// immutable value; the action library replaces it wholesale.
type Game struct {
	ID               ids.GameID
	Players          []Player
	Zones            []Zone
	Cards            []Card
	CurrentPlayer    ids.PlayerID
	Phase            string
	Turn             int
	EffectStack      ids.ZoneID
	GlobalProperties map[string]any
}

// GameSpec carries the fields for constructing a game.
type GameSpec struct {
	ID               ids.GameID
	Players          []Player
	Zones            []Zone
	Cards            []Card
	CurrentPlayer    ids.PlayerID
	Phase            string
	Turn             int
	EffectStack      ids.ZoneID
	GlobalProperties map[string]any
}

// NewGame validates the spec and returns a game. Referential integrity is
// checked in full: every owner, current zone, zone membership and the
// current player must resolve to an entity inside the aggregate, so a
// constructed game can never carry a dangling reference.
func NewGame(spec GameSpec) (Game, error) {
	if spec.ID.IsZero() {
		return Game{}, fmt.Errorf("game id: %w", ErrInvalidID)
	}
	if spec.Turn < 1 {
		return Game{}, fmt.Errorf("game %s turn %d: %w", spec.ID, spec.Turn, ErrInvalidTurn)
	}

	players := make(map[ids.PlayerID]bool, len(spec.Players))
	for _, p := range spec.Players {
		if players[p.ID] {
			return Game{}, fmt.Errorf("game %s player %s: %w", spec.ID, p.ID, ErrDuplicateEntity)
		}
		players[p.ID] = true
	}
	zones := make(map[ids.ZoneID]*Zone, len(spec.Zones))
	for i := range spec.Zones {
		z := &spec.Zones[i]
		if zones[z.ID] != nil {
			return Game{}, fmt.Errorf("game %s zone %s: %w", spec.ID, z.ID, ErrDuplicateEntity)
		}
		zones[z.ID] = z
	}
	cards := make(map[ids.CardID]bool, len(spec.Cards))
	for _, c := range spec.Cards {
		if cards[c.ID] {
			return Game{}, fmt.Errorf("game %s card %s: %w", spec.ID, c.ID, ErrDuplicateEntity)
		}
		cards[c.ID] = true
	}

	if !spec.CurrentPlayer.IsZero() && !players[spec.CurrentPlayer] {
		return Game{}, fmt.Errorf("game %s current player %s: %w",
			spec.ID, spec.CurrentPlayer, ErrDanglingReference)
	}
	if !spec.EffectStack.IsZero() && zones[spec.EffectStack] == nil {
		return Game{}, fmt.Errorf("game %s effect stack %s: %w",
			spec.ID, spec.EffectStack, ErrDanglingReference)
	}
	for _, z := range spec.Zones {
		if !z.Owner.IsZero() && !players[z.Owner] {
			return Game{}, fmt.Errorf("game %s zone %s owner %s: %w",
				spec.ID, z.ID, z.Owner, ErrDanglingReference)
		}
		for _, cardID := range z.Cards {
			if !cards[cardID] {
				return Game{}, fmt.Errorf("game %s zone %s card %s: %w",
					spec.ID, z.ID, cardID, ErrDanglingReference)
			}
		}
	}
	for _, c := range spec.Cards {
		if !players[c.Owner] {
			return Game{}, fmt.Errorf("game %s card %s owner %s: %w",
				spec.ID, c.ID, c.Owner, ErrDanglingReference)
		}
		zone := zones[c.CurrentZone]
		if zone == nil {
			return Game{}, fmt.Errorf("game %s card %s zone %s: %w",
				spec.ID, c.ID, c.CurrentZone, ErrDanglingReference)
		}
		if !zone.Contains(c.ID) {
			return Game{}, fmt.Errorf("game %s card %s not listed by zone %s: %w",
				spec.ID, c.ID, c.CurrentZone, ErrDanglingReference)
		}
	}
	for _, p := range spec.Players {
		for _, zoneID := range p.Zones {
			if zones[zoneID] == nil {
				return Game{}, fmt.Errorf("game %s player %s zone %s: %w",
					spec.ID, p.ID, zoneID, ErrDanglingReference)
			}
		}
	}

	phase := spec.Phase
	if phase == "" {
		phase = "main"
	}
	return Game{
		ID:               spec.ID,
		Players:          clonePlayers(spec.Players),
		Zones:            cloneZones(spec.Zones),
		Cards:            cloneCards(spec.Cards),
		CurrentPlayer:    spec.CurrentPlayer,
		Phase:            phase,
		Turn:             spec.Turn,
		EffectStack:      spec.EffectStack,
		GlobalProperties: copyProperties(spec.GlobalProperties),
	}, nil
}

// Player returns the player with the given id.
func (g Game) Player(id ids.PlayerID) (Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Zone returns the zone with the given id.
func (g Game) Zone(id ids.ZoneID) (Zone, bool) {
	for _, z := range g.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// Card returns the card with the given id.
func (g Game) Card(id ids.CardID) (Card, bool) {
	for _, c := range g.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// FindZone returns the first zone of the given kind owned by the given
// player. A zero owner matches shared zones.
func (g Game) FindZone(kind ZoneKind, owner ids.PlayerID) (Zone, bool) {
	for _, z := range g.Zones {
		if z.Kind == kind && z.Owner == owner {
			return z, true
		}
	}
	return Zone{}, false
}

// GlobalProperty returns the named global property and whether it is present.
func (g Game) GlobalProperty(key string) (any, bool) {
	v, ok := g.GlobalProperties[key]
	return v, ok
}

// WithPlayer returns a copy with the matching player replaced.
func (g Game) WithPlayer(player Player) (Game, error) {
	for i, p := range g.Players {
		if p.ID == player.ID {
			next := g.clone()
			next.Players[i] = player
			return next, nil
		}
	}
	return Game{}, fmt.Errorf("game %s player %s: %w", g.ID, player.ID, ErrDanglingReference)
}

// WithZone returns a copy with the matching zone replaced.
func (g Game) WithZone(zone Zone) (Game, error) {
	for i, z := range g.Zones {
		if z.ID == zone.ID {
			next := g.clone()
			next.Zones[i] = zone
			return next, nil
		}
	}
	return Game{}, fmt.Errorf("game %s zone %s: %w", g.ID, zone.ID, ErrDanglingReference)
}

// WithZoneAdded returns a copy with a new zone appended. The zone's owner,
// if any, must already exist and gains the zone in its owned list.
func (g Game) WithZoneAdded(zone Zone) (Game, error) {
	if _, ok := g.Zone(zone.ID); ok {
		return Game{}, fmt.Errorf("game %s zone %s: %w", g.ID, zone.ID, ErrDuplicateEntity)
	}
	next := g.clone()
	if !zone.Owner.IsZero() {
		owner, ok := g.Player(zone.Owner)
		if !ok {
			return Game{}, fmt.Errorf("game %s zone %s owner %s: %w",
				g.ID, zone.ID, zone.Owner, ErrDanglingReference)
		}
		for i, p := range next.Players {
			if p.ID == owner.ID {
				next.Players[i] = p.WithZoneOwned(zone.ID)
			}
		}
	}
	next.Zones = append(next.Zones, zone)
	return next, nil
}

// WithCard returns a copy with the matching card replaced.
func (g Game) WithCard(card Card) (Game, error) {
	for i, c := range g.Cards {
		if c.ID == card.ID {
			next := g.clone()
			next.Cards[i] = card
			return next, nil
		}
	}
	return Game{}, fmt.Errorf("game %s card %s: %w", g.ID, card.ID, ErrDanglingReference)
}

// WithPhase returns a copy in the given phase.
func (g Game) WithPhase(phase string) Game {
	next := g.clone()
	next.Phase = phase
	return next
}

// WithTurn returns a copy at the given turn number.
func (g Game) WithTurn(turn int) (Game, error) {
	if turn < 1 {
		return Game{}, fmt.Errorf("game %s turn %d: %w", g.ID, turn, ErrInvalidTurn)
	}
	next := g.clone()
	next.Turn = turn
	return next, nil
}

// WithCurrentPlayer returns a copy with the turn handed to the given player.
func (g Game) WithCurrentPlayer(id ids.PlayerID) (Game, error) {
	if _, ok := g.Player(id); !ok {
		return Game{}, fmt.Errorf("game %s player %s: %w", g.ID, id, ErrDanglingReference)
	}
	next := g.clone()
	next.CurrentPlayer = id
	return next, nil
}

// WithGlobalProperty returns a copy with the named global property set.
func (g Game) WithGlobalProperty(key string, value any) Game {
	next := g.clone()
	if next.GlobalProperties == nil {
		next.GlobalProperties = make(map[string]any, 1)
	}
	next.GlobalProperties[key] = value
	return next
}

func (g Game) clone() Game {
	next := g
	next.Players = clonePlayers(g.Players)
	next.Zones = cloneZones(g.Zones)
	next.Cards = cloneCards(g.Cards)
	next.GlobalProperties = copyProperties(g.GlobalProperties)
	return next
}

func clonePlayers(players []Player) []Player {
	if len(players) == 0 {
		return nil
	}
	next := make([]Player, len(players))
	copy(next, players)
	return next
}

func cloneZones(zones []Zone) []Zone {
	if len(zones) == 0 {
		return nil
	}
	next := make([]Zone, len(zones))
	copy(next, zones)
	return next
}

func cloneCards(cards []Card) []Card {
	if len(cards) == 0 {
		return nil
	}
	next := make([]Card, len(cards))
	copy(next, cards)
	return next
}
