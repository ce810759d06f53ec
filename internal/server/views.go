package server

import (
	"github.com/cardsmith/engine-go/internal/game/events"
	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
)

// View types are the JSON shapes sent to clients. They are built fresh from
// each immutable snapshot; clients re-render from them and never see engine
// internals.

type CounterView struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type CardView struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	RulesText  string         `json:"rulesText,omitempty"`
	Type       string         `json:"type,omitempty"`
	Owner      string         `json:"owner"`
	Zone       string         `json:"zone"`
	Properties map[string]any `json:"properties,omitempty"`
	Counters   []CounterView  `json:"counters,omitempty"`
	Tapped     bool           `json:"tapped"`
}

type ZoneView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Owner      string   `json:"owner,omitempty"`
	Cards      []string `json:"cards"`
	Visibility string   `json:"visibility"`
	Order      string   `json:"order"`
	MaxSize    int      `json:"maxSize,omitempty"`
}

type PlayerView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Resources map[string]int `json:"resources,omitempty"`
	Zones     []string       `json:"zones"`
	Counters  []CounterView  `json:"counters,omitempty"`
}

type GameView struct {
	ID            string       `json:"id"`
	Players       []PlayerView `json:"players"`
	Zones         []ZoneView   `json:"zones"`
	Cards         []CardView   `json:"cards"`
	CurrentPlayer string       `json:"currentPlayer"`
	Phase         string       `json:"phase"`
	Turn          int          `json:"turn"`
	EffectStack   string       `json:"effectStack,omitempty"`
}

type ListenerView struct {
	ID        string `json:"id"`
	EventType string `json:"eventType"`
	Priority  int    `json:"priority"`
	HasFilter bool   `json:"hasFilter"`
}

type EventView struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Source    string         `json:"source"`
	Timestamp string         `json:"timestamp"`
}

func buildGameView(g state.Game) GameView {
	view := GameView{
		ID:            g.ID.String(),
		CurrentPlayer: g.CurrentPlayer.String(),
		Phase:         g.Phase,
		Turn:          g.Turn,
		EffectStack:   g.EffectStack.String(),
	}
	for _, p := range g.Players {
		view.Players = append(view.Players, PlayerView{
			ID:        p.ID.String(),
			Name:      p.Name,
			Resources: p.Resources,
			Zones:     zoneIDStrings(p.Zones),
			Counters:  buildCounterViews(p.Counters),
		})
	}
	for _, z := range g.Zones {
		view.Zones = append(view.Zones, ZoneView{
			ID:         z.ID.String(),
			Name:       z.Name,
			Kind:       string(z.Kind),
			Owner:      z.Owner.String(),
			Cards:      cardIDStrings(z.Cards),
			Visibility: string(z.Visibility),
			Order:      string(z.Order),
			MaxSize:    z.MaxSize,
		})
	}
	for _, c := range g.Cards {
		view.Cards = append(view.Cards, CardView{
			ID:         c.ID.String(),
			Name:       c.Name,
			RulesText:  c.RulesText,
			Type:       c.Type,
			Owner:      c.Owner.String(),
			Zone:       c.CurrentZone.String(),
			Properties: c.Properties,
			Counters:   buildCounterViews(c.Counters),
			Tapped:     c.Tapped,
		})
	}
	return view
}

func buildCounterViews(counters []state.Counter) []CounterView {
	views := make([]CounterView, 0, len(counters))
	for _, c := range counters {
		views = append(views, CounterView{Type: c.Type, Count: c.Count})
	}
	return views
}

func buildListenerViews(listeners []events.Listener) []ListenerView {
	views := make([]ListenerView, 0, len(listeners))
	for _, l := range listeners {
		views = append(views, ListenerView{
			ID:        l.ID.String(),
			EventType: l.EventType,
			Priority:  l.Priority,
			HasFilter: l.Condition != nil,
		})
	}
	return views
}

func buildEventViews(evts []events.GameEvent) []EventView {
	views := make([]EventView, 0, len(evts))
	for _, e := range evts {
		source := "system"
		if !e.Source.IsZero() {
			source = e.Source.String()
		}
		views = append(views, EventView{
			ID:        e.ID.String(),
			Type:      e.Type,
			Payload:   e.Payload,
			Source:    source,
			Timestamp: e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}
	return views
}

func zoneIDStrings(zones []ids.ZoneID) []string {
	out := make([]string, len(zones))
	for i, id := range zones {
		out[i] = id.String()
	}
	return out
}

func cardIDStrings(cards []ids.CardID) []string {
	out := make([]string, len(cards))
	for i, id := range cards {
		out[i] = id.String()
	}
	return out
}
