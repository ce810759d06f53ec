package events

import (
	"errors"
	"testing"

	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
)

func mustEvent(t *testing.T, eventType string, payload map[string]any) GameEvent {
	t.Helper()
	event, err := NewSystemEvent(eventType, payload)
	if err != nil {
		t.Fatalf("NewSystemEvent(%s): %v", eventType, err)
	}
	return event
}

func mustListener(t *testing.T, eventType string, reaction ReactionFunc) Listener {
	t.Helper()
	listener, err := NewListener(eventType, reaction)
	if err != nil {
		t.Fatalf("NewListener(%s): %v", eventType, err)
	}
	return listener
}

func noop(GameEvent, state.Game) []GameEvent { return nil }

func TestNewGameEventValidation(t *testing.T) {
	if _, err := NewSystemEvent("  ", nil); !errors.Is(err, ErrEmptyEventType) {
		t.Fatalf("expected ErrEmptyEventType, got %v", err)
	}
	event := mustEvent(t, "CARD_PLAYED", map[string]any{"cardId": "c1"})
	if event.ID.IsZero() {
		t.Fatal("event must receive an id")
	}
	if !event.IsSystem() {
		t.Fatal("event without source must be a system event")
	}
	player := ids.NewPlayerID()
	owned, err := NewGameEvent("CARD_PLAYED", nil, player)
	if err != nil {
		t.Fatalf("NewGameEvent: %v", err)
	}
	if owned.IsSystem() {
		t.Fatal("event with a source must not be a system event")
	}
}

func TestEventPayloadIsCopied(t *testing.T) {
	payload := map[string]any{"cardId": "c1"}
	event := mustEvent(t, "CARD_PLAYED", payload)
	payload["cardId"] = "c2"
	if event.Payload["cardId"] != "c1" {
		t.Fatalf("payload mutation leaked into event: %v", event.Payload)
	}
}

func TestSubscribeRejectsDuplicates(t *testing.T) {
	m := NewManager(0, false)
	listener := mustListener(t, "CARD_PLAYED", noop)

	m, err := m.Subscribe(listener)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, err := m.Subscribe(listener); !errors.Is(err, ErrDuplicateListener) {
		t.Fatalf("expected ErrDuplicateListener, got %v", err)
	}
}

func TestSubscribeDoesNotMutateOriginal(t *testing.T) {
	m := NewManager(0, false)
	next, err := m.Subscribe(mustListener(t, "CARD_PLAYED", noop))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(m.Listeners()) != 0 {
		t.Fatal("original manager must be unchanged")
	}
	if len(next.Listeners()) != 1 {
		t.Fatal("new manager must hold the listener")
	}
}

func TestUnsubscribe(t *testing.T) {
	m := NewManager(0, false)
	listener := mustListener(t, "CARD_PLAYED", noop)
	m, err := m.Subscribe(listener)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	m, err = m.Unsubscribe(listener.ID)
	if err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if len(m.Listeners()) != 0 {
		t.Fatal("listener must be gone")
	}
	if _, err := m.Unsubscribe(listener.ID); !errors.Is(err, ErrListenerNotFound) {
		t.Fatalf("expected ErrListenerNotFound, got %v", err)
	}
}

func TestListenersSortedByPriorityThenSubscription(t *testing.T) {
	m := NewManager(0, false)
	late := mustListener(t, "CARD_PLAYED", noop).WithPriority(2)
	early := mustListener(t, "CARD_PLAYED", noop).WithPriority(1)
	tied := mustListener(t, "CARD_PLAYED", noop).WithPriority(1)

	var err error
	for _, l := range []Listener{late, early, tied} {
		if m, err = m.Subscribe(l); err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
	}

	got := m.ListenersFor("CARD_PLAYED")
	want := []ids.ListenerID{early.ID, tied.ID, late.ID}
	if len(got) != len(want) {
		t.Fatalf("got %d listeners, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestPublishQueueOverflow(t *testing.T) {
	m := NewManager(2, false)
	var err error
	for i := 0; i < 2; i++ {
		if m, err = m.Publish(mustEvent(t, "CARD_PLAYED", nil)); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}
	if m.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", m.Pending())
	}
	if _, err := m.Publish(mustEvent(t, "CARD_PLAYED", nil)); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestProcessDispatchesInPriorityOrder(t *testing.T) {
	m := NewManager(0, false)
	var order []string

	second := mustListener(t, "CARD_PLAYED", func(GameEvent, state.Game) []GameEvent {
		order = append(order, "second")
		return nil
	}).WithPriority(2)
	first := mustListener(t, "CARD_PLAYED", func(GameEvent, state.Game) []GameEvent {
		order = append(order, "first")
		return nil
	}).WithPriority(1)

	var err error
	// Subscribe the higher priority number first to prove sorting, not
	// subscription order, decides dispatch.
	for _, l := range []Listener{second, first} {
		if m, err = m.Subscribe(l); err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
	}
	if m, err = m.Publish(mustEvent(t, "CARD_PLAYED", nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	result, err := Process(m, state.Game{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("dispatch order = %v, want [first second]", order)
	}
}

func TestProcessConditionFiltering(t *testing.T) {
	m := NewManager(0, false)
	calls := 0

	listener := mustListener(t, "STAT_MODIFIED", func(GameEvent, state.Game) []GameEvent {
		calls++
		return nil
	}).WithCondition(func(e GameEvent) bool {
		return e.Payload["stat"] == "life"
	})

	m, err := m.Subscribe(listener)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if m, err = m.Publish(mustEvent(t, "STAT_MODIFIED", map[string]any{"stat": "mana"})); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if m, err = m.Publish(mustEvent(t, "STAT_MODIFIED", map[string]any{"stat": "life"})); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	result, err := Process(m, state.Game{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if calls != 1 {
		t.Fatalf("condition let through %d events, want 1", calls)
	}
	if len(result.Processed) != 2 {
		t.Fatalf("processed %d events, want 2", len(result.Processed))
	}
}

func TestProcessCascade(t *testing.T) {
	m := NewManager(0, false)

	// CARD_PLAYED triggers DAMAGE_DEALT, which a second listener observes.
	var damaged []string
	trigger := mustListener(t, "CARD_PLAYED", func(e GameEvent, _ state.Game) []GameEvent {
		event, err := NewSystemEvent("DAMAGE_DEALT", map[string]any{"amount": 3})
		if err != nil {
			t.Fatalf("NewSystemEvent: %v", err)
		}
		return []GameEvent{event}
	})
	observer := mustListener(t, "DAMAGE_DEALT", func(e GameEvent, _ state.Game) []GameEvent {
		damaged = append(damaged, e.Type)
		return nil
	})

	var err error
	for _, l := range []Listener{trigger, observer} {
		if m, err = m.Subscribe(l); err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
	}
	if m, err = m.Publish(mustEvent(t, "CARD_PLAYED", nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	result, err := Process(m, state.Game{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(damaged) != 1 {
		t.Fatalf("observer saw %d events, want 1", len(damaged))
	}
	if len(result.Processed) != 2 {
		t.Fatalf("processed %d events, want 2 (trigger + cascade)", len(result.Processed))
	}
	if len(result.Generated) != 1 || result.Generated[0].Type != "DAMAGE_DEALT" {
		t.Fatalf("generated = %v, want one DAMAGE_DEALT", result.Generated)
	}
	if result.Manager.Pending() != 0 {
		t.Fatalf("queue must be drained, %d pending", result.Manager.Pending())
	}
}

func TestProcessRecursionLimit(t *testing.T) {
	m := NewManager(0, false)

	// A listener that reacts to PING with another PING would cascade forever
	// without the depth bound.
	listener := mustListener(t, "PING", func(GameEvent, state.Game) []GameEvent {
		event, err := NewSystemEvent("PING", nil)
		if err != nil {
			t.Fatalf("NewSystemEvent: %v", err)
		}
		return []GameEvent{event}
	})

	m, err := m.Subscribe(listener)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if m, err = m.Publish(mustEvent(t, "PING", nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	result, err := Process(m, state.Game{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	limited := false
	for _, e := range result.Errors {
		if errors.Is(e, ErrRecursionLimit) {
			limited = true
		}
	}
	if !limited {
		t.Fatalf("expected ErrRecursionLimit in %v", result.Errors)
	}
	if len(result.Processed) != MaxCascadeDepth {
		t.Fatalf("processed %d generations, want %d", len(result.Processed), MaxCascadeDepth)
	}
}

func TestProcessReentrancyGuard(t *testing.T) {
	m := NewManager(0, false)
	m.processing = true

	if _, err := Process(m, state.Game{}); !errors.Is(err, ErrAlreadyProcessing) {
		t.Fatalf("expected ErrAlreadyProcessing, got %v", err)
	}
}

func TestProcessIsolatesPanickingListener(t *testing.T) {
	m := NewManager(0, false)
	survived := false

	panicking := mustListener(t, "CARD_PLAYED", func(GameEvent, state.Game) []GameEvent {
		panic("boom")
	}).WithPriority(1)
	healthy := mustListener(t, "CARD_PLAYED", func(GameEvent, state.Game) []GameEvent {
		survived = true
		return nil
	}).WithPriority(2)

	var err error
	for _, l := range []Listener{panicking, healthy} {
		if m, err = m.Subscribe(l); err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
	}
	if m, err = m.Publish(mustEvent(t, "CARD_PLAYED", nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	result, err := Process(m, state.Game{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !survived {
		t.Fatal("panic must not stop later listeners")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one recorded error, got %v", result.Errors)
	}
	if result.Manager.Processing() {
		t.Fatal("returned manager must be idle")
	}
}

func TestProcessRejectsUntypedGeneratedEvents(t *testing.T) {
	m := NewManager(0, false)

	listener := mustListener(t, "CARD_PLAYED", func(GameEvent, state.Game) []GameEvent {
		return []GameEvent{{}}
	})
	m, err := m.Subscribe(listener)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if m, err = m.Publish(mustEvent(t, "CARD_PLAYED", nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	result, err := Process(m, state.Game{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], ErrEmptyEventType) {
		t.Fatalf("expected ErrEmptyEventType, got %v", result.Errors)
	}
	if len(result.Generated) != 0 {
		t.Fatalf("untyped event must not be cascaded: %v", result.Generated)
	}
}

func TestProcessEmptyQueueIsNoop(t *testing.T) {
	m := NewManager(0, false)
	result, err := Process(m, state.Game{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Processed) != 0 || len(result.Generated) != 0 || len(result.Errors) != 0 {
		t.Fatalf("empty queue must process nothing: %+v", result)
	}
}
