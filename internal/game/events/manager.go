package events

import (
	"fmt"
	"sort"

	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
)

// MaxCascadeDepth bounds how many generations of generated events one
// Process call will follow before recording ErrRecursionLimit. The bound is
// the sole protection against listeners that trigger each other forever.
const MaxCascadeDepth = 10

// Manager holds the priority-sorted listener registry and the pending event
// queue for one game. It is an immutable value like the entities: Subscribe,
// Unsubscribe and Publish return new managers.
type Manager struct {
	listeners  []Listener
	queue      []GameEvent
	processing bool
	maxQueue   int // 0 means unbounded
	logEvents  bool
	nextSeq    int
}

// NewManager creates an idle manager. maxQueue of 0 leaves the pending
// queue unbounded.
func NewManager(maxQueue int, logEvents bool) Manager {
	if maxQueue < 0 {
		maxQueue = 0
	}
	return Manager{maxQueue: maxQueue, logEvents: logEvents}
}

// Subscribe adds a listener, keeping the registry sorted by priority with
// ties in subscription order. Duplicate identifiers are rejected.
func (m Manager) Subscribe(listener Listener) (Manager, error) {
	if listener.ID.IsZero() {
		return Manager{}, fmt.Errorf("listener id: %w", ErrListenerNotFound)
	}
	if listener.Reaction == nil {
		return Manager{}, ErrNilReaction
	}
	for _, l := range m.listeners {
		if l.ID == listener.ID {
			return Manager{}, fmt.Errorf("listener %s: %w", listener.ID, ErrDuplicateListener)
		}
	}
	next := m.clone()
	listener.seq = next.nextSeq
	next.nextSeq++
	next.listeners = append(next.listeners, listener)
	sort.SliceStable(next.listeners, func(i, j int) bool {
		a, b := next.listeners[i], next.listeners[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.seq < b.seq
	})
	return next, nil
}

// Unsubscribe removes the listener with the given id, failing when absent.
func (m Manager) Unsubscribe(id ids.ListenerID) (Manager, error) {
	for i, l := range m.listeners {
		if l.ID == id {
			next := m.clone()
			next.listeners = append(next.listeners[:i:i], next.listeners[i+1:]...)
			return next, nil
		}
	}
	return Manager{}, fmt.Errorf("listener %s: %w", id, ErrListenerNotFound)
}

// Publish appends an event to the pending queue. Once the queue holds
// maxQueue events further publishes fail.
func (m Manager) Publish(event GameEvent) (Manager, error) {
	if event.Type == "" {
		return Manager{}, ErrEmptyEventType
	}
	if m.maxQueue > 0 && len(m.queue) >= m.maxQueue {
		return Manager{}, fmt.Errorf("queue holds %d events (max %d): %w",
			len(m.queue), m.maxQueue, ErrQueueFull)
	}
	next := m.clone()
	next.queue = append(next.queue, event)
	return next, nil
}

// Listeners returns a copy of the registry in dispatch order.
func (m Manager) Listeners() []Listener {
	return append([]Listener(nil), m.listeners...)
}

// ListenersFor returns the listeners registered for the given event type,
// in dispatch order.
func (m Manager) ListenersFor(eventType string) []Listener {
	var matched []Listener
	for _, l := range m.listeners {
		if l.EventType == eventType {
			matched = append(matched, l)
		}
	}
	return matched
}

// Pending returns the number of queued events.
func (m Manager) Pending() int { return len(m.queue) }

// Processing reports whether a Process call is in flight on this value.
func (m Manager) Processing() bool { return m.processing }

// LogEvents reports whether event processing should be logged by callers.
func (m Manager) LogEvents() bool { return m.logEvents }

func (m Manager) clone() Manager {
	next := m
	next.listeners = append([]Listener(nil), m.listeners...)
	next.queue = append([]GameEvent(nil), m.queue...)
	return next
}

// Result reports the outcome of one Process call: the (possibly unmodified)
// game, the drained idle manager, every event that was dispatched, every
// event generated by reactions, and all errors collected along the way.
// Errors here are non-fatal; they never abort the batch that produced them.
type Result struct {
	Game      state.Game
	Manager   Manager
	Processed []GameEvent
	Generated []GameEvent
	Errors    []error
}

// Process drains the manager's pending queue against the game snapshot.
//
// The queue is snapshotted and emptied atomically. Each event in the batch
// is dispatched to matching listeners in priority order; a panicking
// reaction is recovered, recorded, and does not stop later listeners or
// events. Events yielded by reactions form the next batch, followed up to
// MaxCascadeDepth generations; reaching the bound records ErrRecursionLimit
// instead of looping forever.
//
// Calling Process on a manager that is already processing fails immediately
// with ErrAlreadyProcessing and no state change. That check is the
// manager's sole concurrency guard: reactions must not re-enter Process.
func Process(m Manager, game state.Game) (Result, error) {
	if m.processing {
		return Result{}, ErrAlreadyProcessing
	}

	working := m.clone()
	working.processing = true

	batch := working.queue
	working.queue = nil

	result := Result{Game: game}

	// Explicit loop with a depth counter instead of recursion keeps stack
	// usage flat no matter how deep the cascade runs.
	for depth := 0; len(batch) > 0; {
		var generated []GameEvent
		for _, event := range batch {
			result.Processed = append(result.Processed, event)
			for _, listener := range working.listeners {
				if !listener.Matches(event) {
					continue
				}
				yielded, err := invoke(listener, event, game)
				if err != nil {
					result.Errors = append(result.Errors, err)
					continue
				}
				for _, raised := range yielded {
					if raised.Type == "" {
						result.Errors = append(result.Errors,
							fmt.Errorf("listener %s yielded event: %w", listener.ID, ErrEmptyEventType))
						continue
					}
					generated = append(generated, raised)
				}
			}
		}
		if len(generated) == 0 {
			break
		}
		result.Generated = append(result.Generated, generated...)
		depth++
		if depth >= MaxCascadeDepth {
			result.Errors = append(result.Errors,
				fmt.Errorf("aborting after %d generations: %w", depth, ErrRecursionLimit))
			break
		}
		batch = generated
	}

	working.processing = false
	result.Manager = working
	return result, nil
}

// invoke runs one reaction, converting a panic into a recorded error so a
// failing listener stays isolated from the rest of the batch.
func invoke(listener Listener, event GameEvent, game state.Game) (yielded []GameEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			yielded = nil
			err = fmt.Errorf("listener %s reaction to %s panicked: %v", listener.ID, event.Type, r)
		}
	}()
	return listener.Reaction.React(event, game), nil
}
