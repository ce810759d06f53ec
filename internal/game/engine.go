// Package game glues the immutable state engine together: it owns the live
// game snapshots, routes actions through the action library, and drives the
// reactive event cascade for each applied action.
package game

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cardsmith/engine-go/internal/game/actions"
	"github.com/cardsmith/engine-go/internal/game/events"
	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
)

var (
	// ErrGameNotFound is returned for operations on an unknown game id.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameExists is returned when creating a game with a taken id.
	ErrGameExists = errors.New("game already exists")
)

// Options tunes the event manager created for each game.
type Options struct {
	// MaxQueueSize bounds each game's pending event queue; 0 is unbounded.
	MaxQueueSize int
	// LogEvents enables debug logging of every processed event.
	LogEvents bool
}

// Engine manages live games. Each game pairs an immutable state snapshot
// with its own event manager; applying an action atomically replaces both.
type Engine struct {
	mu     sync.RWMutex
	logger *zap.Logger
	opts   Options
	games  map[ids.GameID]*record
}

type record struct {
	game    state.Game
	manager events.Manager
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger: logger,
		opts:   opts,
		games:  make(map[ids.GameID]*record),
	}
}

// CreateGame registers a validated game snapshot with a fresh event manager.
func (e *Engine) CreateGame(g state.Game) error {
	if g.ID.IsZero() {
		return fmt.Errorf("game id: %w", state.ErrInvalidID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.games[g.ID]; ok {
		return fmt.Errorf("game %s: %w", g.ID, ErrGameExists)
	}
	e.games[g.ID] = &record{
		game:    g,
		manager: events.NewManager(e.opts.MaxQueueSize, e.opts.LogEvents),
	}
	e.logger.Info("game created",
		zap.String("game_id", g.ID.String()),
		zap.Int("players", len(g.Players)),
		zap.Int("zones", len(g.Zones)),
		zap.Int("cards", len(g.Cards)),
	)
	return nil
}

// RemoveGame discards a game and its listeners.
func (e *Engine) RemoveGame(id ids.GameID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.games[id]; !ok {
		return fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	delete(e.games, id)
	e.logger.Info("game removed", zap.String("game_id", id.String()))
	return nil
}

// Game returns the current snapshot of a game.
func (e *Engine) Game(id ids.GameID) (state.Game, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.games[id]
	if !ok {
		return state.Game{}, fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	return rec.game, nil
}

// CanApply reports whether the action would succeed against the current
// snapshot.
func (e *Engine) CanApply(id ids.GameID, action actions.Action) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.games[id]
	if !ok {
		return false
	}
	return actions.CanExecute(rec.game, action)
}

// Apply executes an action, publishes the events it raised, drains the
// cascade through the game's listeners, and stores the resulting snapshot.
// The returned result carries the processed and generated events plus any
// listener errors, all of which are non-fatal.
func (e *Engine) Apply(id ids.GameID, action actions.Action) (state.Game, events.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.games[id]
	if !ok {
		return state.Game{}, events.Result{}, fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}

	next, raised, err := actions.Execute(rec.game, action)
	if err != nil {
		e.logger.Debug("action rejected",
			zap.String("game_id", id.String()),
			zap.String("kind", string(action.Kind)),
			zap.Error(err),
		)
		return state.Game{}, events.Result{}, err
	}

	manager := rec.manager
	for _, event := range raised {
		published, err := manager.Publish(event)
		if err != nil {
			// Queue overflow is non-fatal to the action: the state change
			// stands, the notification is dropped and logged.
			e.logger.Warn("event dropped",
				zap.String("game_id", id.String()),
				zap.String("event_type", event.Type),
				zap.Error(err),
			)
			continue
		}
		manager = published
	}

	result, err := events.Process(manager, next)
	if err != nil {
		return state.Game{}, events.Result{}, err
	}

	rec.game = result.Game
	rec.manager = result.Manager

	if rec.manager.LogEvents() {
		for _, event := range result.Processed {
			e.logger.Debug("event processed",
				zap.String("game_id", id.String()),
				zap.String("event", event.String()),
			)
		}
	}
	for _, procErr := range result.Errors {
		e.logger.Warn("listener error",
			zap.String("game_id", id.String()),
			zap.Error(procErr),
		)
	}
	e.logger.Info("action applied",
		zap.String("game_id", id.String()),
		zap.String("kind", string(action.Kind)),
		zap.Int("events_processed", len(result.Processed)),
		zap.Int("events_generated", len(result.Generated)),
		zap.Int("listener_errors", len(result.Errors)),
	)
	return rec.game, result, nil
}

// PublishEvent enqueues an externally raised event and drains the cascade.
func (e *Engine) PublishEvent(id ids.GameID, event events.GameEvent) (events.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.games[id]
	if !ok {
		return events.Result{}, fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	manager, err := rec.manager.Publish(event)
	if err != nil {
		return events.Result{}, err
	}
	result, err := events.Process(manager, rec.game)
	if err != nil {
		return events.Result{}, err
	}
	rec.game = result.Game
	rec.manager = result.Manager
	return result, nil
}

// AttachListener subscribes a listener to a game's event manager.
func (e *Engine) AttachListener(id ids.GameID, listener events.Listener) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.games[id]
	if !ok {
		return fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	manager, err := rec.manager.Subscribe(listener)
	if err != nil {
		return err
	}
	rec.manager = manager
	e.logger.Info("listener attached",
		zap.String("game_id", id.String()),
		zap.String("listener_id", listener.ID.String()),
		zap.String("event_type", listener.EventType),
		zap.Int("priority", listener.Priority),
	)
	return nil
}

// DetachListener removes a listener from a game's event manager.
func (e *Engine) DetachListener(id ids.GameID, listenerID ids.ListenerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.games[id]
	if !ok {
		return fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	manager, err := rec.manager.Unsubscribe(listenerID)
	if err != nil {
		return err
	}
	rec.manager = manager
	e.logger.Info("listener detached",
		zap.String("game_id", id.String()),
		zap.String("listener_id", listenerID.String()),
	)
	return nil
}

// ActiveListeners returns copies of a game's listeners, optionally filtered
// by event type. The manager's internals are never exposed.
func (e *Engine) ActiveListeners(id ids.GameID, eventType string) ([]events.Listener, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	if eventType == "" {
		return rec.manager.Listeners(), nil
	}
	return rec.manager.ListenersFor(eventType), nil
}
