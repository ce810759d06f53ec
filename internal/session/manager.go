// Package session tracks gateway sessions with lease-based expiry.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for lookups of unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session binds a connection to a user for the duration of a lease.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	LastSeen  time.Time
}

// Manager stores sessions and sweeps out those whose lease has lapsed.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	lease    time.Duration
	logger   *zap.Logger
}

// NewManager creates a session manager with the given lease period.
func NewManager(lease time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		lease:    lease,
		logger:   logger,
	}
}

// Create registers a new session for the user and returns it.
func (m *Manager) Create(userID string) *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		LastSeen:  now,
	}
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	m.logger.Debug("session created",
		zap.String("session_id", sess.ID),
		zap.String("user_id", userID),
	)
	return sess
}

// Get returns the session and refreshes its lease.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Since(sess.LastSeen) > m.lease {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess.LastSeen = time.Now()
	return sess, nil
}

// Remove deletes a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpiredSessions sweeps expired sessions until the context ends.
// Run it in its own goroutine.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) {
	ticker := time.NewTicker(m.lease / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	expired := 0
	for id, sess := range m.sessions {
		if time.Since(sess.LastSeen) > m.lease {
			delete(m.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		m.logger.Debug("expired sessions removed", zap.Int("count", expired))
	}
}
