package server

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cardsmith/engine-go/internal/game/ids"
)

// client is one websocket connection. Outbound messages go through the send
// channel so the write pump is the only writer on the connection.
type client struct {
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	gameID    ids.GameID
}

// hub tracks connected clients and fans game snapshots out to everyone
// watching the same game.
type hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	logger  *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		clients: make(map[*client]bool),
		logger:  logger,
	}
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.logger.Debug("client registered", zap.String("session_id", c.sessionID))
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.logger.Debug("client unregistered", zap.String("session_id", c.sessionID))
}

// broadcastToGame sends a message to every client subscribed to the game.
// Clients with a full send buffer are dropped rather than blocking the hub.
func (h *hub) broadcastToGame(gameID ids.GameID, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.gameID != gameID {
			continue
		}
		select {
		case c.send <- message:
		default:
			delete(h.clients, c)
			close(c.send)
			h.logger.Warn("slow client dropped", zap.String("session_id", c.sessionID))
		}
	}
}
