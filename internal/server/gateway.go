// Package server exposes the engine over a websocket gateway. Clients send
// JSON requests (execute an action, attach a rule, fetch a view) and receive
// responses plus broadcast snapshots of any game they watch.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cardsmith/engine-go/internal/auth"
	"github.com/cardsmith/engine-go/internal/game"
	"github.com/cardsmith/engine-go/internal/game/actions"
	"github.com/cardsmith/engine-go/internal/game/ids"
	"github.com/cardsmith/engine-go/internal/game/state"
	"github.com/cardsmith/engine-go/internal/repository"
	"github.com/cardsmith/engine-go/internal/rules"
	"github.com/cardsmith/engine-go/internal/session"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// Message is the envelope for every request and response on the socket.
type Message struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	GameID    string          `json:"gameId,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ActionRequest is the JSON form of an engine action.
type ActionRequest struct {
	Kind        string   `json:"kind"`
	PlayerID    string   `json:"playerId,omitempty"`
	CardID      string   `json:"cardId,omitempty"`
	FromZoneID  string   `json:"fromZoneId,omitempty"`
	ToZoneID    string   `json:"toZoneId,omitempty"`
	ZoneID      string   `json:"zoneId,omitempty"`
	Position    *int     `json:"position,omitempty"`
	Count       int      `json:"count,omitempty"`
	Stat        string   `json:"stat,omitempty"`
	Delta       int      `json:"delta,omitempty"`
	CounterType string   `json:"counterType,omitempty"`
	Phase       string   `json:"phase,omitempty"`
	Targets     []string `json:"targets,omitempty"`
}

// Gateway serves the websocket endpoint and routes client requests into the
// engine, the rule interpreter and the project repository.
type Gateway struct {
	engine   *game.Engine
	hub      *hub
	sessions *session.Manager
	verifier *auth.Verifier
	projects *repository.ProjectRepository
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewGateway wires the gateway. The project repository may be nil when the
// server runs without persistence.
func NewGateway(engine *game.Engine, sessions *session.Manager, verifier *auth.Verifier,
	projects *repository.ProjectRepository, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		engine:   engine,
		hub:      newHub(logger),
		sessions: sessions,
		verifier: verifier,
		projects: projects,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the connection. The api key, when verification is
// enabled, comes in the X-Api-Key header; a session is minted per
// connection.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	if err := g.verifier.Verify(r.Header.Get("X-Api-Key")); err != nil {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
		return
	}
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	sess := g.sessions.Create(r.URL.Query().Get("user"))
	c := &client{
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sess.ID,
	}
	g.hub.register(c)
	go g.writePump(c)
	go g.readPump(c)
}

func (g *Gateway) readPump(c *client) {
	defer func() {
		g.hub.unregister(c)
		g.sessions.Remove(c.sessionID)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			g.reply(c, Message{Type: "error", Error: "malformed message"})
			continue
		}
		g.handleMessage(c, msg)
	}
}

func (g *Gateway) writePump(c *client) {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, nil)
}

func (g *Gateway) reply(c *client, msg Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		g.logger.Error("marshal reply", zap.Error(err))
		return
	}
	select {
	case c.send <- raw:
	default:
		g.logger.Warn("reply dropped, send buffer full", zap.String("session_id", c.sessionID))
	}
}

func (g *Gateway) replyError(c *client, msg Message, err error) {
	g.reply(c, Message{Type: msg.Type + "_result", RequestID: msg.RequestID, GameID: msg.GameID, Error: err.Error()})
}

func (g *Gateway) replyData(c *client, msg Message, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	g.reply(c, Message{Type: msg.Type + "_result", RequestID: msg.RequestID, GameID: msg.GameID, Data: raw})
}

func (g *Gateway) handleMessage(c *client, msg Message) {
	switch msg.Type {
	case "watch_game":
		g.handleWatch(c, msg)
	case "load_project":
		g.handleLoadProject(c, msg)
	case "get_view":
		g.handleGetView(c, msg)
	case "can_execute":
		g.handleCanExecute(c, msg)
	case "execute_action":
		g.handleExecuteAction(c, msg)
	case "attach_rule":
		g.handleAttachRule(c, msg)
	case "detach_rule":
		g.handleDetachRule(c, msg)
	case "list_rules":
		g.handleListRules(c, msg)
	default:
		g.reply(c, Message{Type: "error", RequestID: msg.RequestID, Error: "unknown message type " + msg.Type})
	}
}

func (g *Gateway) handleWatch(c *client, msg Message) {
	gameID, err := ids.ParseGameID(msg.GameID)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	if _, err := g.engine.Game(gameID); err != nil {
		g.replyError(c, msg, err)
		return
	}
	c.gameID = gameID
	g.replyData(c, msg, map[string]any{"watching": gameID.String()})
}

func (g *Gateway) handleLoadProject(c *client, msg Message) {
	if g.projects == nil {
		g.reply(c, Message{Type: "load_project_result", RequestID: msg.RequestID, Error: "persistence disabled"})
		return
	}
	var req struct {
		ProjectID  string `json:"projectId"`
		PlayerName string `json:"playerName"`
	}
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		g.replyError(c, msg, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	project, err := g.projects.Get(ctx, req.ProjectID)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	loaded, err := repository.Rehydrate(project, req.PlayerName)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	if err := g.engine.CreateGame(loaded.Game); err != nil {
		g.replyError(c, msg, err)
		return
	}
	for _, listener := range loaded.Listeners {
		if err := g.engine.AttachListener(loaded.Game.ID, listener); err != nil {
			g.replyError(c, msg, err)
			return
		}
	}
	c.gameID = loaded.Game.ID
	g.replyData(c, msg, buildGameView(loaded.Game))
}

func (g *Gateway) handleGetView(c *client, msg Message) {
	gameID, err := ids.ParseGameID(msg.GameID)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	snapshot, err := g.engine.Game(gameID)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	g.replyData(c, msg, buildGameView(snapshot))
}

func (g *Gateway) handleCanExecute(c *client, msg Message) {
	gameID, action, err := g.decodeAction(msg)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	g.replyData(c, msg, map[string]any{"canExecute": g.engine.CanApply(gameID, action)})
}

func (g *Gateway) handleExecuteAction(c *client, msg Message) {
	gameID, action, err := g.decodeAction(msg)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	snapshot, result, err := g.engine.Apply(gameID, action)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	listenerErrors := make([]string, 0, len(result.Errors))
	for _, procErr := range result.Errors {
		listenerErrors = append(listenerErrors, procErr.Error())
	}
	g.replyData(c, msg, map[string]any{
		"game":            buildGameView(snapshot),
		"processedEvents": buildEventViews(result.Processed),
		"generatedEvents": buildEventViews(result.Generated),
		"listenerErrors":  listenerErrors,
	})
	g.broadcastSnapshot(gameID, snapshot)
}

func (g *Gateway) handleAttachRule(c *client, msg Message) {
	gameID, err := ids.ParseGameID(msg.GameID)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	var spec rules.ListenerSpec
	if err := json.Unmarshal(msg.Data, &spec); err != nil {
		g.replyError(c, msg, err)
		return
	}
	listener, err := rules.Compile(spec)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	if err := g.engine.AttachListener(gameID, listener); err != nil {
		g.replyError(c, msg, err)
		return
	}
	g.replyData(c, msg, map[string]any{"listenerId": listener.ID.String()})
}

func (g *Gateway) handleDetachRule(c *client, msg Message) {
	gameID, err := ids.ParseGameID(msg.GameID)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	var req struct {
		ListenerID string `json:"listenerId"`
	}
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		g.replyError(c, msg, err)
		return
	}
	listenerID, err := ids.ParseListenerID(req.ListenerID)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	if err := g.engine.DetachListener(gameID, listenerID); err != nil {
		g.replyError(c, msg, err)
		return
	}
	g.replyData(c, msg, map[string]any{"detached": listenerID.String()})
}

func (g *Gateway) handleListRules(c *client, msg Message) {
	gameID, err := ids.ParseGameID(msg.GameID)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	var req struct {
		EventType string `json:"eventType"`
	}
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			g.replyError(c, msg, err)
			return
		}
	}
	listeners, err := g.engine.ActiveListeners(gameID, req.EventType)
	if err != nil {
		g.replyError(c, msg, err)
		return
	}
	g.replyData(c, msg, buildListenerViews(listeners))
}

func (g *Gateway) broadcastSnapshot(gameID ids.GameID, snapshot state.Game) {
	raw, err := json.Marshal(buildGameView(snapshot))
	if err != nil {
		g.logger.Error("marshal snapshot", zap.Error(err))
		return
	}
	payload, err := json.Marshal(Message{Type: "game_update", GameID: gameID.String(), Data: raw})
	if err != nil {
		g.logger.Error("marshal broadcast", zap.Error(err))
		return
	}
	g.hub.broadcastToGame(gameID, payload)
}

func (g *Gateway) decodeAction(msg Message) (ids.GameID, actions.Action, error) {
	gameID, err := ids.ParseGameID(msg.GameID)
	if err != nil {
		return "", actions.Action{}, err
	}
	var req ActionRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		return "", actions.Action{}, err
	}
	action, err := buildAction(req)
	if err != nil {
		return "", actions.Action{}, err
	}
	return gameID, action, nil
}

// buildAction converts the wire form into an engine action. Unknown kinds
// pass through and are rejected by the action library itself.
func buildAction(req ActionRequest) (actions.Action, error) {
	targets := make([]ids.CardID, 0, len(req.Targets))
	for _, t := range req.Targets {
		parsed, err := ids.ParseCardID(t)
		if err != nil {
			return actions.Action{}, err
		}
		targets = append(targets, parsed)
	}
	position := state.AppendPosition
	if req.Position != nil {
		position = *req.Position
	}
	return actions.Action{
		Kind:        actions.Kind(req.Kind),
		Player:      ids.PlayerID(req.PlayerID),
		Card:        ids.CardID(req.CardID),
		FromZone:    ids.ZoneID(req.FromZoneID),
		ToZone:      ids.ZoneID(req.ToZoneID),
		Zone:        ids.ZoneID(req.ZoneID),
		Position:    position,
		Count:       req.Count,
		Stat:        req.Stat,
		Delta:       req.Delta,
		CounterType: req.CounterType,
		Phase:       req.Phase,
		Targets:     targets,
	}, nil
}
