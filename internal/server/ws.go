package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	engine "github.com/maximobesteiro/montoncito/engine"
	"github.com/maximobesteiro/montoncito/internal/auth"
	"github.com/maximobesteiro/montoncito/internal/cache"
	"github.com/maximobesteiro/montoncito/internal/game"
)

const wsWriteTimeout = 5 * time.Second

// wsClient is one live socket, pinned to a room and a player. A write mutex
// serializes outbound frames; coder/websocket allows one writer at a time.
type wsClient struct {
	conn     *websocket.Conn
	roomID   string
	playerID string

	writeMu sync.Mutex
}

func (c *wsClient) send(msg ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, msg)
}

// Hub tracks sockets per room and fans server messages out to them. It is the
// concrete target of each match's broadcast callbacks.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*wsClient]struct{}

	log   *logrus.Logger
	cache *cache.Cache
}

// NewHub builds an empty hub. cache may be nil.
func NewHub(log *logrus.Logger, c *cache.Cache) *Hub {
	return &Hub{
		rooms: make(map[string]map[*wsClient]struct{}),
		log:   log,
		cache: c,
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.roomID] == nil {
		h.rooms[c.roomID] = make(map[*wsClient]struct{})
	}
	h.rooms[c.roomID][c] = struct{}{}
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[c.roomID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
}

func (h *Hub) clientsInRoom(roomID string) []*wsClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*wsClient, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		conns = append(conns, c)
	}
	return conns
}

// BroadcastRoom sends a message to every socket in the room.
func (h *Hub) BroadcastRoom(roomID string, msg ServerMessage) {
	for _, c := range h.clientsInRoom(roomID) {
		if err := c.send(msg); err != nil {
			h.log.WithError(err).WithFields(logrus.Fields{"roomId": roomID, "playerId": c.playerID}).
				Debug("ws send failed")
		}
	}
}

// SendToPlayer sends a message to every socket the player holds in the room.
func (h *Hub) SendToPlayer(roomID, playerID string, msg ServerMessage) {
	for _, c := range h.clientsInRoom(roomID) {
		if c.playerID != playerID {
			continue
		}
		if err := c.send(msg); err != nil {
			h.log.WithError(err).WithFields(logrus.Fields{"roomId": roomID, "playerId": playerID}).
				Debug("ws send failed")
		}
	}
}

// AttachMatch wires a match's fan-out callbacks to this hub.
func (h *Hub) AttachMatch(m *game.Match) {
	roomID := m.Meta.RoomID
	m.BroadcastFn = func(events []engine.GameEvent) {
		h.BroadcastRoom(roomID, ServerMessage{Type: "events", Events: events})
	}
	m.BroadcastToPlayerFn = func(playerID string, view game.View) {
		v := view
		h.SendToPlayer(roomID, playerID, ServerMessage{Type: "state", State: &v})
	}
}

// handleWS upgrades GET /ws?token=... into a live socket. The token is a join
// token issued on POST /rooms/{id}/join and pins the socket to one player in
// one room.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.VerifyJoinToken(s.cfg.WSSecret, raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	member, err := s.rooms.IsMember(claims.RoomID, claims.PlayerID)
	if err != nil || !member {
		writeError(w, http.StatusForbidden, "not a member of this room")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Debug("ws accept failed")
		return
	}

	client := &wsClient{conn: conn, roomID: claims.RoomID, playerID: claims.PlayerID}
	s.hub.register(client)
	s.cache.MarkPresent(r.Context(), claims.RoomID, claims.PlayerID)
	s.log.WithFields(logrus.Fields{"roomId": claims.RoomID, "playerId": claims.PlayerID}).
		Info("ws connected")

	defer func() {
		s.hub.unregister(client)
		s.cache.MarkAbsent(context.WithoutCancel(r.Context()), claims.RoomID, claims.PlayerID)
		conn.CloseNow()
		s.log.WithFields(logrus.Fields{"roomId": claims.RoomID, "playerId": claims.PlayerID}).
			Info("ws disconnected")
	}()

	s.readLoop(r.Context(), client)
}

func (s *Server) readLoop(ctx context.Context, c *wsClient) {
	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				return
			}
			s.log.WithError(err).Debug("ws read failed")
			return
		}

		switch msg.Type {
		case "ping":
			if err := c.send(ServerMessage{Type: "pong"}); err != nil {
				return
			}
		case "request_state":
			s.pushStateTo(ctx, c)
		case "move":
			s.applyWSMove(ctx, c, msg.Move)
		default:
			if err := c.send(ServerMessage{Type: "error", Error: "unknown message type"}); err != nil {
				return
			}
		}
	}
}

func (s *Server) pushStateTo(ctx context.Context, c *wsClient) {
	m, err := s.matchForRoom(ctx, c.roomID)
	if err != nil {
		_ = c.send(ServerMessage{Type: "error", Error: "no game in progress"})
		return
	}
	view := m.ViewFor(c.playerID)
	_ = c.send(ServerMessage{Type: "state", State: &view})
}

func (s *Server) applyWSMove(ctx context.Context, c *wsClient, dto *moveDTO) {
	m, err := s.matchForRoom(ctx, c.roomID)
	if err != nil {
		_ = c.send(ServerMessage{Type: "error", Error: "no game in progress"})
		return
	}
	move, err := dto.ToEngine()
	if err != nil {
		_ = c.send(ServerMessage{Type: "error", Error: err.Error()})
		return
	}
	if _, err := m.HandleMove(ctx, c.playerID, move); err != nil {
		_ = c.send(ServerMessage{Type: "error", Error: err.Error()})
	}
	// Events and views reach the client through the hub fan-out.
}

// matchForRoom resolves the room's match, recovering it from the snapshot
// cache when the registry lost it. A recovered match gets its broadcasts
// reattached before anyone plays on it.
func (s *Server) matchForRoom(ctx context.Context, roomID string) (*game.Match, error) {
	room, err := s.rooms.GetByID(roomID)
	if err != nil {
		return nil, err
	}
	if room.GameID == "" {
		return nil, game.ErrGameNotFound
	}
	m, err := s.games.Load(ctx, roomID, room.GameID)
	if err != nil {
		return nil, err
	}
	if m.BroadcastFn == nil {
		s.hub.AttachMatch(m)
	}
	return m, nil
}
