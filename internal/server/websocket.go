package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"telepathy-drawing/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[roomID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *wsHub) Broadcast(roomID string, payload any) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.groups[roomID]))
	for conn := range h.groups[roomID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(roomID, conn)
		}
	}
}

// BroadcastExcept fans a raw frame out to every connection in the room
// except the sender. There is no buffering and no redelivery: a write
// that fails drops the connection, and the frame is simply gone for it.
func (h *wsHub) BroadcastExcept(roomID string, sender *websocket.Conn, data []byte) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.groups[roomID]))
	for conn := range h.groups[roomID] {
		if conn != sender {
			conns = append(conns, conn)
		}
	}
	h.mu.Unlock()
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(roomID, conn)
		}
	}
}

func (s *Server) broadcastRoomUpdate(room *Room) {
	payload, ok := s.snapshotRoom(room.State.ID)
	if !ok {
		return
	}
	s.feed.Broadcast(room.State.ID, payload)
}

// handleFeedSocket serves the room feed: one snapshot on connect, then
// a fresh snapshot after every state change. When the client identifies
// itself with ?player_id, a watcher goroutine derives that client's view
// once per second and reports the timeout if this client turns out to be
// the expired turn's drawer.
func (s *Server) handleFeedSocket(c *gin.Context) {
	room, ok := s.store.GetRoom(c.Param("room"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	roomID := room.State.ID
	s.feed.Add(roomID, conn)
	defer s.feed.Remove(roomID, conn)

	if payload, ok := s.snapshotRoom(roomID); ok {
		s.feed.Send(conn, payload)
	}

	if playerID := c.Query("player_id"); playerID != "" {
		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		watcher := game.NewWatcher(s.clock, s.clockCfg, playerID,
			func() (game.Room, []game.Player, bool) {
				var state game.Room
				var players []game.Player
				_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
					state = room.State
					players = append([]game.Player(nil), room.Players...)
					return nil
				})
				if err != nil {
					return game.Room{}, nil, false
				}
				return state, players, true
			},
			func(watchedRoom string, expectedTurn int) {
				if _, _, err := s.forceTimeout(watchedRoom, playerID, expectedTurn); err != nil {
					log.Debug().
						Err(err).
						Str("room_id", watchedRoom).
						Int("turn", expectedTurn).
						Msg("timeout report rejected")
				}
			},
		)
		go watcher.Run(ctx)
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// handleStrokeSocket relays drawing input between the clients of a room.
// Frames are fanned out to everyone but the sender, unordered and
// at-most-once, and are never written to storage.
func (s *Server) handleStrokeSocket(c *gin.Context) {
	room, ok := s.store.GetRoom(c.Param("room"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	roomID := room.State.ID
	s.strokes.Add(roomID, conn)
	defer s.strokes.Remove(roomID, conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var stroke game.StrokeEvent
		if err := json.Unmarshal(data, &stroke); err != nil {
			continue
		}
		if !stroke.Phase.Valid() {
			continue
		}
		s.strokes.BroadcastExcept(roomID, conn, data)
	}
}
