package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"telepathy-drawing/internal/game"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room full")
	ErrRoomFinished = errors.New("game already finished")
)

// chatBacklog bounds the in-memory chat kept for snapshots; the full
// stream lives in the chats table.
const chatBacklog = 200

type ChatMessage struct {
	PlayerID   string    `json:"player_id,omitempty"`
	PlayerName string    `json:"player_name,omitempty"`
	Message    string    `json:"message"`
	System     bool      `json:"system,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// Room is the server-side aggregate of the shared round record, the
// roster and the chat backlog, plus the row IDs needed to mirror it to
// the database.
type Room struct {
	State       game.Room
	Players     []game.Player
	Chat        []ChatMessage
	DBID        uint
	PlayerDBIDs map[string]uint
}

// Store holds every live room. Its mutex is the serialization point for
// all shared-state mutation: UpdateRoom runs the given closure with the
// lock held, so a check-then-mutate closure is atomic with respect to
// every other caller.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

func (s *Store) CreateRoom() *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := &Room{
		State: game.Room{
			ID:     uuid.NewString(),
			Code:   newJoinCode(),
			Status: game.StatusWaiting,
		},
		Players:     make([]game.Player, 0, 8),
		PlayerDBIDs: make(map[string]uint),
	}
	s.rooms[room.State.ID] = room
	return room
}

func (s *Store) GetRoom(idOrCode string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.lookup(idOrCode)
	return room, ok
}

func (s *Store) UpdateRoom(idOrCode string, update func(room *Room) error) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.lookup(idOrCode)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := update(room); err != nil {
		return nil, err
	}
	return room, nil
}

// AddPlayer joins a player to a room, assigning the next 1-based turn
// order by join position. Joining an already-known name reclaims that
// player instead of creating a duplicate, so a reconnecting client keeps
// its score and turn order. Roster changes are independent appends; they
// never contend with the round transition beyond this store lock.
func (s *Store) AddPlayer(idOrCode, name string, maxPlayers int) (*Room, *game.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.lookup(idOrCode)
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	for i := range room.Players {
		if room.Players[i].Name == name {
			return room, &room.Players[i], nil
		}
	}
	if room.State.Status == game.StatusFinished {
		return nil, nil, ErrRoomFinished
	}
	if maxPlayers > 0 && len(room.Players) >= maxPlayers {
		return nil, nil, ErrRoomFull
	}
	player := game.Player{
		ID:        uuid.NewString(),
		Name:      name,
		TurnOrder: len(room.Players) + 1,
	}
	room.Players = append(room.Players, player)
	return room, &room.Players[len(room.Players)-1], nil
}

// RestoreRoom registers a room loaded from the database. Rooms already
// live in the store win over the restored copy.
func (s *Store) RestoreRoom(room *Room) error {
	if room == nil {
		return errors.New("room is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.State.ID]; ok {
		return errors.New("room already running")
	}
	for _, existing := range s.rooms {
		if existing.State.Code == room.State.Code {
			return errors.New("room already running")
		}
	}
	if room.PlayerDBIDs == nil {
		room.PlayerDBIDs = make(map[string]uint)
	}
	s.rooms[room.State.ID] = room
	return nil
}

func (s *Store) FindPlayer(room *Room, playerID string) (*game.Player, bool) {
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			return &room.Players[i], true
		}
	}
	return nil, false
}

func (s *Store) lookup(idOrCode string) (*Room, bool) {
	if room, ok := s.rooms[idOrCode]; ok {
		return room, true
	}
	for _, room := range s.rooms {
		if room.State.Code == idOrCode {
			return room, true
		}
	}
	return nil, false
}

func appendChat(room *Room, msg ChatMessage) {
	room.Chat = append(room.Chat, msg)
	if len(room.Chat) > chatBacklog {
		room.Chat = room.Chat[len(room.Chat)-chatBacklog:]
	}
}
