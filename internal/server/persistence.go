package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"telepathy-drawing/internal/db"
	"telepathy-drawing/internal/game"
)

// EventPayload is the envelope stored in the events table. Fields are
// omitted when empty so every event type shares the one shape.
type EventPayload struct {
	RoomID     string `json:"room_id,omitempty"`
	Code       string `json:"code,omitempty"`
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Turn       int    `json:"turn,omitempty"`
	Award      int    `json:"award,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Finished   bool   `json:"finished,omitempty"`
}

// All persist functions are mirrors of state that already changed in
// memory. They no-op without a database, and callers treat their errors
// as log-worthy rather than fatal: the in-memory room stays the source
// of truth for a running game.

func (s *Server) persistRoom(room *Room) error {
	if s.db == nil {
		return nil
	}
	record := db.Room{
		RoomID:        room.State.ID,
		Code:          room.State.Code,
		Status:        string(room.State.Status),
		TurnCounter:   room.State.TurnCounter,
		RoundsPerGame: room.State.RoundsPerGame,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	room.DBID = record.ID
	return s.persistEvent(room, nil, "room_created", EventPayload{
		RoomID: room.State.ID,
		Code:   room.State.Code,
	})
}

func (s *Server) persistPlayer(room *Room, player game.Player) error {
	if s.db == nil {
		return nil
	}
	if _, ok := room.PlayerDBIDs[player.ID]; ok {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	record := db.Player{
		RoomID:    room.DBID,
		PlayerID:  player.ID,
		Name:      player.Name,
		TurnOrder: player.TurnOrder,
		Score:     player.Score,
		JoinedAt:  time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			var existing db.Player
			lookupErr := s.db.
				Where("room_id = ? AND name = ?", room.DBID, player.Name).
				First(&existing).Error
			if lookupErr == nil {
				room.PlayerDBIDs[player.ID] = existing.ID
				return nil
			}
		}
		return err
	}
	room.PlayerDBIDs[player.ID] = record.ID
	return s.persistEvent(room, &record.ID, "player_joined", EventPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
	})
}

func (s *Server) persistStart(room *Room) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	startedAt := room.State.RoundStartedAt
	err := s.db.Model(&db.Room{}).
		Where("id = ?", room.DBID).
		Updates(map[string]any{
			"status":           string(room.State.Status),
			"turn_counter":     room.State.TurnCounter,
			"current_word":     room.State.CurrentWord,
			"round_started_at": &startedAt,
			"rounds_per_game":  room.State.RoundsPerGame,
		}).Error
	if err != nil {
		return err
	}
	return s.persistEvent(room, nil, "game_started", EventPayload{
		RoomID: room.State.ID,
		Turn:   room.State.TurnCounter,
	})
}

func (s *Server) persistWord(room *Room) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	startedAt := room.State.RoundStartedAt
	return s.db.Model(&db.Room{}).
		Where("id = ? AND turn_counter = ?", room.DBID, room.State.TurnCounter).
		Updates(map[string]any{
			"current_word":     room.State.CurrentWord,
			"round_started_at": &startedAt,
		}).Error
}

func (s *Server) persistChat(room *Room, playerID, message string) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	record := db.Chat{
		RoomID:    room.DBID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if dbID, ok := room.PlayerDBIDs[playerID]; ok {
		record.PlayerID = &dbID
	}
	return s.db.Create(&record).Error
}

// persistTransition mirrors a committed turn advance. The durable update
// carries the previous counter as its guard, so a crashed-and-replayed
// transition lands at most once in the database too.
func (s *Server) persistTransition(room *Room, outcome advanceOutcome, reason string) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	transition := db.RoundTransition{
		RoomDBID:     room.DBID,
		ExpectedTurn: outcome.Turn - 1,
		ScoreToAdd:   outcome.Award,
		NextWord:     outcome.NextWord,
		StartedAt:    room.State.RoundStartedAt,
		Finished:     outcome.Finished,
	}
	if outcome.WinnerID != "" {
		transition.WinnerDBID = room.PlayerDBIDs[outcome.WinnerID]
	}
	applied, err := db.FinishRound(s.db, transition)
	if err != nil {
		return err
	}
	if !applied {
		log.Debug().
			Str("room_id", room.State.ID).
			Int("turn", outcome.Turn).
			Msg("durable transition already applied")
		return nil
	}
	var winnerDBID *uint
	if transition.WinnerDBID != 0 {
		winnerDBID = &transition.WinnerDBID
	}
	return s.persistEvent(room, winnerDBID, "round_finished", EventPayload{
		RoomID:   room.State.ID,
		PlayerID: outcome.WinnerID,
		Turn:     outcome.Turn,
		Award:    outcome.Award,
		Reason:   reason,
		Finished: outcome.Finished,
	})
}

func (s *Server) persistEvent(room *Room, playerDBID *uint, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		RoomID:    room.DBID,
		PlayerID:  playerDBID,
		Type:      eventType,
		Payload:   datatypes.JSON(data),
		CreatedAt: time.Now().UTC(),
	}
	return s.db.Create(&record).Error
}

func (s *Server) ensureRoomDBID(room *Room) error {
	if room.DBID != 0 {
		return nil
	}
	var record db.Room
	if err := s.db.Where("room_id = ?", room.State.ID).First(&record).Error; err != nil {
		return err
	}
	room.DBID = record.ID
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
