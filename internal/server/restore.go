package server

import (
	"time"

	"github.com/rs/zerolog/log"

	"telepathy-drawing/internal/db"
	"telepathy-drawing/internal/game"
)

// RestoreActiveRooms reloads every unfinished room from the database
// into the store after a restart. Chat backlogs are not restored; the
// durable chat stream stays in the chats table. Rooms that fail to
// restore are skipped with a log line rather than blocking startup.
func (s *Server) RestoreActiveRooms() {
	if s.db == nil {
		return
	}
	var records []db.Room
	if err := s.db.
		Where("status <> ?", string(game.StatusFinished)).
		Find(&records).Error; err != nil {
		log.Error().Err(err).Msg("failed to load rooms for restore")
		return
	}
	restored := 0
	for _, record := range records {
		room, err := s.restoreRoom(record)
		if err != nil {
			log.Warn().Err(err).Str("room_id", record.RoomID).Msg("skipping room restore")
			continue
		}
		if err := s.store.RestoreRoom(room); err != nil {
			log.Warn().Err(err).Str("room_id", record.RoomID).Msg("skipping room restore")
			continue
		}
		restored++
	}
	if restored > 0 {
		log.Info().Int("rooms", restored).Msg("restored active rooms")
	}
}

func (s *Server) restoreRoom(record db.Room) (*Room, error) {
	var playerRecords []db.Player
	if err := s.db.
		Where("room_id = ?", record.ID).
		Order("turn_order").
		Find(&playerRecords).Error; err != nil {
		return nil, err
	}
	room := &Room{
		State: game.Room{
			ID:            record.RoomID,
			Code:          record.Code,
			Status:        game.RoomStatus(record.Status),
			TurnCounter:   record.TurnCounter,
			CurrentWord:   record.CurrentWord,
			RoundsPerGame: record.RoundsPerGame,
		},
		Players:     make([]game.Player, 0, len(playerRecords)),
		DBID:        record.ID,
		PlayerDBIDs: make(map[string]uint),
	}
	if record.RoundStartedAt != nil {
		room.State.RoundStartedAt = record.RoundStartedAt.UTC()
	} else {
		room.State.RoundStartedAt = time.Time{}
	}
	for _, p := range playerRecords {
		room.Players = append(room.Players, game.Player{
			ID:        p.PlayerID,
			Name:      p.Name,
			TurnOrder: p.TurnOrder,
			Score:     p.Score,
		})
		room.PlayerDBIDs[p.PlayerID] = p.ID
	}
	return room, nil
}
