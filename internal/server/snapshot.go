package server

import (
	"sort"
	"time"

	"telepathy-drawing/internal/game"
)

// snapshot builds the room payload sent over the feed socket and the
// GET endpoint. It assumes the caller holds no reference into the room
// after it returns, so everything is copied into plain values.
func (s *Server) snapshot(room *Room) map[string]any {
	state := room.State
	players := make([]map[string]any, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, map[string]any{
			"id":         p.ID,
			"name":       p.Name,
			"turn_order": p.TurnOrder,
			"score":      p.Score,
		})
	}
	if state.Status == game.StatusFinished {
		// final standings: best score first, join order breaks ties
		sort.Slice(players, func(i, j int) bool {
			if players[i]["score"].(int) != players[j]["score"].(int) {
				return players[i]["score"].(int) > players[j]["score"].(int)
			}
			return players[i]["turn_order"].(int) < players[j]["turn_order"].(int)
		})
	} else {
		sort.Slice(players, func(i, j int) bool {
			return players[i]["turn_order"].(int) < players[j]["turn_order"].(int)
		})
	}
	chat := make([]ChatMessage, len(room.Chat))
	copy(chat, room.Chat)

	payload := map[string]any{
		"room_id":         state.ID,
		"code":            state.Code,
		"status":          string(state.Status),
		"turn_counter":    state.TurnCounter,
		"rounds_per_game": state.RoundsPerGame,
		"current_word":    state.CurrentWord,
		"players":         players,
		"chat":            chat,
	}
	if state.RoundStartedAt.IsZero() {
		payload["round_started_at"] = ""
	} else {
		payload["round_started_at"] = state.RoundStartedAt.Format(time.RFC3339)
		payload["round_ends_at"] = state.RoundStartedAt.Add(s.clockCfg.RoundDuration).Format(time.RFC3339)
	}
	if state.Status == game.StatusPlaying {
		if pos, err := game.TurnPosition(state.TurnCounter, len(room.Players)); err == nil {
			payload["active_slot"] = pos.Slot
			payload["round_number"] = pos.Round
			if active, ok := game.PlayerAtSlot(room.Players, pos.Slot); ok {
				payload["active_player_id"] = active.ID
				payload["active_player_name"] = active.Name
			}
		}
	}
	return payload
}

// snapshotRoom fetches a room under the store lock and builds its
// snapshot. The returned bool mirrors GetRoom.
func (s *Server) snapshotRoom(roomID string) (map[string]any, bool) {
	var payload map[string]any
	_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		payload = s.snapshot(room)
		return nil
	})
	if err != nil {
		return nil, false
	}
	return payload, true
}
