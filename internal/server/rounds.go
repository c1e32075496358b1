package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"telepathy-drawing/internal/game"
)

var (
	errAlreadyStarted = errors.New("game already started")
	errNotStarted     = errors.New("game not started")
	errWordAssigned   = errors.New("word already assigned")
	errNotExpired     = errors.New("turn has not expired")
	errNotDrawer      = errors.New("only the active drawer reports timeout")
	errPlayerNotFound = errors.New("player not found")
)

// advanceOutcome records what a round transition did. A zero outcome
// means the transition was stale and nothing changed.
type advanceOutcome struct {
	Advanced bool
	Finished bool
	Turn     int
	NextWord string
	WinnerID string
	Award    int
}

type guessResult struct {
	Correct bool
	Award   int
	Outcome advanceOutcome
}

// advanceTurn is the single round-transition path, shared by the correct
// guess and the timeout. It must run inside an UpdateRoom closure so the
// expected-counter check and the mutation are one atomic step: a caller
// holding a stale counter matches nothing and gets a zero outcome.
func (s *Server) advanceTurn(room *Room, winnerID string, award int, expectedTurn int) advanceOutcome {
	if room.State.Status != game.StatusPlaying || room.State.TurnCounter != expectedTurn {
		return advanceOutcome{}
	}
	if winnerID != "" && award > 0 {
		if player, ok := s.store.FindPlayer(room, winnerID); ok {
			player.Score += award
		}
	}
	next := expectedTurn + 1
	room.State.TurnCounter = next
	outcome := advanceOutcome{
		Advanced: true,
		Turn:     next,
		WinnerID: winnerID,
		Award:    award,
	}
	if next > room.State.RoundsPerGame*len(room.Players) {
		room.State.Status = game.StatusFinished
		room.State.CurrentWord = ""
		room.State.RoundStartedAt = time.Time{}
		outcome.Finished = true
		return outcome
	}
	word := s.pickWord()
	room.State.CurrentWord = word
	room.State.RoundStartedAt = s.clock.Now().UTC()
	outcome.NextWord = word
	return outcome
}

func (s *Server) startGame(roomID string, rounds int) (*Room, error) {
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.State.Status != game.StatusWaiting {
			return errAlreadyStarted
		}
		if len(room.Players) == 0 {
			return game.ErrEmptyRoster
		}
		room.State.Status = game.StatusPlaying
		room.State.RoundsPerGame = rounds
		room.State.TurnCounter = 1
		room.State.CurrentWord = s.pickWord()
		room.State.RoundStartedAt = s.clock.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistStart(room); err != nil {
		log.Error().Err(err).Str("room_id", room.State.ID).Msg("failed to persist game start")
	}
	log.Info().
		Str("room_id", room.State.ID).
		Int("rounds", rounds).
		Int("players", len(room.Players)).
		Msg("game started")
	s.broadcastRoomUpdate(room)
	return room, nil
}

// postChat appends a chat message and, when the sender is a non-drawer
// and the trimmed text exactly matches the current word, performs the
// round transition in the same atomic step. The guess is always checked
// against the word current at transition time: a guess that matched the
// sender's stale view of an already-advanced turn simply is not a win.
func (s *Server) postChat(roomID, playerID, message string) (*Room, guessResult, error) {
	var result guessResult
	var senderName string
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		player, ok := s.store.FindPlayer(room, playerID)
		if !ok {
			return errPlayerNotFound
		}
		senderName = player.Name
		appendChat(room, ChatMessage{
			PlayerID:   player.ID,
			PlayerName: player.Name,
			Message:    message,
			SentAt:     s.clock.Now().UTC(),
		})
		state := room.State
		if state.Status != game.StatusPlaying || state.CurrentWord == "" {
			return nil
		}
		pos, err := game.TurnPosition(state.TurnCounter, len(room.Players))
		if err != nil {
			return nil
		}
		if player.TurnOrder == pos.Slot {
			// drawers cannot win their own turn
			return nil
		}
		if strings.TrimSpace(message) != state.CurrentWord {
			return nil
		}
		award := s.clockCfg.Evaluate(s.clock.Now().Sub(state.RoundStartedAt), state.CurrentWord).Reward
		result.Correct = true
		result.Award = award
		result.Outcome = s.advanceTurn(room, player.ID, award, state.TurnCounter)
		if result.Outcome.Advanced {
			appendChat(room, ChatMessage{
				PlayerName: player.Name,
				Message:    fmt.Sprintf("🎉 정답입니다! (+%d점)", award),
				System:     true,
				SentAt:     s.clock.Now().UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, result, err
	}
	if err := s.persistChat(room, playerID, message); err != nil {
		log.Error().Err(err).Str("room_id", room.State.ID).Msg("failed to persist chat")
	}
	if result.Outcome.Advanced {
		s.finishTurn(room, result.Outcome, "guess")
		log.Info().
			Str("room_id", room.State.ID).
			Str("winner", senderName).
			Int("award", result.Award).
			Int("turn", result.Outcome.Turn).
			Bool("finished", result.Outcome.Finished).
			Msg("round won by guess")
	}
	s.broadcastRoomUpdate(room)
	return room, result, nil
}

// forceTimeout ends an expired turn with no winner. Only the active
// drawer's client carries that responsibility, so callers must identify
// themselves; a stale expected counter is a silent no-op because the race
// it lost was trying to produce the same outcome.
func (s *Server) forceTimeout(roomID, playerID string, expectedTurn int) (*Room, advanceOutcome, error) {
	var outcome advanceOutcome
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		state := room.State
		if state.Status != game.StatusPlaying || state.TurnCounter != expectedTurn {
			return nil
		}
		pos, err := game.TurnPosition(state.TurnCounter, len(room.Players))
		if err != nil {
			return err
		}
		player, ok := s.store.FindPlayer(room, playerID)
		if !ok {
			return errPlayerNotFound
		}
		if player.TurnOrder != pos.Slot {
			return errNotDrawer
		}
		if state.CurrentWord == "" {
			return errNotExpired
		}
		elapsed := s.clock.Now().Sub(state.RoundStartedAt)
		if !s.clockCfg.Evaluate(elapsed, state.CurrentWord).Expired {
			return errNotExpired
		}
		outcome = s.advanceTurn(room, "", 0, expectedTurn)
		return nil
	})
	if err != nil {
		return nil, outcome, err
	}
	if outcome.Advanced {
		s.finishTurn(room, outcome, "timeout")
		log.Info().
			Str("room_id", room.State.ID).
			Int("turn", outcome.Turn).
			Bool("finished", outcome.Finished).
			Msg("round ended by timeout")
		s.broadcastRoomUpdate(room)
	}
	return room, outcome, nil
}

// advanceWord assigns a fresh word to a turn that has none, without
// touching the turn counter. Word and timestamp move together.
func (s *Server) advanceWord(roomID string) (*Room, error) {
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.State.Status != game.StatusPlaying {
			return errNotStarted
		}
		if room.State.CurrentWord != "" {
			return errWordAssigned
		}
		room.State.CurrentWord = s.pickWord()
		room.State.RoundStartedAt = s.clock.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistWord(room); err != nil {
		log.Error().Err(err).Str("room_id", room.State.ID).Msg("failed to persist word advance")
	}
	s.broadcastRoomUpdate(room)
	return room, nil
}

// finishTurn mirrors a committed transition to the database and records
// the event. The durable update carries the same expected-counter guard,
// so replays against an already-advanced row are no-ops there too.
func (s *Server) finishTurn(room *Room, outcome advanceOutcome, reason string) {
	if err := s.persistTransition(room, outcome, reason); err != nil {
		log.Error().
			Err(err).
			Str("room_id", room.State.ID).
			Int("turn", outcome.Turn).
			Msg("failed to persist round transition")
	}
}
