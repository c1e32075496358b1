package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"telepathy-drawing/internal/game"
)

type joinRequest struct {
	Name string `json:"name" binding:"required,playername"`
}

type startRequest struct {
	Rounds int `json:"rounds" binding:"omitempty,min=1"`
}

type chatRequest struct {
	PlayerID string `json:"player_id" binding:"required,uuid"`
	Message  string `json:"message" binding:"required,chatmessage"`
}

type timeoutRequest struct {
	PlayerID     string `json:"player_id" binding:"required,uuid"`
	ExpectedTurn int    `json:"expected_turn" binding:"required,min=1"`
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	room := s.store.CreateRoom()
	if err := s.persistRoom(room); err != nil {
		log.Error().Err(err).Str("room_id", room.State.ID).Msg("failed to persist room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}
	log.Info().
		Str("room_id", room.State.ID).
		Str("code", room.State.Code).
		Msg("room created")
	c.JSON(http.StatusCreated, gin.H{
		"room_id": room.State.ID,
		"code":    room.State.Code,
	})
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	var req joinRequest
	if !bindJSON(c, &req, bindMessages{
		"Name": {
			"required":   "name is required",
			"playername": "name must be 1-20 printable characters",
		},
	}, "invalid join request") {
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room, player, err := s.store.AddPlayer(c.Param("room"), name, s.cfg.MaxPlayers)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	if err := s.persistPlayer(room, *player); err != nil {
		log.Error().Err(err).Str("room_id", room.State.ID).Str("player", name).Msg("failed to persist player")
	}
	log.Info().
		Str("room_id", room.State.ID).
		Str("player_id", player.ID).
		Str("name", player.Name).
		Int("turn_order", player.TurnOrder).
		Msg("player joined")
	s.broadcastRoomUpdate(room)
	c.JSON(http.StatusOK, gin.H{
		"room_id":    room.State.ID,
		"player_id":  player.ID,
		"name":       player.Name,
		"turn_order": player.TurnOrder,
	})
}

func (s *Server) handleGetRoom(c *gin.Context) {
	payload, ok := s.snapshotRoom(c.Param("room"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrRoomNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleStartGame(c *gin.Context) {
	var req startRequest
	if !bindJSON(c, &req, nil, "invalid start request") {
		return
	}
	rounds := req.Rounds
	if rounds <= 0 {
		rounds = 1
	}
	if rounds > s.cfg.MaxRoundsPerGame {
		rounds = s.cfg.MaxRoundsPerGame
	}
	room, err := s.startGame(c.Param("room"), rounds)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.snapshot(room))
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if !bindJSON(c, &req, bindMessages{
		"Message": {
			"required":    "message is required",
			"chatmessage": "message must be 1-280 printable characters",
		},
	}, "invalid chat request") {
		return
	}
	if !s.limiter.Allow(req.PlayerID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many messages"})
		return
	}
	_, result, err := s.postChat(c.Param("room"), req.PlayerID, req.Message)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"correct": result.Correct}
	if result.Correct {
		resp["award"] = result.Award
		resp["advanced"] = result.Outcome.Advanced
		resp["finished"] = result.Outcome.Finished
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAdvanceWord(c *gin.Context) {
	room, err := s.advanceWord(c.Param("room"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.snapshot(room))
}

func (s *Server) handleForceTimeout(c *gin.Context) {
	var req timeoutRequest
	if !bindJSON(c, &req, nil, "invalid timeout request") {
		return
	}
	room, outcome, err := s.forceTimeout(c.Param("room"), req.PlayerID, req.ExpectedTurn)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"advanced":     outcome.Advanced,
		"finished":     outcome.Finished,
		"turn_counter": room.State.TurnCounter,
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, errPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, errNotDrawer):
		return http.StatusForbidden
	case errors.Is(err, ErrRoomFull), errors.Is(err, ErrRoomFinished),
		errors.Is(err, errAlreadyStarted), errors.Is(err, errNotStarted),
		errors.Is(err, errWordAssigned), errors.Is(err, errNotExpired),
		errors.Is(err, game.ErrEmptyRoster):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
