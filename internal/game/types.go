package game

import "time"

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "WAITING"
	StatusPlaying  RoomStatus = "PLAYING"
	StatusFinished RoomStatus = "FINISHED"
)

// Room is the shared round record replicated to every client. While the
// status is PLAYING, CurrentWord and RoundStartedAt are assigned together
// in the same atomic update, never one without the other.
type Room struct {
	ID             string
	Code           string
	Status         RoomStatus
	TurnCounter    int
	CurrentWord    string
	RoundStartedAt time.Time
	RoundsPerGame  int
}

type Player struct {
	ID        string
	Name      string
	TurnOrder int
	Score     int
}

type StrokePhase string

const (
	StrokeStart StrokePhase = "start"
	StrokeDraw  StrokePhase = "draw"
	StrokeClear StrokePhase = "clear"
)

// StrokeEvent is one drawing input sample. Events are broadcast once,
// unordered and at-most-once, and are never persisted: consumers apply
// each event as it arrives and reset their canvas on a clear phase.
// Duplicate delivery is not possible by contract; lost events are simply
// missing line segments.
type StrokeEvent struct {
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	Phase StrokePhase `json:"phase"`
	Color string      `json:"color"`
}

func (p StrokePhase) Valid() bool {
	switch p {
	case StrokeStart, StrokeDraw, StrokeClear:
		return true
	}
	return false
}
