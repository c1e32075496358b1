package game

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// View is the per-client derived state: everything the UI needs for one
// tick, rebuilt from the latest replicated Room and Player snapshot plus
// local wall-clock time. It is never merged with a previous view.
type View struct {
	ActivePlayer Player
	HasActive    bool
	IsMyTurn     bool
	Round        int
	Hint         string
	Reward       int
	Remaining    time.Duration
	Expired      bool
}

// DeriveView recomputes the view for the local player. Outside PLAYING,
// or while the turn has no word assigned yet, the clock-derived fields
// stay zero.
func DeriveView(room Room, players []Player, selfID string, now time.Time, clock ClockConfig) View {
	view := View{}
	if room.Status != StatusPlaying {
		return view
	}
	pos, err := TurnPosition(room.TurnCounter, len(players))
	if err != nil {
		return view
	}
	view.Round = pos.Round
	if active, ok := PlayerAtSlot(players, pos.Slot); ok {
		view.ActivePlayer = active
		view.HasActive = true
		view.IsMyTurn = active.ID == selfID
	}
	if room.CurrentWord == "" || room.RoundStartedAt.IsZero() {
		return view
	}
	state := clock.Evaluate(now.Sub(room.RoundStartedAt), room.CurrentWord)
	view.Hint = state.Hint
	view.Reward = state.Reward
	view.Remaining = state.Remaining
	view.Expired = state.Expired
	return view
}

// SnapshotFunc returns the latest replicated room state. The bool reports
// whether a snapshot is available yet.
type SnapshotFunc func() (Room, []Player, bool)

// TimeoutFunc submits a timeout-triggered round transition for the given
// turn counter.
type TimeoutFunc func(roomID string, expectedTurn int)

// Watcher drives a client's 1 Hz presence loop. When the countdown
// expires and the local player is the active drawer, the watcher fires
// the timeout callback — once per turn counter, so a slow transition
// cannot be submitted twice from the same client. Clients whose turn it
// is not never fire; if the responsible client is gone the round stalls
// until someone intervenes, which is the accepted failure mode.
type Watcher struct {
	clock     clockwork.Clock
	cfg       ClockConfig
	selfID    string
	snapshot  SnapshotFunc
	timeout   TimeoutFunc
	lastFired int
}

func NewWatcher(clock clockwork.Clock, cfg ClockConfig, selfID string, snapshot SnapshotFunc, timeout TimeoutFunc) *Watcher {
	return &Watcher{
		clock:    clock,
		cfg:      cfg,
		selfID:   selfID,
		snapshot: snapshot,
		timeout:  timeout,
	}
}

// Run ticks at 1 Hz until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := w.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			w.Tick()
		}
	}
}

// Tick recomputes the view once and fires the timeout callback if due.
func (w *Watcher) Tick() {
	room, players, ok := w.snapshot()
	if !ok || room.Status != StatusPlaying || room.CurrentWord == "" {
		return
	}
	view := DeriveView(room, players, w.selfID, w.clock.Now(), w.cfg)
	if !view.Expired || !view.IsMyTurn {
		return
	}
	if room.TurnCounter == w.lastFired {
		return
	}
	w.lastFired = room.TurnCounter
	log.Info().
		Str("room_id", room.ID).
		Int("turn", room.TurnCounter).
		Msg("turn expired, submitting timeout")
	w.timeout(room.ID, room.TurnCounter)
}
