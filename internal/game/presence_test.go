package game

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func testRoster() []Player {
	return []Player{
		{ID: "p1", Name: "Ada", TurnOrder: 1},
		{ID: "p2", Name: "Bae", TurnOrder: 2},
		{ID: "p3", Name: "Cho", TurnOrder: 3},
	}
}

func TestDeriveViewActivePlayer(t *testing.T) {
	cfg := DefaultClockConfig()
	now := time.Now().UTC()
	room := Room{
		ID:             "room-1",
		Status:         StatusPlaying,
		TurnCounter:    4,
		CurrentWord:    "사과",
		RoundStartedAt: now.Add(-35 * time.Second),
		RoundsPerGame:  2,
	}
	view := DeriveView(room, testRoster(), "p1", now, cfg)
	if !view.HasActive {
		t.Fatal("expected an active player")
	}
	if view.ActivePlayer.ID != "p1" {
		t.Fatalf("expected p1 active on turn 4 of 3, got %s", view.ActivePlayer.ID)
	}
	if !view.IsMyTurn {
		t.Fatal("expected my-turn flag for p1")
	}
	if view.Round != 2 {
		t.Fatalf("expected round 2, got %d", view.Round)
	}
	if view.Hint != "사 O" {
		t.Fatalf("expected hint %q, got %q", "사 O", view.Hint)
	}
	if view.Reward != 15 {
		t.Fatalf("expected reward 15, got %d", view.Reward)
	}

	other := DeriveView(room, testRoster(), "p2", now, cfg)
	if other.IsMyTurn {
		t.Fatal("expected my-turn flag false for p2")
	}
}

func TestDeriveViewOutsidePlaying(t *testing.T) {
	cfg := DefaultClockConfig()
	room := Room{ID: "room-1", Status: StatusWaiting}
	view := DeriveView(room, testRoster(), "p1", time.Now(), cfg)
	if view.HasActive || view.IsMyTurn || view.Hint != "" {
		t.Fatalf("expected zero view while waiting, got %+v", view)
	}
}

func TestDeriveViewWithoutWord(t *testing.T) {
	cfg := DefaultClockConfig()
	room := Room{
		ID:          "room-1",
		Status:      StatusPlaying,
		TurnCounter: 1,
	}
	view := DeriveView(room, testRoster(), "p1", time.Now(), cfg)
	if !view.HasActive {
		t.Fatal("expected an active player even before a word is assigned")
	}
	if view.Hint != "" || view.Expired {
		t.Fatalf("expected clock fields to stay zero without a word, got %+v", view)
	}
}

func TestWatcherFiresTimeoutOnceForDrawer(t *testing.T) {
	cfg := DefaultClockConfig()
	clock := clockwork.NewFakeClock()
	room := Room{
		ID:             "room-1",
		Status:         StatusPlaying,
		TurnCounter:    1,
		CurrentWord:    "사과",
		RoundStartedAt: clock.Now(),
		RoundsPerGame:  1,
	}
	fired := make([]int, 0)
	watcher := NewWatcher(clock, cfg, "p1", func() (Room, []Player, bool) {
		return room, testRoster(), true
	}, func(roomID string, expectedTurn int) {
		fired = append(fired, expectedTurn)
	})

	watcher.Tick()
	if len(fired) != 0 {
		t.Fatal("expected no timeout before expiry")
	}

	clock.Advance(cfg.RoundDuration + time.Second)
	watcher.Tick()
	watcher.Tick()
	if len(fired) != 1 {
		t.Fatalf("expected exactly one timeout, got %d", len(fired))
	}
	if fired[0] != 1 {
		t.Fatalf("expected timeout for turn 1, got %d", fired[0])
	}

	// once the turn advances, the next expiry fires again
	room.TurnCounter = 4
	room.RoundStartedAt = clock.Now()
	clock.Advance(cfg.RoundDuration + time.Second)
	watcher.Tick()
	if len(fired) != 2 || fired[1] != 4 {
		t.Fatalf("expected second timeout for turn 4, got %v", fired)
	}
}

func TestWatcherNeverFiresForGuesser(t *testing.T) {
	cfg := DefaultClockConfig()
	clock := clockwork.NewFakeClock()
	room := Room{
		ID:             "room-1",
		Status:         StatusPlaying,
		TurnCounter:    1,
		CurrentWord:    "사과",
		RoundStartedAt: clock.Now(),
		RoundsPerGame:  1,
	}
	watcher := NewWatcher(clock, cfg, "p2", func() (Room, []Player, bool) {
		return room, testRoster(), true
	}, func(roomID string, expectedTurn int) {
		t.Fatal("guesser must not submit timeouts")
	})

	clock.Advance(cfg.RoundDuration + time.Minute)
	watcher.Tick()
}
