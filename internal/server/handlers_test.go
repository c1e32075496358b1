package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"telepathy-drawing/internal/config"
)

func TestFullGameFlow(t *testing.T) {
	srv := New(nil, config.Default())
	fake := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	srv.clock = fake
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID, code := createRoomWithCode(t, ts)
	if len(code) != 6 {
		t.Fatalf("expected a 6 character join code, got %q", code)
	}
	araID := joinPlayer(t, ts, roomID, "Ara")
	bomID := joinPlayer(t, ts, code, "Bom")
	if araID == bomID {
		t.Fatalf("players must get distinct ids")
	}

	body := startGame(t, ts, roomID, 1)
	if body["status"] != "PLAYING" {
		t.Fatalf("expected PLAYING, got %v", body["status"])
	}
	if body["turn_counter"].(float64) != 1 {
		t.Fatalf("expected turn counter 1, got %v", body["turn_counter"])
	}
	if body["active_slot"].(float64) != 1 {
		t.Fatalf("expected active slot 1, got %v", body["active_slot"])
	}

	snapshot := fetchSnapshot(t, ts, roomID)
	word := snapshot["current_word"].(string)
	if word == "" {
		t.Fatalf("expected a word in the snapshot")
	}

	wrong := postChat(t, ts, roomID, bomID, "not it")
	if wrong["correct"].(bool) {
		t.Fatalf("wrong guess reported correct")
	}

	right := postChat(t, ts, roomID, bomID, word)
	if !right["correct"].(bool) {
		t.Fatalf("correct guess not recognized")
	}
	if right["award"].(float64) != 20 {
		t.Fatalf("expected award 20, got %v", right["award"])
	}

	// 2 players x 1 round: win the second turn too and the game ends
	snapshot = fetchSnapshot(t, ts, roomID)
	word = snapshot["current_word"].(string)
	guesserID := bomID
	if snapshot["active_player_id"].(string) == bomID {
		guesserID = araID
	}
	final := postChat(t, ts, roomID, guesserID, word)
	if !final["correct"].(bool) || !final["finished"].(bool) {
		t.Fatalf("expected the game to finish, got %v", final)
	}

	snapshot = fetchSnapshot(t, ts, roomID)
	if snapshot["status"] != "FINISHED" {
		t.Fatalf("expected FINISHED, got %v", snapshot["status"])
	}
	if snapshot["turn_counter"].(float64) != 3 {
		t.Fatalf("expected counter 3, got %v", snapshot["turn_counter"])
	}
	if snapshot["current_word"].(string) != "" {
		t.Fatalf("finished snapshot must not leak a word")
	}
	players := snapshot["players"].([]any)
	total := 0.0
	for _, entry := range players {
		total += entry.(map[string]any)["score"].(float64)
	}
	if total != 40 {
		t.Fatalf("expected total score 40, got %v", total)
	}
}

func TestJoinValidation(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/join", map[string]string{
		"name": "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/unknown/join", map[string]string{
		"name": "Ara",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestRejoinKeepsIdentity(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts)
	first := joinPlayer(t, ts, roomID, "Ara")
	again := joinPlayer(t, ts, roomID, "Ara")
	if first != again {
		t.Fatalf("rejoining by name must reclaim the player, got %s then %s", first, again)
	}
	snapshot := fetchSnapshot(t, ts, roomID)
	if len(snapshot["players"].([]any)) != 1 {
		t.Fatalf("expected one player after rejoin")
	}
}

func TestRoomCapacity(t *testing.T) {
	cfg := config.Default()
	cfg.MaxPlayers = 2
	srv := New(nil, cfg)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts)
	joinPlayer(t, ts, roomID, "Ara")
	joinPlayer(t, ts, roomID, "Bom")
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/join", map[string]string{
		"name": "Cho",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestChatRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.ChatRatePerSecond = 1
	cfg.ChatBurst = 2
	srv := New(nil, cfg)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts)
	playerID := joinPlayer(t, ts, roomID, "Ara")

	limited := false
	for i := 0; i < 5; i++ {
		resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/chat", map[string]string{
			"player_id": playerID,
			"message":   "hello",
		})
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("unexpected status %d", resp.StatusCode)
		}
	}
	if !limited {
		t.Fatalf("expected the chat rate limit to trip")
	}
}

func TestTimeoutEndpoint(t *testing.T) {
	srv := New(nil, config.Default())
	fake := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	srv.clock = fake
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts)
	araID := joinPlayer(t, ts, roomID, "Ara")
	bomID := joinPlayer(t, ts, roomID, "Bom")
	startGame(t, ts, roomID, 1)

	fake.Advance(125 * time.Second)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/timeout", map[string]any{
		"player_id":     bomID,
		"expected_turn": 1,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-drawer timeout: expected %d, got %d", http.StatusForbidden, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/timeout", map[string]any{
		"player_id":     araID,
		"expected_turn": 1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("drawer timeout: expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if !body["advanced"].(bool) {
		t.Fatalf("expected the timeout to advance the turn")
	}
	if body["turn_counter"].(float64) != 2 {
		t.Fatalf("expected counter 2, got %v", body["turn_counter"])
	}

	// the same report again is stale and must change nothing
	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/timeout", map[string]any{
		"player_id":     araID,
		"expected_turn": 1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stale timeout: expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["advanced"].(bool) {
		t.Fatalf("stale timeout must be a no-op")
	}
}
