package engine

import (
	"testing"
	"time"

	"github.com/abhasgawali/neon-domination/internal/events"
	"github.com/abhasgawali/neon-domination/internal/platform/config"
)

func TestLobbyTimerExpiresForSoloPlayer(t *testing.T) {
	h := newHarness(t, nil)
	h.e.Join("a", "Alice", "")

	h.clock.Advance(14 * time.Second)
	if _, ok := lastEvent(h.log, "a", events.EventTypeLobbyTimerExpired); ok {
		t.Fatalf("timer fired early")
	}
	h.clock.Advance(time.Second)
	if _, ok := lastEvent(h.log, "a", events.EventTypeLobbyTimerExpired); !ok {
		t.Fatalf("expected lobbyTimerExpired after 15s")
	}
	if r := h.e.reg.roomOf("a"); r.status != StatusWaiting {
		t.Errorf("expiry must not start the match, got %s", r.status)
	}
}

func TestLobbyTimerCancelledBySecondJoin(t *testing.T) {
	h := newHarness(t, nil)
	h.e.Join("a", "Alice", "")
	h.clock.Advance(5 * time.Second)
	h.e.Join("b", "Bob", "")
	h.clock.Advance(time.Minute)

	if n := len(h.log.ByType(events.EventTypeLobbyTimerExpired)); n != 0 {
		t.Errorf("expected no expiry after the lobby filled, got %d", n)
	}
}

func TestLobbyTimerStaleCallbackIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.e.Join("a", "Alice", "")
	r := h.e.reg.roomOf("a")

	r.mu.Lock()
	gen := r.lobbyGen
	h.e.cancelLobbyTimer(r)
	r.mu.Unlock()

	// A callback that lost the race with the cancel.
	h.e.lobbyTimerFired(r, gen)
	if n := len(h.log.ByType(events.EventTypeLobbyTimerExpired)); n != 0 {
		t.Errorf("stale timer delivered an expiry")
	}
}

func TestLobbyTimerRestartSupersedes(t *testing.T) {
	h := newHarness(t, nil)
	h.e.Join("a", "Alice", "")
	r := h.e.reg.roomOf("a")

	h.clock.Advance(10 * time.Second)
	r.mu.Lock()
	h.e.startLobbyTimer(r)
	r.mu.Unlock()

	if h.clock.pending() != 1 {
		t.Fatalf("expected exactly one live timer, got %d", h.clock.pending())
	}
	h.clock.Advance(10 * time.Second)
	if n := len(h.log.ByType(events.EventTypeLobbyTimerExpired)); n != 0 {
		t.Fatalf("superseded timer fired")
	}
	h.clock.Advance(5 * time.Second)
	if n := len(h.log.ByType(events.EventTypeLobbyTimerExpired)); n != 1 {
		t.Errorf("expected one expiry, got %d", n)
	}
}

func TestStartGameWithBots(t *testing.T) {
	h := newHarness(t, nil)
	h.e.Join("a", "Alice", "")
	h.e.StartGameWithBots("a")

	r := h.e.reg.roomOf("a")
	if r.status != StatusPlaying {
		t.Fatalf("expected playing, got %s", r.status)
	}
	if len(r.players) != 4 {
		t.Fatalf("expected 1 human and 3 bots, got %d players", len(r.players))
	}

	colors := map[string]bool{}
	for i, p := range r.playerList()[1:] {
		if !p.IsBot() {
			t.Errorf("seat %d should be a bot", i+1)
		}
		if want := "Bot " + string(rune('1'+i)); p.Name != want {
			t.Errorf("expected %q, got %q", want, p.Name)
		}
		if p.Score != 1 || len(r.grid.OwnedBy(p.ID)) != 1 {
			t.Errorf("bot %s should hold one base tile", p.Name)
		}
		colors[p.Color] = true
	}
	colors[r.players["a"].Color] = true
	if len(colors) != 4 {
		t.Errorf("expected four distinct colours, got %d", len(colors))
	}

	state := lastState(t, h.log, "a")
	if !state.Players[r.order[1]].IsBot {
		t.Errorf("bots should be flagged in snapshots")
	}

	h.clock.Advance(time.Minute)
	if n := len(h.log.ByType(events.EventTypeLobbyTimerExpired)); n != 0 {
		t.Errorf("lobby timer should have been cancelled")
	}

	h.e.StartGameWithBots("a")
	if len(r.players) != 4 {
		t.Errorf("second call must be a no-op")
	}
}

func TestStartGameWithBotsRespectsCapacity(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.MaxPlayersPerRoom = 2 })
	h.e.Join("a", "Alice", "")
	h.e.StartGameWithBots("a")

	r := h.e.reg.roomOf("a")
	if len(r.players) != 2 {
		t.Errorf("expected one bot to fill the last seat, got %d players", len(r.players))
	}
}

func TestStartGameSolo(t *testing.T) {
	h := newHarness(t, nil)
	h.e.Join("a", "Alice", "")
	h.e.StartGameSolo("a")

	r := h.e.reg.roomOf("a")
	if r.status != StatusPlaying || len(r.players) != 1 {
		t.Errorf("expected a solo match, got %s with %d players", r.status, len(r.players))
	}
	if h.clock.pending() != 0 {
		t.Errorf("lobby timer should have been cancelled")
	}
	if state := lastState(t, h.log, "a"); state.Status != string(StatusPlaying) {
		t.Errorf("expected a playing broadcast, got %s", state.Status)
	}
}

func TestLobbyActionsIgnoredOutsideWaiting(t *testing.T) {
	h := newHarness(t, nil)
	r := h.startMatch(t)
	before := len(h.log.Replay())

	h.e.StartGameSolo("a")
	h.e.StartGameWithBots("b")
	h.e.StartGameSolo("nobody")

	if len(r.players) != 2 {
		t.Errorf("no bots should join a running match")
	}
	if after := len(h.log.Replay()); after != before {
		t.Errorf("expected no notifications, got %d", after-before)
	}
}
