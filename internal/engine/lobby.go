package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/abhasgawali/neon-domination/internal/domain/player"
	"github.com/abhasgawali/neon-domination/internal/domain/rules"
	"github.com/abhasgawali/neon-domination/internal/events"
)

// startLobbyTimer arms the single-shot lobby timer, superseding any live one.
// The room must be locked.
func (e *Engine) startLobbyTimer(r *Room) {
	e.cancelLobbyTimer(r)
	gen := r.lobbyGen
	r.lobbyTimer = e.clock.AfterFunc(e.cfg.LobbyWait, func() {
		e.lobbyTimerFired(r, gen)
	})
}

// cancelLobbyTimer stops the live timer, if any. Bumping the generation also
// voids a callback that already fired and is waiting for the room lock.
func (e *Engine) cancelLobbyTimer(r *Room) {
	if r.lobbyTimer != nil {
		r.lobbyTimer.Stop()
		r.lobbyTimer = nil
	}
	r.lobbyGen++
}

func (e *Engine) lobbyTimerFired(r *Room, gen uint64) {
	r.mu.Lock()
	defer e.release(r)

	if r.closed || gen != r.lobbyGen {
		return
	}
	r.lobbyTimer = nil
	if r.status != StatusWaiting || len(r.players) != 1 {
		return
	}
	e.logger.Event("LOBBY_TIMER_EXPIRED", r.code, "", "")
	r.broadcast(e.clock.Now(), events.EventTypeLobbyTimerExpired, struct{}{})
}

// StartGameWithBots fills the caller's waiting room with up to three bots and
// starts the match.
func (e *Engine) StartGameWithBots(connID string) {
	r, _ := e.acquire(connID)
	if r == nil {
		return
	}
	defer e.release(r)
	if r.status != StatusWaiting {
		return
	}
	e.cancelLobbyTimer(r)

	n := rules.BotCount(len(r.players), e.cfg.MaxPlayersPerRoom)
	free := player.FreeColors(r.colors())
	for i := 0; i < n; i++ {
		color := player.FallbackColor
		if i < len(free) {
			color = free[i]
		}
		bot := player.NewBot(fmt.Sprintf("bot-%s-%d", r.code, i+1), fmt.Sprintf("Bot %d", i+1), color)
		r.addPlayer(bot)
		e.placeBase(r, bot)
		e.metrics.RecordPlayer(1)
	}

	now := e.clock.Now()
	e.startMatch(r, now)
	e.logger.Info("lobby filled with bots", zap.String("room", r.code), zap.Int("bots", n))
	r.broadcastState(now, e.cfg.TickInterval)
}

// StartGameSolo starts the caller's waiting room with whoever is seated.
func (e *Engine) StartGameSolo(connID string) {
	r, _ := e.acquire(connID)
	if r == nil {
		return
	}
	defer e.release(r)
	if r.status != StatusWaiting {
		return
	}
	e.cancelLobbyTimer(r)

	now := e.clock.Now()
	e.startMatch(r, now)
	r.broadcastState(now, e.cfg.TickInterval)
}
