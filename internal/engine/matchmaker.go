package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/abhasgawali/neon-domination/internal/domain/player"
	"github.com/abhasgawali/neon-domination/internal/events"
)

// maxJoinAttempts bounds how often a join retries after losing a race with a
// room teardown.
const maxJoinAttempts = 5

// Join seats a connection. With a room code the connection joins or creates
// that room; without one it is placed in the first waiting or playing room
// with a free seat, or in a new room.
func (e *Engine) Join(connID, name, roomCode string) {
	if e.reg.roomOf(connID) != nil {
		e.Disconnect(connID)
	}
	code := NormalizeRoomCode(roomCode)

	for attempt := 0; attempt < maxJoinAttempts; attempt++ {
		var r *Room
		if code != "" {
			r, _ = e.reg.getOrCreate(code, e.newRoom)
		} else {
			r = e.findAvailable()
			if r == nil {
				r = e.reg.create(e.newRoom)
			}
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			// Help the teardown along so the next attempt builds a fresh room.
			e.reg.remove(r)
			continue
		}
		if code == "" && !e.hasSeat(r) {
			r.mu.Unlock()
			continue
		}
		e.seat(r, connID, name)
		e.release(r)
		return
	}
	e.sendDirect(connID, events.EventTypeError, events.ErrorPayload{
		Message: ErrRoomUnavailable.Message,
		Code:    ErrRoomUnavailable.Code,
	})
}

func (e *Engine) newRoom(code string) *Room {
	e.metrics.RecordRoom(1)
	e.logger.Info("room created", zap.String("room", code))
	return newRoom(code, e.matchTicks())
}

// matchTicks is the match length expressed in game loop ticks.
func (e *Engine) matchTicks() int {
	n := int(e.cfg.GameDuration / e.cfg.TickInterval)
	if n < 1 {
		n = 1
	}
	return n
}

// findAvailable returns the oldest room quick play can seat into.
func (e *Engine) findAvailable() *Room {
	for _, r := range e.reg.list() {
		r.mu.Lock()
		ok := !r.closed && e.hasSeat(r)
		r.mu.Unlock()
		if ok {
			return r
		}
	}
	return nil
}

func (e *Engine) hasSeat(r *Room) bool {
	return r.status != StatusEnded && len(r.players) < e.cfg.MaxPlayersPerRoom
}

// seat adds a human to a locked room and runs the lobby transitions.
func (e *Engine) seat(r *Room, connID, name string) {
	if r.status == StatusEnded {
		e.reject(r, connID, ErrMatchEnded)
		return
	}
	if len(r.players) >= e.cfg.MaxPlayersPerRoom {
		e.reject(r, connID, ErrRoomFull)
		return
	}

	now := e.clock.Now()
	p := player.NewHuman(connID, name, player.PickColor(r.colors()))
	r.addPlayer(p)
	e.placeBase(r, p)
	e.reg.bind(connID, r.code)
	e.metrics.RecordPlayer(1)
	e.logger.Event("PLAYER_JOINED", r.code, connID, p.Name)

	r.emit(now, events.EventTypeJoinedRoom, events.JoinedRoomPayload{RoomID: r.code, PlayerID: connID}, connID)
	r.broadcastState(now, e.cfg.TickInterval)

	if r.status == StatusWaiting && len(r.players) == 1 {
		e.startLobbyTimer(r)
	} else if len(r.players) >= 2 {
		e.cancelLobbyTimer(r)
		if r.status == StatusWaiting {
			e.startMatch(r, now)
			r.broadcastState(now, e.cfg.TickInterval)
		}
	}
}

// placeBase hands a new player one random neutral tile.
func (e *Engine) placeBase(r *Room, p *player.Player) {
	free := r.grid.FreeTiles()
	if len(free) == 0 {
		return
	}
	t, _ := r.grid.Tile(free[e.rng.IntN(len(free))])
	t.OwnerID = p.ID
	p.Score++
}

func (e *Engine) startMatch(r *Room, now time.Time) {
	r.status = StatusPlaying
	r.startedAt = now
	e.metrics.RecordMatchStarted()
	e.logger.Info("match started",
		zap.String("room", r.code),
		zap.Int("players", len(r.players)),
	)
}
