package engine

import (
	"go.uber.org/zap"
)

// Disconnect removes the connection's player from its room. The player's
// tiles return to neutral. A room left without humans is torn down together
// with its bots and lobby timer.
func (e *Engine) Disconnect(connID string) {
	code, ok := e.reg.unbind(connID)
	if !ok {
		return
	}
	r := e.reg.get(code)
	if r == nil {
		return
	}

	r.mu.Lock()
	p, seated := r.players[connID]
	if r.closed || !seated {
		r.mu.Unlock()
		return
	}

	for _, t := range r.grid.OwnedBy(p.ID) {
		t.Reset()
	}
	r.removePlayer(p.ID)
	e.metrics.RecordPlayer(-1)
	e.logger.Event("PLAYER_LEFT", r.code, connID, p.Name)

	empty := len(r.humans()) == 0
	if empty {
		r.closed = true
		e.cancelLobbyTimer(r)
		clear(r.suns)
		e.metrics.RecordPlayer(-int64(len(r.players)))
	} else {
		r.broadcastState(e.clock.Now(), e.cfg.TickInterval)
	}
	e.release(r)

	if empty {
		e.reg.remove(r)
		e.metrics.RecordRoom(-1)
		e.logger.Info("room closed", zap.String("room", code))
	}
}
