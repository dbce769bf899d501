package engine

import (
	"context"
	"time"
)

// run drives the game loop until ctx is cancelled.
func (e *Engine) run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("game loop stopped")
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick advances every live room by one step of the game loop.
func (e *Engine) Tick() {
	start := time.Now()
	for _, r := range e.reg.list() {
		e.tickRoom(r)
	}
	e.metrics.RecordTick(time.Since(start))
}

// tickRoom counts a playing room down, rolls for a sun, and either ends the
// match or sends the periodic full-state heartbeat.
func (e *Engine) tickRoom(r *Room) {
	r.mu.Lock()
	defer e.release(r)
	if r.closed || r.status != StatusPlaying {
		return
	}

	r.ticksRemaining--
	r.ticksPlayed++
	if e.rng.Float64() < e.cfg.SunSpawnChance {
		e.spawnSun(r)
	}

	if r.ticksRemaining <= 0 {
		e.endMatch(r)
		return
	}
	if r.ticksPlayed%e.cfg.HeartbeatEvery == 0 {
		r.broadcastState(e.clock.Now(), e.cfg.TickInterval)
	}
}
