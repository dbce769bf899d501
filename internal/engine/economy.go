package engine

import (
	"github.com/google/uuid"

	"github.com/abhasgawali/neon-domination/internal/domain/rules"
	"github.com/abhasgawali/neon-domination/internal/events"
)

// sunLaneWidth is the horizontal band, in percent of the board, suns fall in.
const sunLaneWidth = 90

// ActivateGlobalShield shields every tile the caller holds right now for
// rules.ShieldDuration. Tiles gained later are not covered.
func (e *Engine) ActivateGlobalShield(connID string) {
	r, p := e.acquire(connID)
	if r == nil {
		return
	}
	defer e.release(r)
	if r.status == StatusEnded {
		return
	}
	if !p.CanAfford(rules.ShieldCost) {
		e.reject(r, p.ID, ErrNotEnoughEnergy)
		return
	}

	now := e.clock.Now()
	p.Spend(rules.ShieldCost)
	expires := now.Add(rules.ShieldDuration)
	for _, t := range r.grid.OwnedBy(p.ID) {
		t.ShieldExpiresAt = expires
	}
	e.logger.Event("GLOBAL_SHIELD", r.code, p.ID, "")
	r.broadcastState(now, e.cfg.TickInterval)
}

// CollectSun grants the sun's reward to the first caller that claims it.
// Unknown or already collected ids are ignored.
func (e *Engine) CollectSun(connID, sunID string) {
	r, p := e.acquire(connID)
	if r == nil {
		return
	}
	defer e.release(r)
	if r.status == StatusEnded {
		return
	}
	if _, ok := r.suns[sunID]; !ok {
		return
	}
	delete(r.suns, sunID)
	p.Energy += rules.SunReward
	e.metrics.RecordSunCollected()
	r.broadcastState(e.clock.Now(), e.cfg.TickInterval)
}

// spawnSun adds a collectible to a locked room and announces it.
func (e *Engine) spawnSun(r *Room) {
	id := uuid.NewString()
	r.suns[id] = struct{}{}
	x := e.rng.Float64() * sunLaneWidth
	e.metrics.RecordSunSpawned()
	r.broadcast(e.clock.Now(), events.EventTypeSpawnSun, events.SpawnSunPayload{SunID: id, XPercent: x})
}
