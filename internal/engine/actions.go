package engine

import (
	"time"

	"github.com/abhasgawali/neon-domination/internal/domain/grid"
	"github.com/abhasgawali/neon-domination/internal/domain/player"
	"github.com/abhasgawali/neon-domination/internal/domain/rules"
	"github.com/abhasgawali/neon-domination/internal/events"
)

// InteractTile applies a capture or trap action to one tile of the caller's
// room. Actions arriving within the cooldown of the previous one are dropped
// silently; every other refusal is reported to the caller.
func (e *Engine) InteractTile(connID string, tileID int, action rules.Action) {
	r, p := e.acquire(connID)
	if r == nil {
		return
	}
	defer e.release(r)
	if r.status != StatusPlaying {
		return
	}

	now := e.clock.Now()
	if !p.LastActionAt.IsZero() && now.Sub(p.LastActionAt) < e.cfg.ActionCooldown {
		return
	}
	// Recorded before validation so refused actions also start the cooldown.
	p.LastActionAt = now

	var err error
	tile, ok := r.grid.Tile(tileID)
	cost := rules.CostOf(action)
	switch {
	case !ok:
		err = ErrInvalidTile
	case cost == 0:
		err = ErrUnknownAction
	case !p.CanAfford(cost):
		err = ErrNotEnoughEnergy
	case action == rules.ActionTrap:
		err = placeTrap(p, tile)
	default:
		err = e.capture(r, p, tile, now)
	}
	e.metrics.RecordAction(err == nil)
	if err != nil {
		e.reject(r, p.ID, err)
		return
	}
	r.broadcastState(now, e.cfg.TickInterval)
}

// capture runs the capture state machine against tile.
func (e *Engine) capture(r *Room, p *player.Player, tile *grid.Tile, now time.Time) error {
	if tile.OwnedBy(p.ID) {
		return ErrAlreadyOwned
	}
	// A player left with no territory may restart anywhere.
	if p.Score > 0 && !r.grid.Borders(tile.ID, p.ID) {
		e.denyFeedback(r, p.ID, tile.ID, now)
		return ErrNotAdjacent
	}
	if tile.Shielded(now) {
		e.denyFeedback(r, p.ID, tile.ID, now)
		return ErrShielded
	}
	if tile.HasTrap && tile.Owned() {
		return e.detonate(r, p, tile, now)
	}

	p.Spend(rules.CaptureCost)
	if prev, ok := r.players[tile.OwnerID]; ok {
		prev.Score--
	}
	tile.OwnerID = p.ID
	tile.HasTrap = false
	p.Score++
	r.broadcast(now, events.EventTypeTileEffect, events.TileEffectPayload{TileID: tile.ID, Effect: string(rules.EffectCapture)})
	return nil
}

// detonate springs an enemy trap. The tile turns neutral and every tile of
// the attacker bordering it is handed to the trap's owner.
func (e *Engine) detonate(r *Room, p *player.Player, tile *grid.Tile, now time.Time) error {
	if !p.CanAfford(rules.DetonationCost()) {
		return ErrTrapUnaffordable
	}
	p.Spend(rules.DetonationCost())

	trapperID := tile.OwnerID
	trapper := r.players[trapperID]
	tile.HasTrap = false
	tile.OwnerID = ""
	if trapper != nil {
		trapper.Score--
	}
	r.broadcast(now, events.EventTypeTileEffect, events.TileEffectPayload{TileID: tile.ID, Effect: string(rules.EffectTrapDetonate)})

	for _, n := range r.grid.Neighbors(tile.ID) {
		if !n.OwnedBy(p.ID) {
			continue
		}
		p.Score--
		if trapper == nil {
			n.Reset()
			continue
		}
		n.OwnerID = trapperID
		trapper.Score++
		r.broadcast(now, events.EventTypeTileEffect, events.TileEffectPayload{TileID: n.ID, Effect: string(rules.EffectCapture)})
	}
	e.logger.Event("TRAP_DETONATED", r.code, p.ID, trapperID)
	return nil
}

// placeTrap arms a trap on one of the player's own tiles.
func placeTrap(p *player.Player, tile *grid.Tile) error {
	if !tile.OwnedBy(p.ID) {
		return ErrTrapNotOwned
	}
	if tile.HasTrap {
		return ErrAlreadyTrapped
	}
	p.Spend(rules.TrapCost)
	tile.HasTrap = true
	return nil
}

func (e *Engine) denyFeedback(r *Room, connID string, tileID int, now time.Time) {
	r.emit(now, events.EventTypeTileEffect, events.TileEffectPayload{TileID: tileID, Effect: string(rules.EffectShieldDeny)}, connID)
}
