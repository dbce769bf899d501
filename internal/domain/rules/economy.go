// Package rules contains the pure calculation logic for game mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"time"

	"github.com/abhasgawali/neon-domination/internal/domain/player"
)

// Action is a tile interaction a player can submit.
type Action string

const (
	ActionCapture Action = "capture"
	ActionTrap    Action = "trap"
)

// ParseAction accepts the canonical names and the legacy client aliases.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "capture", "conquer":
		return ActionCapture, true
	case "trap", "mine":
		return ActionTrap, true
	}
	return "", false
}

// Effect is the visual cue attached to a tile.
type Effect string

const (
	EffectCapture      Effect = "capture"
	EffectShieldDeny   Effect = "shield-deny"
	EffectTrapDetonate Effect = "trap-detonate"
)

// Energy costs and rewards.
const (
	CaptureCost = 10
	TrapCost    = 60
	ShieldCost  = 100
	TrapPenalty = 30
	SunReward   = 25
)

// ShieldDuration is how long a global shield protects the tiles it covers.
const ShieldDuration = 15 * time.Second

// MaxBots caps how many bots a lobby can be filled with.
const MaxBots = 3

// CostOf returns the energy price of an action.
func CostOf(a Action) int {
	switch a {
	case ActionCapture:
		return CaptureCost
	case ActionTrap:
		return TrapCost
	}
	return 0
}

// DetonationCost is what an attacker pays for walking into a trap.
func DetonationCost() int {
	return CaptureCost + TrapPenalty
}

// PickWinner returns the player with the highest score, using energy as the
// tie-break. Comparisons are strict, so the earliest player in the slice keeps
// an exact tie. Returns nil for an empty slice.
func PickWinner(players []*player.Player) *player.Player {
	var best *player.Player
	bestScore, bestEnergy := -1, -1
	for _, p := range players {
		if p.Score > bestScore || (p.Score == bestScore && p.Energy > bestEnergy) {
			best = p
			bestScore, bestEnergy = p.Score, p.Energy
		}
	}
	return best
}

// BotCount is the number of bots a lobby with seated players can take.
func BotCount(seated, capacity int) int {
	n := capacity - seated
	if n > MaxBots {
		n = MaxBots
	}
	if n < 0 {
		return 0
	}
	return n
}
