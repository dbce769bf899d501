// Package player defines the participants of a room.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package player

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Kind distinguishes connected humans from synthetic seat fillers.
type Kind string

const (
	KindHuman Kind = "human"
	KindBot   Kind = "bot"
)

const (
	MaxNameLength = 12
	DefaultName   = "Commander"
	StartEnergy   = 50
)

// Palette is the fixed set of colours handed out per room, in order.
var Palette = [...]string{"#0ea5e9", "#ef4444", "#10b981", "#8b5cf6"}

// FallbackColor is used once the palette is exhausted.
const FallbackColor = "#ffffff"

// Player is one seat in a room. For humans ID is the connection id.
type Player struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Energy int    `json:"energy"`
	Score  int    `json:"score"` // tiles owned, kept in step with the grid

	LastActionAt time.Time `json:"-"`
}

// NewHuman creates a player for a connected client.
func NewHuman(connID, name, color string) *Player {
	return &Player{
		ID:     connID,
		Kind:   KindHuman,
		Name:   SanitizeName(name),
		Color:  color,
		Energy: StartEnergy,
	}
}

// NewBot creates a synthetic player.
func NewBot(id, name, color string) *Player {
	return &Player{
		ID:     id,
		Kind:   KindBot,
		Name:   name,
		Color:  color,
		Energy: StartEnergy,
	}
}

func (p *Player) IsBot() bool {
	return p.Kind == KindBot
}

// CanAfford reports whether the player holds at least cost energy.
func (p *Player) CanAfford(cost int) bool {
	return p.Energy >= cost
}

// Spend deducts cost. Callers check CanAfford first.
func (p *Player) Spend(cost int) {
	p.Energy -= cost
}

// SanitizeName trims the display name and caps it at MaxNameLength runes.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
		name = strings.TrimSpace(name)
	}
	if name == "" {
		return DefaultName
	}
	return name
}

// PickColor returns the first palette colour not present in taken.
func PickColor(taken []string) string {
	free := FreeColors(taken)
	if len(free) == 0 {
		return FallbackColor
	}
	return free[0]
}

// FreeColors lists the palette colours not present in taken, in palette order.
func FreeColors(taken []string) []string {
	used := make(map[string]bool, len(taken))
	for _, c := range taken {
		used[c] = true
	}
	var free []string
	for _, c := range Palette {
		if !used[c] {
			free = append(free, c)
		}
	}
	return free
}
