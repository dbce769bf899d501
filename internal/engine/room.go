package engine

import (
	"math"
	"sync"
	"time"

	"github.com/abhasgawali/neon-domination/internal/domain/grid"
	"github.com/abhasgawali/neon-domination/internal/domain/player"
	"github.com/abhasgawali/neon-domination/internal/events"
)

// Status is the lifecycle phase of a room.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusEnded   Status = "ended"
)

// Room is one isolated match. Every field is guarded by mu.
type Room struct {
	mu sync.Mutex

	code    string
	players map[string]*player.Player
	order   []string // registration order, used for tie-breaks
	grid    *grid.Grid
	status  Status

	ticksRemaining int
	ticksPlayed    int
	startedAt      time.Time
	winner         string

	suns map[string]struct{}

	lobbyTimer Timer
	lobbyGen   uint64

	// closed is set once the room has been emptied and is being removed from
	// the registry. Joiners that raced the teardown must pick another room.
	closed bool

	outbox events.Outbox
}

func newRoom(code string, ticks int) *Room {
	return &Room{
		code:           code,
		players:        make(map[string]*player.Player),
		grid:           grid.New(),
		status:         StatusWaiting,
		ticksRemaining: ticks,
		suns:           make(map[string]struct{}),
	}
}

// Code returns the room's immutable identifier.
func (r *Room) Code() string {
	return r.code
}

func (r *Room) addPlayer(p *player.Player) {
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
}

func (r *Room) removePlayer(id string) {
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// playerList returns the seated players in registration order.
func (r *Room) playerList() []*player.Player {
	out := make([]*player.Player, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// humans returns the connection ids of every human in the room.
func (r *Room) humans() []string {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.players[id]; ok && !p.IsBot() {
			out = append(out, id)
		}
	}
	return out
}

func (r *Room) colors() []string {
	out := make([]string, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.Color)
	}
	return out
}

func (r *Room) timeRemaining(tick time.Duration) float64 {
	secs := float64(r.ticksRemaining) * tick.Seconds()
	return math.Round(secs*10) / 10
}

// snapshotFor renders the room as seen by viewer. Trap flags are only visible
// on the viewer's own tiles.
func (r *Room) snapshotFor(viewer string, tick time.Duration) events.StateSnapshot {
	players := make(map[string]events.PlayerSnapshot, len(r.players))
	for id, p := range r.players {
		players[id] = events.PlayerSnapshot{
			ID:     p.ID,
			Name:   p.Name,
			Color:  p.Color,
			Energy: p.Energy,
			Score:  p.Score,
			IsBot:  p.IsBot(),
		}
	}

	tiles := r.grid.Tiles()
	cells := make([]events.TileSnapshot, len(tiles))
	for i := range tiles {
		t := &tiles[i]
		cell := events.TileSnapshot{ID: t.ID}
		if t.Owned() {
			owner := t.OwnerID
			cell.OwnerID = &owner
		}
		if !t.ShieldExpiresAt.IsZero() {
			cell.ShieldExpiresAt = t.ShieldExpiresAt.UnixMilli()
		}
		cell.HasMine = t.HasTrap && t.OwnedBy(viewer)
		cells[i] = cell
	}

	snap := events.StateSnapshot{
		RoomID:        r.code,
		Players:       players,
		Grid:          cells,
		Status:        string(r.status),
		TimeRemaining: r.timeRemaining(tick),
	}
	if r.status == StatusEnded {
		winner := r.winner
		snap.WinnerID = &winner
	}
	return snap
}

// emit queues an event for the given connections.
func (r *Room) emit(now time.Time, t events.EventType, payload interface{}, recipients ...string) {
	r.outbox.Append(events.GameEvent{
		Timestamp:  now,
		Type:       t,
		RoomID:     r.code,
		Recipients: recipients,
		Payload:    payload,
	})
}

// broadcast queues an event for every human in the room.
func (r *Room) broadcast(now time.Time, t events.EventType, payload interface{}) {
	r.emit(now, t, payload, r.humans()...)
}

// broadcastState queues a per-recipient full-state snapshot.
func (r *Room) broadcastState(now time.Time, tick time.Duration) {
	for _, id := range r.humans() {
		r.emit(now, events.EventTypeGameStateUpdate, r.snapshotFor(id, tick), id)
	}
}

// RoomInfo is the public summary of a live room.
type RoomInfo struct {
	Code          string  `json:"code"`
	Status        Status  `json:"status"`
	Players       int     `json:"players"`
	Humans        int     `json:"humans"`
	Capacity      int     `json:"capacity"`
	TimeRemaining float64 `json:"timeRemaining"`
}
