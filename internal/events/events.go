// Package events defines the outbound notification contract of the engine.
// The engine appends events to an Outbox; a Dispatcher (the WebSocket hub in
// production) delivers them to the listed recipients.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType names an outbound notification.
type EventType string

const (
	EventTypeJoinedRoom        EventType = "joinedRoom"
	EventTypeGameStateUpdate   EventType = "gameStateUpdate"
	EventTypeTileEffect        EventType = "tileEffect"
	EventTypeSpawnSun          EventType = "spawnSun"
	EventTypeError             EventType = "error"
	EventTypeLobbyTimerExpired EventType = "lobbyTimerExpired"
	EventTypeGameOver          EventType = "gameOver"
)

// GameEvent is one notification addressed to a set of connections.
type GameEvent struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Type       EventType   `json:"type"`
	RoomID     string      `json:"room_id"`
	Recipients []string    `json:"recipients"` // connection ids
	Payload    interface{} `json:"payload"`
}

// JoinedRoomPayload tells a connection where it was seated.
type JoinedRoomPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// TileEffectPayload carries a visual cue for one tile.
type TileEffectPayload struct {
	TileID int    `json:"tileId"`
	Effect string `json:"type"`
}

// SpawnSunPayload announces a collectible.
type SpawnSunPayload struct {
	SunID    string  `json:"id"`
	XPercent float64 `json:"xPercent"`
}

// ErrorPayload is a human-readable rejection.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// GameOverPayload names the winner by display name.
type GameOverPayload struct {
	Winner string `json:"winner"`
}

// StateSnapshot is the full room state as seen by one recipient.
type StateSnapshot struct {
	RoomID        string                    `json:"roomId"`
	Players       map[string]PlayerSnapshot `json:"players"`
	Grid          []TileSnapshot            `json:"grid"`
	Status        string                    `json:"status"`
	TimeRemaining float64                   `json:"timeRemaining"`
	WinnerID      *string                   `json:"winnerId"`
}

type PlayerSnapshot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Energy int    `json:"energy"`
	Score  int    `json:"score"`
	IsBot  bool   `json:"isBot"`
}

type TileSnapshot struct {
	ID              int     `json:"id"`
	OwnerID         *string `json:"ownerId"`
	ShieldExpiresAt int64   `json:"shieldExpiresAt"` // unix ms, 0 when unshielded
	HasMine         bool    `json:"hasMine"`
}

// Dispatcher delivers events. Implementations must not block.
type Dispatcher interface {
	Dispatch(event GameEvent)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(GameEvent)

func (f DispatcherFunc) Dispatch(event GameEvent) { f(event) }

// Discard drops every event.
var Discard Dispatcher = DispatcherFunc(func(GameEvent) {})

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
