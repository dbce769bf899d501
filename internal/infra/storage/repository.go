// Package storage provides the persistence layer for finished matches.
// Live room state is never stored; only results are archived once a match ends.
package storage

import (
	"context"
	"sync"
	"time"
)

// PlayerResult is one seat's final standing.
type PlayerResult struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	IsBot    bool   `json:"is_bot"`
	Score    int    `json:"score"`
	Energy   int    `json:"energy"`
}

// MatchRecord is the archived outcome of one match.
type MatchRecord struct {
	MatchID  string         `json:"match_id" db:"match_id"`
	RoomCode string         `json:"room_code" db:"room_code"`
	Winner   string         `json:"winner" db:"winner"`
	Duration time.Duration  `json:"duration" db:"duration_ms"`
	EndedAt  time.Time      `json:"ended_at" db:"ended_at"`
	Players  []PlayerResult `json:"players" db:"players_json"`
}

// MatchRepository defines the interface for match persistence.
// The engine uses this interface; the implementation is in infra.
type MatchRepository interface {
	// Append stores a finished match.
	Append(ctx context.Context, match MatchRecord) error

	// Recent returns the latest matches, newest first.
	Recent(ctx context.Context, limit int) ([]MatchRecord, error)

	// ByRoom returns the latest matches played under a room code, newest first.
	ByRoom(ctx context.Context, roomCode string, limit int) ([]MatchRecord, error)
}

// MemoryMatchRepository keeps matches in process memory. It backs the server
// when no database path is configured.
type MemoryMatchRepository struct {
	mu      sync.RWMutex
	matches []MatchRecord
}

func NewMemoryMatchRepository() *MemoryMatchRepository {
	return &MemoryMatchRepository{}
}

func (r *MemoryMatchRepository) Append(ctx context.Context, match MatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, match)
	return nil
}

func (r *MemoryMatchRepository) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	return r.filter("", limit), nil
}

func (r *MemoryMatchRepository) ByRoom(ctx context.Context, roomCode string, limit int) ([]MatchRecord, error) {
	return r.filter(roomCode, limit), nil
}

func (r *MemoryMatchRepository) filter(roomCode string, limit int) []MatchRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit = normalizeLimit(limit)
	var out []MatchRecord
	for i := len(r.matches) - 1; i >= 0; i-- {
		if roomCode != "" && r.matches[i].RoomCode != roomCode {
			continue
		}
		out = append(out, r.matches[i])
		if len(out) == limit {
			break
		}
	}
	return out
}
