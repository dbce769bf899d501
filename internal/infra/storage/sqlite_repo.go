package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const defaultLimit = 20

// SQLiteMatchRepository implements MatchRepository for SQLite.
type SQLiteMatchRepository struct {
	db *sql.DB
}

func NewSQLiteMatchRepository(db *sql.DB) *SQLiteMatchRepository {
	return &SQLiteMatchRepository{db: db}
}

func (r *SQLiteMatchRepository) Append(ctx context.Context, match MatchRecord) error {
	playersBytes, err := json.Marshal(match.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}

	query := `
		INSERT INTO matches (match_id, room_code, winner, duration_ms, ended_at, players_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		match.MatchID, match.RoomCode, match.Winner,
		match.Duration.Milliseconds(), match.EndedAt.UnixMilli(), string(playersBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append match: %w", err)
	}
	return nil
}

func (r *SQLiteMatchRepository) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	query := `SELECT match_id, room_code, winner, duration_ms, ended_at, players_json FROM matches ORDER BY ended_at DESC, rowid DESC LIMIT ?`
	return r.getMany(ctx, query, normalizeLimit(limit))
}

func (r *SQLiteMatchRepository) ByRoom(ctx context.Context, roomCode string, limit int) ([]MatchRecord, error) {
	query := `SELECT match_id, room_code, winner, duration_ms, ended_at, players_json FROM matches WHERE room_code = ? ORDER BY ended_at DESC, rowid DESC LIMIT ?`
	return r.getMany(ctx, query, roomCode, normalizeLimit(limit))
}

func (r *SQLiteMatchRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		var m MatchRecord
		var durationMs, endedAtMs int64
		var playersStr string
		if err := rows.Scan(&m.MatchID, &m.RoomCode, &m.Winner, &durationMs, &endedAtMs, &playersStr); err != nil {
			return nil, err
		}
		m.Duration = time.Duration(durationMs) * time.Millisecond
		m.EndedAt = time.UnixMilli(endedAtMs).UTC()
		if err := json.Unmarshal([]byte(playersStr), &m.Players); err != nil {
			return nil, fmt.Errorf("failed to decode players of match %s: %w", m.MatchID, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
