package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrDuplicateMatch is returned when a match id has already been archived.
var ErrDuplicateMatch = errors.New("match already archived")

// RedisMatchRepository implements MatchRepository on Redis. Each match is a
// JSON string; sorted sets scored by end time index it globally and per room.
type RedisMatchRepository struct {
	c      *redis.Client
	prefix string
}

func NewRedisMatchRepository(c *redis.Client, prefix string) *RedisMatchRepository {
	if prefix == "" {
		prefix = "neon"
	}
	return &RedisMatchRepository{c: c, prefix: prefix}
}

func (r *RedisMatchRepository) matchKey(id string) string {
	return fmt.Sprintf("%s:match:%s", r.prefix, id)
}

func (r *RedisMatchRepository) indexKey() string {
	return r.prefix + ":matches"
}

func (r *RedisMatchRepository) roomKey(code string) string {
	return fmt.Sprintf("%s:matches:room:%s", r.prefix, code)
}

func (r *RedisMatchRepository) Append(ctx context.Context, match MatchRecord) error {
	data, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	ok, err := r.c.SetNX(ctx, r.matchKey(match.MatchID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to append match: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMatch, match.MatchID)
	}

	member := redis.Z{Score: float64(match.EndedAt.UnixMilli()), Member: match.MatchID}
	_, err = r.c.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, r.indexKey(), member)
		pipe.ZAdd(ctx, r.roomKey(match.RoomCode), member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to index match %s: %w", match.MatchID, err)
	}
	return nil
}

func (r *RedisMatchRepository) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	return r.getMany(ctx, r.indexKey(), normalizeLimit(limit))
}

func (r *RedisMatchRepository) ByRoom(ctx context.Context, roomCode string, limit int) ([]MatchRecord, error) {
	return r.getMany(ctx, r.roomKey(roomCode), normalizeLimit(limit))
}

func (r *RedisMatchRepository) getMany(ctx context.Context, index string, limit int) ([]MatchRecord, error) {
	ids, err := r.c.ZRevRange(ctx, index, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.matchKey(id)
	}
	values, err := r.c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}

	matches := make([]MatchRecord, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Indexed but never written; skip it.
			continue
		}
		var m MatchRecord
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("failed to decode match %s: %w", ids[i], err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Ping checks the connection.
func (r *RedisMatchRepository) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}
