package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhasgawali/neon-domination/internal/domain/rules"
	"github.com/abhasgawali/neon-domination/internal/events"
	"github.com/abhasgawali/neon-domination/internal/infra/storage"
)

// endMatch resolves a locked room whose countdown has run out.
func (e *Engine) endMatch(r *Room) {
	now := e.clock.Now()
	r.status = StatusEnded
	r.ticksRemaining = 0
	clear(r.suns)

	r.winner = ""
	if w := rules.PickWinner(r.playerList()); w != nil {
		r.winner = w.Name
	}

	r.broadcastState(now, e.cfg.TickInterval)
	r.broadcast(now, events.EventTypeGameOver, events.GameOverPayload{Winner: r.winner})

	e.metrics.RecordMatchFinished()
	e.logger.Info("match finished",
		zap.String("room", r.code),
		zap.String("winner", r.winner),
		zap.Int("players", len(r.players)),
	)
	e.archiveMatch(r.record(now))
}

// record captures the final standings of a locked room.
func (r *Room) record(now time.Time) storage.MatchRecord {
	rec := storage.MatchRecord{
		MatchID:  uuid.NewString(),
		RoomCode: r.code,
		Winner:   r.winner,
		EndedAt:  now,
	}
	if !r.startedAt.IsZero() {
		rec.Duration = now.Sub(r.startedAt)
	}
	for _, p := range r.playerList() {
		rec.Players = append(rec.Players, storage.PlayerResult{
			PlayerID: p.ID,
			Name:     p.Name,
			Color:    p.Color,
			IsBot:    p.IsBot(),
			Score:    p.Score,
			Energy:   p.Energy,
		})
	}
	return rec
}

// archiveMatch writes the result off the room lock.
func (e *Engine) archiveMatch(rec storage.MatchRecord) {
	if e.archive == nil {
		return
	}
	e.archiving.Add(1)
	go func() {
		defer e.archiving.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.ArchiveTimeout)
		defer cancel()

		err := e.archive.Append(ctx, rec)
		e.metrics.RecordArchiveWrite(err)
		if err != nil {
			e.logger.Error("failed to archive match",
				zap.String("room", rec.RoomCode),
				zap.String("match", rec.MatchID),
				zap.Error(err),
			)
		}
	}()
}
