package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/abhasgawali/neon-domination/internal/domain/player"
	"github.com/abhasgawali/neon-domination/internal/events"
	"github.com/abhasgawali/neon-domination/internal/infra/storage"
	"github.com/abhasgawali/neon-domination/internal/platform/config"
	"github.com/abhasgawali/neon-domination/internal/platform/logger"
	"github.com/abhasgawali/neon-domination/internal/platform/metrics"
)

// Engine is the central orchestrator. It routes inbound player actions to the
// room they belong to and delivers the resulting notifications through a
// Dispatcher.
type Engine struct {
	cfg        *config.Config
	dispatcher events.Dispatcher
	logger     *logger.Logger
	metrics    *metrics.Collector
	archive    storage.MatchRepository
	clock      Clock
	rng        Random

	reg *registry

	// archiving tracks in-flight match archive writes.
	archiving sync.WaitGroup
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock and timer source.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRandom replaces the random source. The source is serialised internally.
func WithRandom(r Random) Option {
	return func(e *Engine) { e.rng = &lockedRandom{r: r} }
}

// WithArchive stores finished matches in repo.
func WithArchive(repo storage.MatchRepository) Option {
	return func(e *Engine) { e.archive = repo }
}

// WithMetrics replaces the global collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// NewEngine initializes the engine. A nil dispatcher discards every event.
func NewEngine(cfg *config.Config, dispatcher events.Dispatcher, log *logger.Logger, opts ...Option) *Engine {
	if dispatcher == nil {
		dispatcher = events.Discard
	}
	e := &Engine{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     log,
		metrics:    metrics.Get(),
		clock:      systemClock{},
		rng:        globalRandom{},
		reg:        newRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start spawns the game loop. It stops when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("starting game engine",
		zap.Duration("tick", e.cfg.TickInterval),
		zap.Duration("match", e.cfg.GameDuration),
		zap.Int("capacity", e.cfg.MaxPlayersPerRoom),
	)
	go e.run(ctx)
}

// Wait blocks until every pending match archive write has finished.
func (e *Engine) Wait() {
	e.archiving.Wait()
}

// Rooms summarises every live room in creation order.
func (e *Engine) Rooms() []RoomInfo {
	rooms := e.reg.list()
	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		if !r.closed {
			out = append(out, RoomInfo{
				Code:          r.code,
				Status:        r.status,
				Players:       len(r.players),
				Humans:        len(r.humans()),
				Capacity:      e.cfg.MaxPlayersPerRoom,
				TimeRemaining: r.timeRemaining(e.cfg.TickInterval),
			})
		}
		r.mu.Unlock()
	}
	return out
}

// Archive exposes the match repository, or nil when none is configured.
func (e *Engine) Archive() storage.MatchRepository {
	return e.archive
}

// acquire locks the room the connection is seated in. It returns nil when
// the connection has no live seat.
func (e *Engine) acquire(connID string) (*Room, *player.Player) {
	r := e.reg.roomOf(connID)
	if r == nil {
		return nil, nil
	}
	r.mu.Lock()
	p, ok := r.players[connID]
	if r.closed || !ok {
		r.mu.Unlock()
		return nil, nil
	}
	return r, p
}

// release delivers the room's queued events and unlocks it.
func (e *Engine) release(r *Room) {
	r.outbox.Flush(e.dispatcher)
	r.mu.Unlock()
}

// reject reports a refused action to the offending connection.
func (e *Engine) reject(r *Room, connID string, err error) {
	payload := events.ErrorPayload{Message: err.Error()}
	if rej, ok := err.(*Rejection); ok {
		payload.Code = rej.Code
	}
	r.emit(e.clock.Now(), events.EventTypeError, payload, connID)
	e.logger.Debug("action rejected",
		zap.String("room", r.code),
		zap.String("conn", connID),
		zap.Error(err),
	)
}

// sendDirect delivers an event to a connection that has no room.
func (e *Engine) sendDirect(connID string, t events.EventType, payload interface{}) {
	e.dispatcher.Dispatch(events.GameEvent{
		ID:         events.GenerateEventID(),
		Timestamp:  e.clock.Now(),
		Type:       t,
		Recipients: []string{connID},
		Payload:    payload,
	})
}
