// Package metrics provides observability for the game server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance and gameplay counters.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Room metrics
	RoomsActive     int64
	PlayersActive   int64
	MatchesStarted  int64
	MatchesFinished int64

	// Gameplay
	ActionsAccepted int64
	ActionsRejected int64
	SunsSpawned     int64
	SunsCollected   int64

	// Match archive
	ArchiveWrites      int64
	ArchiveWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSMessagesDropped   int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a game loop pass over every room.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordRoom records rooms being created (+1) or torn down (-1).
func (c *Collector) RecordRoom(delta int64) {
	atomic.AddInt64(&c.RoomsActive, delta)
}

// RecordPlayer records seats being taken (+1) or vacated (-1).
func (c *Collector) RecordPlayer(delta int64) {
	atomic.AddInt64(&c.PlayersActive, delta)
}

func (c *Collector) RecordMatchStarted() {
	atomic.AddInt64(&c.MatchesStarted, 1)
}

func (c *Collector) RecordMatchFinished() {
	atomic.AddInt64(&c.MatchesFinished, 1)
}

// RecordAction records the outcome of a validated player action.
func (c *Collector) RecordAction(accepted bool) {
	if accepted {
		atomic.AddInt64(&c.ActionsAccepted, 1)
	} else {
		atomic.AddInt64(&c.ActionsRejected, 1)
	}
}

func (c *Collector) RecordSunSpawned() {
	atomic.AddInt64(&c.SunsSpawned, 1)
}

func (c *Collector) RecordSunCollected() {
	atomic.AddInt64(&c.SunsCollected, 1)
}

// RecordArchiveWrite records a finished match being written to storage.
func (c *Collector) RecordArchiveWrite(err error) {
	atomic.AddInt64(&c.ArchiveWrites, 1)
	if err != nil {
		atomic.AddInt64(&c.ArchiveWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSDrop records an inbound message discarded by the flood guard or an
// outbound one discarded because the client could not keep up.
func (c *Collector) RecordWSDrop() {
	atomic.AddInt64(&c.WSMessagesDropped, 1)
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)

	var tickAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"rooms": map[string]interface{}{
			"active":           atomic.LoadInt64(&c.RoomsActive),
			"players":          atomic.LoadInt64(&c.PlayersActive),
			"matches_started":  atomic.LoadInt64(&c.MatchesStarted),
			"matches_finished": atomic.LoadInt64(&c.MatchesFinished),
		},

		"gameplay": map[string]interface{}{
			"actions_accepted": atomic.LoadInt64(&c.ActionsAccepted),
			"actions_rejected": atomic.LoadInt64(&c.ActionsRejected),
			"suns_spawned":     atomic.LoadInt64(&c.SunsSpawned),
			"suns_collected":   atomic.LoadInt64(&c.SunsCollected),
		},

		"archive": map[string]interface{}{
			"writes": atomic.LoadInt64(&c.ArchiveWrites),
			"errors": atomic.LoadInt64(&c.ArchiveWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"messages_dropped":   atomic.LoadInt64(&c.WSMessagesDropped),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus text format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector
		counter := func(name, help string, v int64) {
			fmt.Fprintf(w, "# HELP %s %s\n", name, help)
			fmt.Fprintf(w, "# TYPE %s counter\n", name)
			fmt.Fprintf(w, "%s %d\n\n", name, v)
		}
		gauge := func(name, help string, v int64) {
			fmt.Fprintf(w, "# HELP %s %s\n", name, help)
			fmt.Fprintf(w, "# TYPE %s gauge\n", name)
			fmt.Fprintf(w, "%s %d\n\n", name, v)
		}

		counter("neon_tick_count", "Total game loop passes", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP neon_tick_latency_max_ms Maximum game loop latency\n")
		fmt.Fprintf(w, "# TYPE neon_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "neon_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		gauge("neon_rooms_active", "Live rooms", atomic.LoadInt64(&c.RoomsActive))
		gauge("neon_players_active", "Seated players, bots included", atomic.LoadInt64(&c.PlayersActive))
		counter("neon_matches_started", "Matches that left the lobby", atomic.LoadInt64(&c.MatchesStarted))
		counter("neon_matches_finished", "Matches resolved by the countdown", atomic.LoadInt64(&c.MatchesFinished))

		fmt.Fprintf(w, "# HELP neon_actions_total Tile actions by outcome\n")
		fmt.Fprintf(w, "# TYPE neon_actions_total counter\n")
		fmt.Fprintf(w, "neon_actions_total{outcome=\"accepted\"} %d\n", atomic.LoadInt64(&c.ActionsAccepted))
		fmt.Fprintf(w, "neon_actions_total{outcome=\"rejected\"} %d\n\n", atomic.LoadInt64(&c.ActionsRejected))

		counter("neon_suns_spawned", "Suns spawned", atomic.LoadInt64(&c.SunsSpawned))
		counter("neon_suns_collected", "Suns collected", atomic.LoadInt64(&c.SunsCollected))
		counter("neon_archive_write_errors", "Failed match archive writes", atomic.LoadInt64(&c.ArchiveWriteErrors))

		gauge("neon_ws_connections", "Active WebSocket connections", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP neon_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE neon_ws_messages_total counter\n")
		fmt.Fprintf(w, "neon_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "neon_ws_messages_total{direction=\"out\"} %d\n\n", atomic.LoadInt64(&c.WSMessagesOut))

		counter("neon_ws_messages_dropped", "WebSocket messages dropped", atomic.LoadInt64(&c.WSMessagesDropped))
	}
}
