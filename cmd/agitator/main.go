// Package main - agitator
// Load generator for the game server: N WebSocket clients quick-play join and
// spam capture attempts against random tiles.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abhasgawali/neon-domination/internal/domain/grid"
	"github.com/abhasgawali/neon-domination/internal/domain/rules"
	"github.com/abhasgawali/neon-domination/internal/events"
	"github.com/abhasgawali/neon-domination/internal/network"
)

// Config for the agitator
type Config struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
	RoomCode       string
	ResultsPath    string
}

// Stats tracks what the clients sent and what came back.
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	Joined           int64
	Rejections       int64
	StateUpdates     int64
	MatchesOver      int64
	Errors           int64
	Latencies        []time.Duration
	mu               sync.Mutex
}

func main() {
	serverURL := flag.String("url", "ws://localhost:3000/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 50, "Number of concurrent clients")
	interval := flag.Duration("interval", 150*time.Millisecond, "Action interval per client")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	room := flag.String("room", "", "Room code to pile into (quick play when empty)")
	out := flag.String("out", "stress_test_results.json", "Where to write the JSON results")
	flag.Parse()

	config := Config{
		ServerURL:      *serverURL,
		NumClients:     *numClients,
		ActionInterval: *interval,
		TestDuration:   *duration,
		RoomCode:       *room,
		ResultsPath:    *out,
	}

	fmt.Println("=========================================")
	fmt.Println("AGITATOR - Neon Domination load generator")
	fmt.Println("=========================================")
	fmt.Printf("Server:   %s\n", config.ServerURL)
	fmt.Printf("Clients:  %d\n", config.NumClients)
	fmt.Printf("Interval: %v\n", config.ActionInterval)
	fmt.Printf("Duration: %v\n", config.TestDuration)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	stats := runStressTest(ctx, config)
	printResults(stats, config)
}

func runStressTest(ctx context.Context, config Config) *Stats {
	stats := &Stats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	var wg sync.WaitGroup

	fmt.Println("\nStarting clients...")
	for i := 0; i < config.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}
	fmt.Printf("All %d clients started\n\n", config.NumClients)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Printf("Progress: Sent=%d Recv=%d Joined=%d Rejected=%d Errors=%d\n",
					atomic.LoadInt64(&stats.MessagesSent),
					atomic.LoadInt64(&stats.MessagesReceived),
					atomic.LoadInt64(&stats.Joined),
					atomic.LoadInt64(&stats.Rejections),
					atomic.LoadInt64(&stats.Errors),
				)
			}
		}
	}()

	wg.Wait()
	return stats
}

func runClient(ctx context.Context, clientID int, config Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		log.Printf("Client %d: connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	go receive(conn, stats)

	join := network.JoinGame{Name: fmt.Sprintf("Agitator %03d", clientID), RoomID: config.RoomCode}
	if !send(conn, network.MsgJoinGame, join, stats) {
		return
	}

	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			msgType, payload := randomAction()
			if !send(conn, msgType, payload, stats) {
				return
			}
		}
	}
}

func send(conn *websocket.Conn, msgType string, payload interface{}, stats *Stats) bool {
	msg, err := network.Encode(msgType, payload)
	if err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return false
	}

	start := time.Now()
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return false
	}
	latency := time.Since(start)
	atomic.AddInt64(&stats.MessagesSent, 1)

	stats.mu.Lock()
	stats.Latencies = append(stats.Latencies, latency)
	stats.mu.Unlock()
	return true
}

func receive(conn *websocket.Conn, stats *Stats) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		atomic.AddInt64(&stats.MessagesReceived, 1)

		env, err := network.DecodeEnvelope(msg)
		if err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		switch events.EventType(env.T) {
		case events.EventTypeJoinedRoom:
			atomic.AddInt64(&stats.Joined, 1)
		case events.EventTypeError:
			atomic.AddInt64(&stats.Rejections, 1)
		case events.EventTypeGameStateUpdate:
			atomic.AddInt64(&stats.StateUpdates, 1)
		case events.EventTypeGameOver:
			atomic.AddInt64(&stats.MatchesOver, 1)
		}
	}
}

// randomAction is mostly captures, with the odd shield or trap.
func randomAction() (string, interface{}) {
	switch n := rand.IntN(20); {
	case n == 0:
		return network.MsgActivateGlobalShield, nil
	case n < 3:
		return network.MsgInteractTile, network.InteractTile{TileID: rand.IntN(grid.Size), Action: string(rules.ActionTrap)}
	default:
		return network.MsgInteractTile, network.InteractTile{TileID: rand.IntN(grid.Size), Action: string(rules.ActionCapture)}
	}
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("STRESS TEST RESULTS")
	fmt.Println("=========================================")

	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Printf("Messages Sent:     %d\n", sent)
	fmt.Printf("Messages Received: %d\n", recv)
	fmt.Printf("Joined:            %d/%d\n", atomic.LoadInt64(&stats.Joined), config.NumClients)
	fmt.Printf("State Updates:     %d\n", atomic.LoadInt64(&stats.StateUpdates))
	fmt.Printf("Rejections:        %d\n", atomic.LoadInt64(&stats.Rejections))
	fmt.Printf("Matches Over:      %d\n", atomic.LoadInt64(&stats.MatchesOver))
	fmt.Printf("Errors:            %d\n", errs)
	fmt.Printf("Error Rate:        %.2f%%\n", float64(errs)/float64(sent+1)*100)

	throughput := float64(sent) / config.TestDuration.Seconds()
	fmt.Printf("Throughput:        %.2f msg/sec\n", throughput)

	if len(stats.Latencies) > 0 {
		var total time.Duration
		lo, hi := stats.Latencies[0], stats.Latencies[0]
		for _, l := range stats.Latencies {
			total += l
			lo = min(lo, l)
			hi = max(hi, l)
		}
		fmt.Printf("\nWrite latency:\n")
		fmt.Printf("  Min: %v\n", lo)
		fmt.Printf("  Avg: %v\n", total/time.Duration(len(stats.Latencies)))
		fmt.Printf("  Max: %v\n", hi)
	}

	fmt.Println("\n-----------------------------------------")
	switch {
	case errs == 0:
		fmt.Println("TEST PASSED: System handled the load")
	case float64(errs)/float64(sent+1) < 0.05:
		fmt.Println("TEST WARNING: Some errors detected")
	default:
		fmt.Println("TEST FAILED: High error rate")
	}
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"messages_sent":      sent,
		"messages_received":  recv,
		"joined":             atomic.LoadInt64(&stats.Joined),
		"rejections":         atomic.LoadInt64(&stats.Rejections),
		"state_updates":      atomic.LoadInt64(&stats.StateUpdates),
		"matches_over":       atomic.LoadInt64(&stats.MatchesOver),
		"errors":             errs,
		"throughput_per_sec": throughput,
		"config": map[string]interface{}{
			"clients":  config.NumClients,
			"interval": config.ActionInterval.String(),
			"duration": config.TestDuration.String(),
			"room":     config.RoomCode,
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	if err := os.WriteFile(config.ResultsPath, jsonData, 0644); err != nil {
		log.Printf("failed to write results: %v", err)
		return
	}
	fmt.Printf("\nResults saved to %s\n", config.ResultsPath)
}
