package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/abhasgawali/neon-domination/internal/engine"
	"github.com/abhasgawali/neon-domination/internal/events"
	"github.com/abhasgawali/neon-domination/internal/platform/config"
	"github.com/abhasgawali/neon-domination/internal/platform/logger"
	"github.com/abhasgawali/neon-domination/internal/platform/metrics"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.SunSpawnChance = 0
	log := logger.NewNop()

	hub := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	eng := engine.NewEngine(cfg, hub, log, engine.WithMetrics(&metrics.Collector{}))

	router := mux.NewRouter()
	router.HandleFunc("/ws", ServeWS(hub, eng, cfg))
	NewLobbyAPI(eng).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	b, err := Encode(msgType, payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

// readUntil reads frames until one of the given type satisfies accept.
func readUntil(t *testing.T, conn *websocket.Conn, msgType events.EventType, accept func(json.RawMessage) bool) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	defer conn.SetReadDeadline(time.Time{})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		env, err := DecodeEnvelope(msg)
		if err != nil {
			t.Fatalf("bad frame %s: %v", msg, err)
		}
		if env.T == string(msgType) && (accept == nil || accept(env.P)) {
			return env.P
		}
	}
}

func stateWhere(pred func(events.StateSnapshot) bool) func(json.RawMessage) bool {
	return func(p json.RawMessage) bool {
		var s events.StateSnapshot
		return json.Unmarshal(p, &s) == nil && pred(s)
	}
}

func TestWebSocketMatchFlow(t *testing.T) {
	server := newTestServer(t)
	alice := dial(t, server)
	bob := dial(t, server)

	send(t, alice, MsgJoinGame, JoinGame{Name: "Alice", RoomID: "ws1"})
	var joined events.JoinedRoomPayload
	if err := json.Unmarshal(readUntil(t, alice, events.EventTypeJoinedRoom, nil), &joined); err != nil {
		t.Fatal(err)
	}
	if joined.RoomID != "WS1" || joined.PlayerID == "" {
		t.Fatalf("unexpected joinedRoom %+v", joined)
	}

	send(t, bob, MsgJoinGame, JoinGame{Name: "Bob", RoomID: "WS1"})
	readUntil(t, bob, events.EventTypeJoinedRoom, nil)
	readUntil(t, alice, events.EventTypeGameStateUpdate, stateWhere(func(s events.StateSnapshot) bool {
		return s.Status == string(engine.StatusPlaying) && len(s.Players) == 2
	}))

	resp, err := http.Get(server.URL + "/api/rooms?status=playing")
	if err != nil {
		t.Fatalf("GET /api/rooms: %v", err)
	}
	var rooms RoomsResponse
	err = json.NewDecoder(resp.Body).Decode(&rooms)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if rooms.Count != 1 || rooms.Rooms[0].Code != "WS1" || rooms.Rooms[0].Humans != 2 {
		t.Errorf("lobby API should list the live match: %+v", rooms)
	}

	send(t, alice, MsgInteractTile, InteractTile{TileID: 999, Action: "capture"})
	var rejection events.ErrorPayload
	if err := json.Unmarshal(readUntil(t, alice, events.EventTypeError, nil), &rejection); err != nil {
		t.Fatal(err)
	}
	if rejection.Message != engine.ErrInvalidTile.Message {
		t.Errorf("expected %q, got %q", engine.ErrInvalidTile.Message, rejection.Message)
	}

	bob.Close()
	readUntil(t, alice, events.EventTypeGameStateUpdate, stateWhere(func(s events.StateSnapshot) bool {
		_, ok := s.Players[joined.PlayerID]
		return ok && len(s.Players) == 1
	}))
}

func TestWebSocketIgnoresMalformedFrames(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	for _, raw := range []string{"{", `{"p":{}}`, `{"t":"launchMissiles"}`, `{"t":"interactTile","p":"oops"}`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	// The connection survives and still serves a bare quick-play join.
	send(t, conn, MsgJoinGame, nil)
	var joined events.JoinedRoomPayload
	if err := json.Unmarshal(readUntil(t, conn, events.EventTypeJoinedRoom, nil), &joined); err != nil {
		t.Fatal(err)
	}
	if len(joined.RoomID) != 6 {
		t.Errorf("expected a generated room code, got %q", joined.RoomID)
	}
}

type recordingGame struct {
	Game
	joins []JoinGame
}

func (g *recordingGame) Join(connID, name, roomCode string) {
	g.joins = append(g.joins, JoinGame{Name: name, RoomID: roomCode})
}

func TestHandleJoinPayloads(t *testing.T) {
	game := &recordingGame{}
	c := &Client{id: "c1", hub: NewHub(logger.NewNop()), game: game}

	c.handle([]byte(`{"t":"joinGame","p":{"name":5}}`))
	c.handle([]byte(`{"t":"joinGame","p":"Alice"}`))
	if len(game.joins) != 0 {
		t.Fatalf("malformed joins must be dropped, got %+v", game.joins)
	}

	c.handle([]byte(`{"t":"joinGame"}`))
	c.handle([]byte(`{"t":"joinGame","p":{"name":"Alice","roomId":"abc123"}}`))
	want := []JoinGame{{}, {Name: "Alice", RoomID: "abc123"}}
	if len(game.joins) != len(want) {
		t.Fatalf("expected %d joins, got %+v", len(want), game.joins)
	}
	for i := range want {
		if game.joins[i] != want[i] {
			t.Errorf("join %d = %+v, want %+v", i, game.joins[i], want[i])
		}
	}
}
