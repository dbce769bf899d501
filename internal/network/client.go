package network

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abhasgawali/neon-domination/internal/domain/rules"
	"github.com/abhasgawali/neon-domination/internal/platform/config"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Game is the inbound surface of the engine a connection drives.
type Game interface {
	Join(connID, name, roomCode string)
	InteractTile(connID string, tileID int, action rules.Action)
	CollectSun(connID, sunID string)
	ActivateGlobalShield(connID string)
	StartGameWithBots(connID string)
	StartGameSolo(connID string)
	Disconnect(connID string)
}

// Client is one WebSocket connection. Its id is the player id the engine
// knows it by.
type Client struct {
	id      string
	hub     *Hub
	game    Game
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

// NewClient creates a new WebSocket client with a fresh connection id.
func NewClient(hub *Hub, game Game, conn *websocket.Conn, cfg *config.Config) *Client {
	return &Client{
		id:      uuid.NewString(),
		hub:     hub,
		game:    game,
		conn:    conn,
		send:    make(chan []byte, cfg.ClientSendBuffer),
		limiter: rate.NewLimiter(rate.Limit(cfg.MaxMessagesPerSecond), cfg.MessageBurst),
	}
}

func (c *Client) ID() string {
	return c.id
}

// ReadPump pumps messages from the websocket connection to the engine. When
// the connection ends the player is removed from their room.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.remove(c)
		c.game.Disconnect(c.id)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.metrics.RecordWSError()
				c.hub.logger.Warn("websocket read failed", zap.String("conn", c.id), zap.Error(err))
			}
			break
		}
		c.hub.metrics.RecordWSMessage(true)

		if !c.limiter.Allow() {
			c.hub.metrics.RecordWSDrop()
			continue
		}
		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	env, err := DecodeEnvelope(message)
	if err != nil {
		c.hub.metrics.RecordWSError()
		c.hub.logger.Debug("malformed message", zap.String("conn", c.id), zap.Error(err))
		return
	}

	switch env.T {
	case MsgJoinGame:
		// A bare joinGame is a quick-play join under the default name.
		var p JoinGame
		if len(env.P) > 0 {
			var err error
			if p, err = DecodePayload[JoinGame](env); err != nil {
				c.hub.logger.Debug("bad joinGame payload", zap.String("conn", c.id), zap.Error(err))
				return
			}
		}
		c.game.Join(c.id, p.Name, p.RoomID)
	case MsgInteractTile:
		p, err := DecodePayload[InteractTile](env)
		if err != nil {
			c.hub.logger.Debug("bad interactTile payload", zap.String("conn", c.id), zap.Error(err))
			return
		}
		action, ok := rules.ParseAction(p.Action)
		if !ok {
			action = rules.Action(p.Action)
		}
		c.game.InteractTile(c.id, p.TileID, action)
	case MsgCollectSun:
		p, err := DecodePayload[CollectSun](env)
		if err != nil {
			return
		}
		c.game.CollectSun(c.id, p.SunID)
	case MsgActivateGlobalShield:
		c.game.ActivateGlobalShield(c.id)
	case MsgStartGameWithBots:
		c.game.StartGameWithBots(c.id)
	case MsgStartGameSolo:
		c.game.StartGameSolo(c.id)
	default:
		c.hub.logger.Debug("unknown message type", zap.String("conn", c.id), zap.String("type", env.T))
	}
}

// WritePump pumps messages from the hub to the websocket connection. Every
// queued envelope goes out as its own text frame.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.metrics.RecordWSError()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // browser clients are served from another origin in development
	},
}

// ServeWS upgrades the request and starts the connection's pumps.
func ServeWS(hub *Hub, game Game, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.metrics.RecordWSError()
			hub.logger.Warn("failed to upgrade websocket connection", zap.Error(err))
			return
		}

		client := NewClient(hub, game, conn, cfg)
		if !hub.add(client) {
			conn.Close()
			return
		}

		// Allow collection of memory referenced by the caller by doing all work in
		// new goroutines.
		go client.WritePump()
		go client.ReadPump()
	}
}
