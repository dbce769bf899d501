package network

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhasgawali/neon-domination/internal/events"
	"github.com/abhasgawali/neon-domination/internal/platform/logger"
	"github.com/abhasgawali/neon-domination/internal/platform/metrics"
)

// outboundBuffer bounds the events waiting for the hub loop.
const outboundBuffer = 4096

// Hub maintains the set of active clients and routes engine events to them.
// It implements events.Dispatcher.
type Hub struct {
	clients    map[string]*Client
	outbound   chan events.GameEvent
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *logger.Logger
	metrics    *metrics.Collector
}

// NewHub initializes a new WebSocket Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		outbound:   make(chan events.GameEvent, outboundBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log,
		metrics:    metrics.Get(),
	}
}

// Run starts the Hub's main loop. Client bookkeeping and delivery all happen
// on this goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("websocket hub shutting down")
			return
		case client := <-h.register:
			h.clients[client.id] = client
			h.metrics.RecordWSConnection(1)
			h.logger.Debug("websocket client connected", zap.String("conn", client.id))
		case client := <-h.unregister:
			h.drop(client)
		case event := <-h.outbound:
			h.deliver(event)
		}
	}
}

// Dispatch queues an event for delivery. It never blocks; when the hub is
// saturated the event is dropped.
func (h *Hub) Dispatch(event events.GameEvent) {
	select {
	case h.outbound <- event:
	default:
		h.metrics.RecordWSDrop()
		h.logger.Warn("hub saturated, dropping event",
			zap.String("type", string(event.Type)),
			zap.String("room", event.RoomID),
		)
	}
}

func (h *Hub) deliver(event events.GameEvent) {
	msg, err := Encode(string(event.Type), event.Payload)
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}
	for _, id := range event.Recipients {
		client, ok := h.clients[id]
		if !ok {
			continue
		}
		select {
		case client.send <- msg:
			h.metrics.RecordWSMessage(false)
		default:
			// The client cannot keep up; its write pump closes the socket.
			h.metrics.RecordWSDrop()
			h.logger.Warn("dropping slow websocket client", zap.String("conn", id))
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	if h.clients[client.id] != client {
		return
	}
	delete(h.clients, client.id)
	close(client.send)
	h.metrics.RecordWSConnection(-1)
	h.logger.Debug("websocket client disconnected", zap.String("conn", client.id))
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
