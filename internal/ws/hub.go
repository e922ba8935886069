package ws

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Event names pushed to connected operator clients.
const (
	EventNewOrder           = "newOrder"
	EventOrderStatusUpdated = "orderStatusUpdated"
)

// Event is one realtime notification. Delivery is fire-and-forget,
// at-most-once: clients that reconnect after missing an event must re-fetch
// current state instead of relying on replay.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans events out to connected clients. It is passed into the fulfillment
// orchestrator and admin handlers as an explicit dependency; its lifecycle is
// tied to the server context, not a package-level singleton.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	logger     *zap.Logger
}

// NewHub creates a new hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		logger:     logger,
	}
}

// Run owns the client set. It exits when ctx is cancelled, closing every
// client send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			// Pump goroutines of just-closed clients still send on
			// unregister, and an upgrade racing the shutdown may still
			// register. Keep both channels drained so neither blocks.
			go h.drain()
			return
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("Realtime client connected", zap.Int("clients", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("Realtime client disconnected", zap.Int("clients", len(h.clients)))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client: drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

func (h *Hub) drain() {
	for {
		select {
		case client := <-h.register:
			close(client.send)
		case <-h.unregister:
		}
	}
}

// Broadcast serializes and fans out an event to all connected clients.
// It never blocks the caller: if the hub's buffer is full the event is dropped.
func (h *Hub) Broadcast(event string, data interface{}) {
	message, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		h.logger.Warn("Failed to marshal realtime event", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("Realtime broadcast buffer full, dropping event", zap.String("event", event))
	}
}
