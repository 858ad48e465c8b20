// Package websocket pushes dataset lifecycle events to connected dashboard
// clients, so a reload on the server side refreshes every open view.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"enrollpulse/internal/infrastructure"
)

// Event types pushed to clients
const (
	TypeConnection     = "connection"
	TypeDatasetRefresh = "dataset:refresh"
)

// Event is one message broadcast to all clients
type Event struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts events to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	quit    chan struct{}
	running bool
}

// NewHub creates a new hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

// Stop shuts the hub down and disconnects all clients
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()
	close(h.quit)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client registered",
				slog.String("client_id", client.id),
				slog.Int("total_clients", count))

			client.trySend(mustMarshal(Event{
				Type:      TypeConnection,
				Data:      map[string]interface{}{"status": "connected", "client_id": client.id},
				Timestamp: time.Now().Format(time.RFC3339),
			}))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client unregistered",
				slog.String("client_id", client.id),
				slog.Int("total_clients", count))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				client.trySend(message)
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastRefresh notifies all clients that the dataset was reloaded
func (h *Hub) BroadcastRefresh(recordCount, dropped int) {
	h.Broadcast(Event{
		Type: TypeDatasetRefresh,
		Data: map[string]interface{}{
			"records": recordCount,
			"dropped": dropped,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event Event) {
	select {
	case h.broadcast <- mustMarshal(event):
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			slog.String("type", event.Type))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func mustMarshal(event Event) []byte {
	data, err := json.Marshal(event)
	if err != nil {
		// Event payloads are plain maps of JSON-safe values
		return []byte(`{"type":"error"}`)
	}
	return data
}
