package websocket

import (
	"encoding/json"
	"sync"

	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/pkg/logger"
)

// Client is one connected live-feed subscriber.
type Client struct {
	Hub  *Hub
	Conn *Conn
	Send chan []byte
}

// Hub fans recorded health checks out to every connected client. The
// feed is broadcast-only: clients never send application messages.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

// Run processes registrations and broadcasts. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Live feed client connected", map[string]interface{}{
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Live feed client disconnected", map[string]interface{}{
				"total_clients": total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Send buffer full - drop the client asynchronously.
					go h.Unregister(client)
					logger.Warn("Live feed client send buffer full, disconnecting", nil)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastCheck pushes a probe outcome to every subscriber. The feed is
// lossy: with the broadcast channel full the event is dropped, the
// database row remains the source of truth.
func (h *Hub) BroadcastCheck(check model.HealthCheck) {
	data, err := json.Marshal(map[string]interface{}{
		"type":  "health_check",
		"check": check,
	})
	if err != nil {
		logger.Error("Failed to marshal health check for live feed", err, nil)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Live feed broadcast channel full, event dropped", map[string]interface{}{
			"service": check.ServiceName,
		})
	}
}
