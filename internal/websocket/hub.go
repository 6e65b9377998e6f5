package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/metrics"
	"github.com/astralremix/api/internal/model"
)

// Client represents a WebSocket client
type Client struct {
	QueueItemID string
	Conn        *websocket.Conn
	Send        chan []byte
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Clients grouped by queue item ID
	clients map[string]map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Broadcast messages to queue item subscribers
	broadcast chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	QueueItemID string
	Message     []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.QueueItemID] == nil {
				h.clients[client.QueueItemID] = make(map[*Client]bool)
			}
			h.clients[client.QueueItemID][client] = true
			h.mu.Unlock()
			metrics.WSConnections.Inc()
			log.Debug().Str("queue_item_id", client.QueueItemID).Msg("websocket client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			log.Debug().Str("queue_item_id", client.QueueItemID).Msg("websocket client unregistered")

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[msg.QueueItemID] {
				select {
				case client.Send <- msg.Message:
				default:
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops a client; callers hold mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.QueueItemID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	metrics.WSConnections.Dec()
	if len(clients) == 0 {
		delete(h.clients, client.QueueItemID)
	}
}

// Subscribers returns the number of clients watching a queue item
func (h *Hub) Subscribers(queueItemID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[queueItemID])
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastStatus announces a queue item status change
func (h *Hub) BroadcastStatus(queueItemID string, status model.QueueStatus, stage string) {
	h.send(queueItemID, model.WSStatusMessage{
		Type:        model.WSMessageTypeStatus,
		QueueItemID: queueItemID,
		Status:      status,
		Stage:       stage,
	})
}

// BroadcastComplete sends the finished content pack to subscribers
func (h *Hub) BroadcastComplete(queueItemID string, pack *model.ContentPack) {
	h.send(queueItemID, model.WSCompleteMessage{
		Type:        model.WSMessageTypeComplete,
		QueueItemID: queueItemID,
		ContentPack: pack,
	})
}

// BroadcastError sends a failure to subscribers
func (h *Hub) BroadcastError(queueItemID string, code, message string) {
	h.send(queueItemID, model.WSErrorMessage{
		Type:        model.WSMessageTypeError,
		QueueItemID: queueItemID,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	})
}

// send never blocks the caller; messages are dropped when the buffer is full.
func (h *Hub) send(queueItemID string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal websocket message")
		return
	}

	select {
	case h.broadcast <- &BroadcastMessage{QueueItemID: queueItemID, Message: data}:
	default:
		log.Warn().Str("queue_item_id", queueItemID).Msg("websocket broadcast buffer full, dropping message")
	}
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, queueItemID string) {
	client := &Client{
		QueueItemID: queueItemID,
		Conn:        c,
		Send:        make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("queue_item_id", queueItemID).Msg("websocket error")
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			client.Send <- data
		}
	}
}
