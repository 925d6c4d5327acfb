package fanout

import (
	"context"
	"sync"

	"github.com/jobportal/jobview/common/logger"
)

// Hub maintains active WebSocket connections and broadcasts messages
type Hub struct {
	// Map: user id → []*Client
	connections map[string][]*Client
	mutex       sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}

	log *logger.Logger
}

// Message is a payload for every connection of one user
type Message struct {
	UserID string
	Data   []byte
}

// NewHub creates a new Hub instance
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		connections: make(map[string][]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Message, 256),
		done:        make(chan struct{}),
		log:         log,
	}
}

// Run starts the hub's main loop; it returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("notification hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.log.Info("notification hub stopped")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToUser(message)
		}
	}
}

// Publish queues data for every connection of userID. It reports false when
// the hub has stopped.
func (h *Hub) Publish(userID string, data []byte) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.broadcast <- &Message{UserID: userID, Data: data}:
		return true
	case <-h.done:
		return false
	}
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

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.connections[client.userID] = append(h.connections[client.userID], client)
	h.log.Debug("client registered",
		"user_id", client.userID,
		"total_for_user", len(h.connections[client.userID]))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. Must be called with
// h.mutex held. Removing an already removed client is a no-op.
func (h *Hub) removeLocked(client *Client) {
	clients := h.connections[client.userID]
	for i, c := range clients {
		if c != client {
			continue
		}
		h.connections[client.userID] = append(clients[:i], clients[i+1:]...)
		close(client.send)

		if len(h.connections[client.userID]) == 0 {
			delete(h.connections, client.userID)
		}

		h.log.Debug("client unregistered",
			"user_id", client.userID,
			"remaining_for_user", len(h.connections[client.userID]))
		return
	}
}

// broadcastToUser sends a message to all connections for a specific user
func (h *Hub) broadcastToUser(message *Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients := append([]*Client(nil), h.connections[message.UserID]...)
	for _, client := range clients {
		select {
		case client.send <- message.Data:
		default:
			h.log.Warn("client send buffer full, dropping connection", "user_id", client.userID)
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, clients := range h.connections {
		for _, client := range append([]*Client(nil), clients...) {
			h.removeLocked(client)
		}
	}
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, clients := range h.connections {
		count += len(clients)
	}
	return count
}

// GetUserCount returns the number of unique users connected
func (h *Hub) GetUserCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}
