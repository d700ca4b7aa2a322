package websocket

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Hub maintains the registry of active realtime translation channels.
// A user may hold several channels at once, so the registry keeps a
// list per user id.
type Hub struct {
	mu      sync.RWMutex
	clients map[int][]*Client

	register   chan *Client
	unregister chan *Client

	logger *logrus.Logger
	stats  HubStats
}

// HubStats contains hub statistics
type HubStats struct {
	ConnectedClients int       `json:"connected_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessagesHandled  int64     `json:"messages_handled"`
	LastActivity     time.Time `json:"last_activity"`
}

// ActiveUser describes one user with at least one open channel.
type ActiveUser struct {
	UserID      int    `json:"user_id"`
	Language    string `json:"language"`
	Connections int    `json:"connections"`
}

// NewHub creates a new hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[int][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		stats:      HubStats{LastActivity: time.Now()},
	}
}

// Run processes registration and unregistration until the process ends
func (h *Hub) Run() {
	h.logger.Info("Realtime translation hub started")

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.userID] = append(h.clients[client.userID], client)
	h.stats.TotalConnections++
	h.stats.ConnectedClients++
	h.stats.LastActivity = time.Now()

	h.logger.WithFields(logrus.Fields{
		"client_id": client.ID,
		"user_id":   client.userID,
		"locale":    client.targetLocale,
	}).Info("Realtime translation client connected")
}

// removeClient deterministically drops the client from the registry;
// the last channel of a user removes the user's entry entirely.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.userID]
	if !ok {
		return
	}
	for i, c := range list {
		if c == client {
			list = append(list[:i], list[i+1:]...)
			close(c.send)
			h.stats.ConnectedClients--
			break
		}
	}
	if len(list) == 0 {
		delete(h.clients, client.userID)
	} else {
		h.clients[client.userID] = list
	}
	h.stats.LastActivity = time.Now()

	h.logger.WithFields(logrus.Fields{
		"client_id": client.ID,
		"user_id":   client.userID,
	}).Info("Realtime translation client disconnected")
}

// ActiveUsers lists users with open channels and their target locale
func (h *Hub) ActiveUsers() []ActiveUser {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]ActiveUser, 0, len(h.clients))
	for userID, list := range h.clients {
		if len(list) == 0 {
			continue
		}
		users = append(users, ActiveUser{
			UserID:      userID,
			Language:    list[0].targetLocale,
			Connections: len(list),
		})
	}
	return users
}

// Stats returns a snapshot of hub statistics
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stats
}

func (h *Hub) messageHandled() {
	h.mu.Lock()
	h.stats.MessagesHandled++
	h.stats.LastActivity = time.Now()
	h.mu.Unlock()
}
