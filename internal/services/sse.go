package services

import (
	"sync"
)

// NotificationEvent tells a connected user their notification set changed.
type NotificationEvent struct {
	UserID      uint     `json:"user_id"`
	UnreadCount int64    `json:"unread_count"`
	Types       []string `json:"types"`
}

type sseClient struct {
	userID uint
	ch     chan NotificationEvent
}

// SSEHub manages SSE client connections and routes events to their owner
type SSEHub struct {
	clients map[string]*sseClient
	mu      sync.RWMutex
}

// NewSSEHub creates a new SSE hub instance
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]*sseClient),
	}
}

// Subscribe registers a client for userID's events
func (h *SSEHub) Subscribe(clientID string, userID uint) <-chan NotificationEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Create buffered channel to prevent blocking
	ch := make(chan NotificationEvent, 16)
	h.clients[clientID] = &sseClient{userID: userID, ch: ch}
	return ch
}

// Unsubscribe removes a client from the hub
func (h *SSEHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.ch)
		delete(h.clients, clientID)
	}
}

// Publish sends event to every client of event.UserID
func (h *SSEHub) Publish(event NotificationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.userID != event.UserID {
			continue
		}
		// Non-blocking send - drop event if client buffer is full
		select {
		case c.ch <- event:
		default:
		}
	}
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
