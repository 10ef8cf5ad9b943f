// internal/activity/hub.go
// Hub fans engagement events out to connected websocket clients. Events come
// from real like/comment traffic and from the simulator.

package activity

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event is one item on the live activity feed.
type Event struct {
	Action    string    `json:"action"`
	StoryID   int64     `json:"story_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

type Hub struct {
	clients    map[*Client]bool
	clientsMux sync.RWMutex

	broadcast  chan Event
	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	defer h.cleanup()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case <-h.ctx.Done():
			return
		}
	}
}

// Shutdown stops the hub loop and closes every client connection.
func (h *Hub) Shutdown() {
	h.cancel()
}

// PublishActivity queues an event for broadcast. Never blocks; events are
// dropped if the hub is saturated.
func (h *Hub) PublishActivity(action string, storyID, userID int64) {
	event := Event{
		Action:    action,
		StoryID:   storyID,
		UserID:    userID,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
		log.Printf("activity feed saturated, dropping %s event for story %d", action, storyID)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	h.clients[client] = true
	log.Printf("activity client connected. Total clients: %d", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if _, exists := h.clients[client]; exists {
		client.Close()
		delete(h.clients, client)
		log.Printf("activity client disconnected. Total clients: %d", len(h.clients))
	}
}

func (h *Hub) broadcastEvent(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal activity event: %v", err)
		return
	}

	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// Slow consumer, drop the event for this client
		}
	}
}

func (h *Hub) cleanup() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	for client := range h.clients {
		client.Close()
	}
	h.clients = make(map[*Client]bool)
}
