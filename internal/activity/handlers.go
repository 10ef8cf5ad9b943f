// internal/activity/handlers.go
// Websocket endpoint for the live activity feed.

package activity

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The feed is public decoration, any origin may subscribe
		return true
	},
}

type Handlers struct {
	hub *Hub
}

func NewHandlers(hub *Hub) *Handlers {
	return &Handlers{hub: hub}
}

// ServeWS handles GET /api/activity/ws
func (h *Handlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("activity websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.register <- client
	client.Start()
}

// RegisterRoutes wires the activity feed onto the router.
func RegisterRoutes(router *mux.Router, handlers *Handlers) {
	router.HandleFunc("/api/activity/ws", handlers.ServeWS).Methods("GET")
}
