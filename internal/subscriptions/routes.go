package subscriptions

import (
	"github.com/gorilla/mux"

	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
)

// RegisterRoutes wires subscription endpoints onto the router.
// Everything here requires authentication.
func RegisterRoutes(router *mux.Router, handlers *Handlers, authService auth.Service) {
	protected := router.PathPrefix("/api/subscriptions").Subrouter()
	protected.Use(auth.Middleware(authService))

	protected.HandleFunc("/channels/{channelId:[0-9]+}/subscribe", handlers.Subscribe).Methods("POST")
	protected.HandleFunc("/channels/{channelId:[0-9]+}/unsubscribe", handlers.Unsubscribe).Methods("POST")
	protected.HandleFunc("/channels/{channelId:[0-9]+}/subscribers", handlers.ListSubscribers).Methods("GET")
	protected.HandleFunc("/channels/{channelId:[0-9]+}/subscribers/{subscriberId:[0-9]+}", handlers.RemoveSubscriber).Methods("DELETE")
	protected.HandleFunc("/{id:[0-9]+}/approve", handlers.Approve).Methods("PUT")
	protected.HandleFunc("/{id:[0-9]+}/reject", handlers.Reject).Methods("PUT")
	protected.HandleFunc("/user", handlers.ListMine).Methods("GET")
}
