package channels

import (
	"github.com/gorilla/mux"

	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
)

// RegisterRoutes wires channel endpoints onto the router. Reads are public,
// writes require authentication.
func RegisterRoutes(router *mux.Router, handlers *Handlers, authService auth.Service) {
	router.HandleFunc("/api/channels", handlers.ListChannels).Methods("GET")
	router.HandleFunc("/api/channels/{id:[0-9]+}", handlers.GetChannel).Methods("GET")

	protected := router.PathPrefix("/api/channels").Subrouter()
	protected.Use(auth.Middleware(authService))
	protected.HandleFunc("", handlers.CreateChannel).Methods("POST")
	protected.HandleFunc("/{id:[0-9]+}", handlers.UpdateChannel).Methods("PUT")
	protected.HandleFunc("/{id:[0-9]+}", handlers.DeleteChannel).Methods("DELETE")
}
