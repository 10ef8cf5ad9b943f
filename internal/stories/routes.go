package stories

import (
	"github.com/gorilla/mux"

	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
)

// RegisterRoutes wires story endpoints onto the router. Reads are public,
// writes require authentication. The channel feed lives here because it
// reads stories, not channels.
func RegisterRoutes(router *mux.Router, handlers *Handlers, authService auth.Service) {
	router.HandleFunc("/api/stories", handlers.ListFeed).Methods("GET")
	router.HandleFunc("/api/stories/{id:[0-9]+}", handlers.GetStory).Methods("GET")
	router.HandleFunc("/api/stories/{id:[0-9]+}/thread", handlers.GetThread).Methods("GET")
	router.HandleFunc("/api/channels/{id:[0-9]+}/stories", handlers.ListChannelStories).Methods("GET")

	protected := router.PathPrefix("/api/stories").Subrouter()
	protected.Use(auth.Middleware(authService))
	protected.HandleFunc("", handlers.CreateStory).Methods("POST")
	protected.HandleFunc("/media", handlers.UploadMedia).Methods("POST")
	protected.HandleFunc("/{id:[0-9]+}", handlers.UpdateStory).Methods("PUT")
	protected.HandleFunc("/{id:[0-9]+}", handlers.DeleteStory).Methods("DELETE")
	protected.HandleFunc("/{id:[0-9]+}/like", handlers.ToggleLike).Methods("POST")
}
