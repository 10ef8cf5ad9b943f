package users

import (
	"github.com/gorilla/mux"

	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
)

// RegisterRoutes wires profile endpoints onto the router. Profile reads
// are public.
func RegisterRoutes(router *mux.Router, handlers *Handlers, authService auth.Service) {
	router.HandleFunc("/api/users/{id:[0-9]+}", handlers.GetProfile).Methods("GET")

	protected := router.PathPrefix("/api/users").Subrouter()
	protected.Use(auth.Middleware(authService))
	protected.HandleFunc("/{id:[0-9]+}", handlers.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/avatar", handlers.UploadAvatar).Methods("POST")
}
