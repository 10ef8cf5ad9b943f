package auth

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes wires authentication endpoints onto the router.
func RegisterRoutes(router *mux.Router, handlers *Handlers, service Service) {
	router.HandleFunc("/api/auth/register", handlers.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", handlers.Login).Methods("POST")
	router.HandleFunc("/api/auth/logout", handlers.Logout).Methods("POST")

	protected := router.PathPrefix("/api/auth").Subrouter()
	protected.Use(Middleware(service))
	protected.HandleFunc("/me", handlers.Me).Methods("GET")
}
