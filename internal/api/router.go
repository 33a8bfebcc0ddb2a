// Package api - Router setup
package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRouter creates and configures the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	r.Use(RecoveryMiddleware(h.log))
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware(h.log))

	// Public routes
	r.HandleFunc("/", h.ServerInfo).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Auth routes (public)
	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", h.Register).Methods("POST")
	authRoutes.HandleFunc("/login", h.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(h.AuthMiddleware)

	protected.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	protected.HandleFunc("/auth/session", h.GetSession).Methods("GET")

	// Wallet
	protected.HandleFunc("/wallet/balance", h.GetBalance).Methods("GET")
	protected.HandleFunc("/wallet/deposit", h.Deposit).Methods("POST")
	protected.HandleFunc("/wallet/withdraw", h.Withdraw).Methods("POST")
	protected.HandleFunc("/wallet/transactions", h.GetTransactions).Methods("GET")

	// Responsible gaming limits
	protected.HandleFunc("/limits", h.GetLimits).Methods("GET")
	protected.HandleFunc("/limits/wager", h.SetWagerLimit).Methods("POST")
	protected.HandleFunc("/limits/loss", h.SetLossLimit).Methods("POST")

	// Games
	protected.HandleFunc("/games", h.GetGames).Methods("GET")
	protected.HandleFunc("/games/history", h.GetHistory).Methods("GET")
	protected.HandleFunc("/games/play", h.Play).Methods("POST")
	protected.HandleFunc("/games/rounds/{id}", h.GetRound).Methods("GET")
	protected.HandleFunc("/games/{id}", h.GetGame).Methods("GET")

	// WebSocket for real-time play
	protected.HandleFunc("/ws", h.HandleWebSocket).Methods("GET")

	return r
}

// NotFoundHandler handles 404 errors
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}
