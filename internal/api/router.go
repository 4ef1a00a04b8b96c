// Package api - Router setup
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)

	// Apply global middleware
	r.Use(h.RecoveryMiddleware)
	r.Use(CORSMiddleware)
	r.Use(h.LoggingMiddleware)

	// Public routes
	r.HandleFunc("/", h.ServerInfo).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods("GET")

	// Gateway callbacks, authenticated by signature
	r.HandleFunc("/callbacks/coinspaid", h.ReceiveCallback).Methods("POST")

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", h.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(h.AuthMiddleware)

	protected.HandleFunc("/balances", h.GetBalances).Methods("GET")
	protected.HandleFunc("/addresses", h.TakeAddress).Methods("POST")
	protected.HandleFunc("/withdrawals", h.Withdraw).Methods("POST")
	protected.HandleFunc("/limits", h.GetLimits).Methods("GET")
	protected.HandleFunc("/callbacks", h.ListCallbacks).Methods("GET")
	protected.HandleFunc("/callbacks/{id}", h.GetCallback).Methods("GET")
	protected.HandleFunc("/ws/callbacks", h.HandleWebSocket).Methods("GET")

	// Operator control
	protected.HandleFunc("/control", h.ControlStatus).Methods("GET")
	protected.HandleFunc("/control/withdrawals/suspend", h.SuspendWithdrawals).Methods("POST")
	protected.HandleFunc("/control/withdrawals/resume", h.ResumeWithdrawals).Methods("POST")
	protected.HandleFunc("/control/currencies/{currency}/suspend", h.SuspendCurrency).Methods("POST")
	protected.HandleFunc("/control/currencies/{currency}/resume", h.ResumeCurrency).Methods("POST")

	return r
}

// NotFoundHandler handles 404 errors
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}
