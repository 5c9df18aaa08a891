package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Position routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/positions", handler.GetPositions).Methods("GET")
	api.HandleFunc("/positions", handler.AddPosition).Methods("POST")
	api.HandleFunc("/positions", handler.DeletePositions).Methods("DELETE")
	api.HandleFunc("/summary", handler.GetSummary).Methods("GET")
	api.HandleFunc("/exposure", handler.GetExposure).Methods("GET")
	api.HandleFunc("/alerts", handler.GetAlerts).Methods("GET")

	return r
}
