package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up the service routes on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Use(h.observe)

	r.HandleFunc("/predict", h.Predict).Methods("POST")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// NewRouter returns the complete HTTP handler, CORS included.
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return enableCORS(r)
}
