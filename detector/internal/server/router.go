package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ranwatch-systems/ranwatch/detector/internal/handlers"
)

// NewRouter wires HTTP routes for the detector service.
func NewRouter(h *handlers.StatusHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)
	mux.HandleFunc("/stats", h.Stats)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
