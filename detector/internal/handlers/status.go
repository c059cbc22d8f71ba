// Package handlers implements the detector's HTTP endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ranwatch-systems/ranwatch/common/messaging"
	"github.com/ranwatch-systems/ranwatch/detector/internal/pipeline"
)

// StatusHandler exposes health and pipeline state.
type StatusHandler struct {
	pipe *pipeline.Pipeline
	bus  messaging.Client
}

// NewStatusHandler constructs a new handler. bus may be nil when the
// detector runs without a broker connection.
func NewStatusHandler(p *pipeline.Pipeline, bus messaging.Client) *StatusHandler {
	return &StatusHandler{pipe: p, bus: bus}
}

// Health handles GET /healthz. The process is healthy as long as it can
// answer; a disabled cascade still counts as alive.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz. Readiness requires the bus connection.
func (h *StatusHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if h.bus != nil && !h.bus.IsConnected() {
		writeError(w, http.StatusServiceUnavailable, "bus_disconnected", "message bus connection is down")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Stats handles GET /stats with a pipeline snapshot.
func (h *StatusHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.pipe.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	type errorBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method is not allowed")
}
