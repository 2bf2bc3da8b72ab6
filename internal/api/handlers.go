// Package api exposes HTTP handlers for the freeze history service.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Jimmeey2323/freeze-history/internal/auth"
	"github.com/Jimmeey2323/freeze-history/internal/pipeline"
)

// Handler coordinates HTTP requests with the run manager.
type Handler struct {
	manager *RunManager
}

// NewHandler builds a Handler.
func NewHandler(manager *RunManager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/runs", h.runs)
	mux.HandleFunc("/v1/runs/latest", h.latestRun)
	mux.HandleFunc("/v1/records", h.records)
	mux.HandleFunc("/v1/cancellations", h.cancellations)
	mux.HandleFunc("/healthz", healthz)
	mux.Handle("/metrics", promhttp.Handler())
}

// AuthSkipper exempts the health and metrics endpoints from bearer auth.
func AuthSkipper(r *http.Request) bool {
	return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) runs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeFreezesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope freezes:write required")
		return
	}

	if !h.manager.Start() {
		writeError(w, http.StatusConflict, "run_active", "a pipeline run is already in progress")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (h *Handler) latestRun(w http.ResponseWriter, r *http.Request) {
	if !h.requireRead(w, r) {
		return
	}

	latest, lastErr := h.manager.Latest()
	if latest == nil {
		detail := "no completed run"
		if lastErr != nil {
			detail = lastErr.Error()
		}
		writeError(w, http.StatusNotFound, "no_run", detail)
		return
	}

	resp := LatestRunResponse{
		Summary: latest.Summary,
		Running: h.manager.Running(),
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	if !h.requireRead(w, r) {
		return
	}
	latest, _ := h.manager.Latest()
	if latest == nil {
		writeError(w, http.StatusNotFound, "no_run", "no completed run")
		return
	}
	writeJSON(w, http.StatusOK, latest.RecordRows)
}

func (h *Handler) cancellations(w http.ResponseWriter, r *http.Request) {
	if !h.requireRead(w, r) {
		return
	}
	latest, _ := h.manager.Latest()
	if latest == nil {
		writeError(w, http.StatusNotFound, "no_run", "no completed run")
		return
	}
	writeJSON(w, http.StatusOK, latest.CancellationRows)
}

// requireRead enforces GET + a read-capable scope; write implies read.
func (h *Handler) requireRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return false
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if !claims.HasScope(auth.ScopeFreezesRead) && !claims.HasScope(auth.ScopeFreezesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope freezes:read required")
		return false
	}
	return true
}

// LatestRunResponse packages the last run's summary with live state.
type LatestRunResponse struct {
	Summary   pipeline.Summary `json:"summary"`
	Running   bool             `json:"running"`
	LastError string           `json:"lastError,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
