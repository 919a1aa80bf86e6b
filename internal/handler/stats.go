package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/codedrop-dev/codedrop/internal/domain"
	"github.com/codedrop-dev/codedrop/internal/logger"
	"github.com/codedrop-dev/codedrop/internal/service"
)

type statsResponse struct {
	domain.Stats
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// Stats returns service-wide counters plus process uptime.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.vault.Stats(r.Context())
	if err != nil {
		logger.Log.Error("failed to load stats", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, statsResponse{
		Stats:         stats,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}

type sweeperResponse struct {
	LastRun service.SweepStats `json:"last_run"`
}

// Sweeper returns statistics from the last expiry sweep pass.
func (h *Handler) Sweeper(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, sweeperResponse{LastRun: h.sweeper.LastStats()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
