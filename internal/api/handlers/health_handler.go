package handlers

import (
	"net/http"
	"time"
)

// ProcessStats describes the running process.
type ProcessStats interface {
	Uptime() time.Duration
	MemoryRSS() uint64
}

// HealthHandler reports liveness.
type HealthHandler struct {
	proc ProcessStats
}

func NewHealthHandler(proc ProcessStats) *HealthHandler {
	return &HealthHandler{proc: proc}
}

type healthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
	Memory    uint64  `json:"memory"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Uptime:    h.proc.Uptime().Seconds(),
		Memory:    h.proc.MemoryRSS(),
	})
}
