package http

import (
	"Shortly-Backend/internal/repository"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	storage  repository.Storage
	recorder StatsSource
	log      *zap.Logger
}

// StatsSource exposes recorder counters for the health payload.
type StatsSource interface {
	Stats() map[string]interface{}
}

func NewHealthHandler(storage repository.Storage, recorder StatsSource, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage:  storage,
		recorder: recorder,
		log:      log,
	}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status         string                 `json:"status"`
	Timestamp      time.Time              `json:"timestamp"`
	DatabaseStatus string                 `json:"database_status"`
	Recorder       map[string]interface{} `json:"recorder,omitempty"`
	Uptime         string                 `json:"uptime,omitempty"`
}

var startTime = time.Now()

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Probing a nonexistent code exercises the store without needing a
	// dedicated ping method on the interface.
	dbStatus := "healthy"
	_, err := h.storage.GetLink(ctx, "health-check-non-existent")
	if err != nil && !errors.Is(err, repository.ErrCodeNotFound) {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	status := "healthy"
	statusCode := http.StatusOK
	if dbStatus == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	resp := HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(startTime).String(),
	}
	if h.recorder != nil {
		resp.Recorder = h.recorder.Stats()
	}

	writeJSON(w, statusCode, resp)
}
