package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/IT21259166/anbd-core/internal/detector"
	"github.com/IT21259166/anbd-core/internal/ingest"
)

// HealthHandler reports process liveness and component state.
type HealthHandler struct {
	detector *detector.Detector
	monitor  *ingest.Monitor
	started  time.Time
}

func NewHealthHandler(det *detector.Detector, monitor *ingest.Monitor) *HealthHandler {
	return &HealthHandler{detector: det, monitor: monitor, started: time.Now().UTC()}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"model":          h.detector.Status(),
		"monitoring":     h.monitor.Status(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}
