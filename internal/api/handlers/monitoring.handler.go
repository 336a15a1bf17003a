package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IT21259166/anbd-core/internal/ingest"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

// MonitoringHandler controls the CSV ingest monitor. The monitor outlives any
// single request, so starts bind to the application context, not the
// request's.
type MonitoringHandler struct {
	monitor *ingest.Monitor
	appCtx  context.Context
	logger  logger.Logger
}

func NewMonitoringHandler(m *ingest.Monitor, appCtx context.Context, log logger.Logger) *MonitoringHandler {
	return &MonitoringHandler{monitor: m, appCtx: appCtx, logger: log}
}

// Start handles POST /api/v1/monitoring/start.
func (h *MonitoringHandler) Start(c *gin.Context) {
	if err := h.monitor.Start(h.appCtx); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.monitor.Status())
}

// Stop handles POST /api/v1/monitoring/stop.
func (h *MonitoringHandler) Stop(c *gin.Context) {
	if err := h.monitor.Stop(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.monitor.Status())
}

// Status handles GET /api/v1/monitoring/status.
func (h *MonitoringHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Status())
}
