package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IT21259166/anbd-core/internal/detector"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/internal/rca"
	"github.com/IT21259166/anbd-core/internal/store"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

// DetectionHandler serves on-demand detection and model management.
type DetectionHandler struct {
	detector     *detector.Detector
	orchestrator *rca.Orchestrator
	events       store.EventStore
	logger       logger.Logger
}

func NewDetectionHandler(det *detector.Detector, orch *rca.Orchestrator,
	events store.EventStore, log logger.Logger) *DetectionHandler {
	return &DetectionHandler{detector: det, orchestrator: orch, events: events, logger: log}
}

type detectRequest struct {
	LogID    string             `json:"log_id"`
	Features map[string]float64 `json:"features" binding:"required"`
}

// Detect handles POST /api/v1/detect: classify one flow record and, when the
// verdict is anomalous and an event exists for log_id, fan out to RCA.
func (h *DetectionHandler) Detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	rec := models.FlowFeaturesFromMap(req.Features)
	det := h.detector.Detect(rec)

	if !det.IsAnomalous || req.LogID == "" {
		c.JSON(http.StatusOK, models.OrchestrationResult{
			IsAnomalous: det.IsAnomalous,
			Prediction:  det,
		})
		return
	}

	result := h.orchestrator.HandleDetection(c.Request.Context(), req.LogID, rec, det)
	c.JSON(http.StatusOK, result)
}

// ModelStatus handles GET /api/v1/model/status.
func (h *DetectionHandler) ModelStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.detector.Status())
}

type thresholdRequest struct {
	Threshold *float64 `json:"threshold" binding:"required"`
}

// SetThreshold handles PUT /api/v1/model/threshold. Values below 0.01 clamp
// up; the applied threshold comes back in the response.
func (h *DetectionHandler) SetThreshold(c *gin.Context) {
	var req thresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	h.detector.SetThreshold(*req.Threshold)
	c.JSON(http.StatusOK, gin.H{"threshold": h.detector.Threshold()})
}
