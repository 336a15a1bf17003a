// Package handlers implements the REST endpoints of the ANBD core API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/IT21259166/anbd-core/internal/store"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 200
)

// EventsHandler serves persisted anomaly events and response records.
type EventsHandler struct {
	events    store.EventStore
	responses store.ResponseStore
	logger    logger.Logger
}

func NewEventsHandler(events store.EventStore, responses store.ResponseStore, log logger.Logger) *EventsHandler {
	return &EventsHandler{events: events, responses: responses, logger: log}
}

// ListEvents handles GET /api/v1/events?offset=&limit=&anomalous_only=
func (h *EventsHandler) ListEvents(c *gin.Context) {
	offset, limit := pagination(c)

	events, total, err := h.events.ListEvents(c.Request.Context(), offset, limit)
	if err != nil {
		h.logger.Error("listing events failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing events failed"})
		return
	}

	if c.Query("anomalous_only") == "true" {
		filtered := events[:0]
		for _, ev := range events {
			if ev.IsAnomalous {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// GetEvent handles GET /api/v1/events/:log_id
func (h *EventsHandler) GetEvent(c *gin.Context) {
	logID := c.Param("log_id")
	ev, err := h.events.GetEvent(c.Request.Context(), logID)
	if err != nil {
		if errors.Is(err, store.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found", "log_id": logID})
			return
		}
		h.logger.Error("loading event failed", "log_id", logID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading event failed"})
		return
	}
	c.JSON(http.StatusOK, ev)
}

// ListResponses handles GET /api/v1/responses?offset=&limit=
func (h *EventsHandler) ListResponses(c *gin.Context) {
	offset, limit := pagination(c)

	responses, total, err := h.responses.ListResponses(c.Request.Context(), offset, limit)
	if err != nil {
		h.logger.Error("listing responses failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing responses failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"responses": responses,
		"total":     total,
		"offset":    offset,
		"limit":     limit,
	})
}

// GetResponse handles GET /api/v1/responses/:log_id
func (h *EventsHandler) GetResponse(c *gin.Context) {
	logID := c.Param("log_id")
	rec, err := h.responses.GetResponse(c.Request.Context(), logID)
	if err != nil {
		if errors.Is(err, store.ErrResponseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "response not found", "log_id": logID})
			return
		}
		h.logger.Error("loading response failed", "log_id", logID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading response failed"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}
