package rca

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IT21259166/anbd-core/internal/metrics"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/internal/store"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

// Notifier pushes a real-time update to subscribers. Fire-and-forget:
// implementations log failures instead of returning them.
type Notifier interface {
	Publish(channel string, payload interface{})
}

// Responder triggers remediation for a classified anomaly. Outcomes are
// recorded, not propagated: remediation failure never invalidates the
// classification that requested it.
type Responder interface {
	TriggerType1(ctx context.Context, ev *models.AnomalyEvent, c models.RCAClassification, features map[string]float64) models.ResponseOutcome
	TriggerType2(ctx context.Context, ev *models.AnomalyEvent, c models.RCAClassification) models.ResponseOutcome
}

// Orchestrator fans a positive detection out to both RCA paths, merges their
// verdicts, persists the merged result onto the anomaly event and notifies
// subscribers.
type Orchestrator struct {
	rules     *RuleClassifier
	probes    *Troubleshooter
	events    store.EventStore
	notifier  Notifier
	responder Responder
	logger    logger.Logger
}

func NewOrchestrator(rules *RuleClassifier, probes *Troubleshooter, events store.EventStore,
	notifier Notifier, responder Responder, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		rules:     rules,
		probes:    probes,
		events:    events,
		notifier:  notifier,
		responder: responder,
		logger:    log,
	}
}

// HandleDetection runs both RCA paths for an anomalous flow. The paths run
// concurrently and join at a barrier; each path's failure is captured in its
// own slot of the merged result and never aborts the other path. A store
// failure skips the notification but the computed RCA results are still
// returned to the caller.
func (o *Orchestrator) HandleDetection(ctx context.Context, logID string,
	rec models.FlowFeatureRecord, det models.DetectionResult) models.OrchestrationResult {

	event, evErr := o.events.GetEvent(ctx, logID)
	if evErr != nil {
		o.logger.Error("event lookup failed, RCA continues without persistence",
			"log_id", logID, "error", evErr)
	}

	var (
		wg sync.WaitGroup
		r1 models.PathResult
		r2 models.PathResult
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		r1 = o.runPath("rca_type1", logID, func() models.PathResult {
			c := o.rules.Classify(rec.Reduced())
			res := models.PathResult{Classification: &c}
			if o.responder != nil && event != nil && c.Category != CategoryUnclassified {
				outcome := o.responder.TriggerType1(ctx, event, c, rec.Reduced())
				res.ResponseTriggered = &outcome
			}
			return res
		})
	}()

	go func() {
		defer wg.Done()
		r2 = o.runPath("rca_type2", logID, func() models.PathResult {
			if event == nil {
				return models.PathResult{Error: fmt.Sprintf("event lookup failed: %v", evErr)}
			}
			c := o.probes.Classify(ctx, event.SrcIP, event.DstIP, event.DstPort)
			res := models.PathResult{Classification: &c}
			if o.responder != nil && c.Category != CategoryNone {
				outcome := o.responder.TriggerType2(ctx, event, c)
				res.ResponseTriggered = &outcome
			}
			return res
		})
	}()

	wg.Wait()

	merged := map[string]models.PathResult{
		"rca_type1": r1,
		"rca_type2": r2,
	}

	if event != nil {
		event.IsAnomalous = true
		event.ReconstructionError = det.ReconstructionError
		event.Confidence = det.Confidence
		event.RCAResults = merged
		if err := o.events.SaveEvent(ctx, event); err != nil {
			o.logger.Error("persisting RCA results failed, skipping notification",
				"log_id", logID, "error", err)
		} else {
			o.notify(event, det)
		}
	}

	return models.OrchestrationResult{
		IsAnomalous:  true,
		Prediction:   det,
		RCAInitiated: merged,
	}
}

// runPath isolates one RCA path: its returned classification or captured
// failure lands in its own slot, and a panic inside the path is demoted to a
// path error rather than taking down the barrier.
func (o *Orchestrator) runPath(path, logID string, fn func() models.PathResult) (res models.PathResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("RCA path panicked", "path", path, "log_id", logID, "panic", r)
			res = models.PathResult{Error: fmt.Sprintf("%v", r)}
		}
		category := "error"
		if res.Classification != nil {
			category = res.Classification.Category
		}
		metrics.RCAPathResults.WithLabelValues(path, category).Inc()
	}()
	return fn()
}

func (o *Orchestrator) notify(ev *models.AnomalyEvent, det models.DetectionResult) {
	if o.notifier == nil {
		return
	}
	o.notifier.Publish("new_anomaly", models.AnomalyUpdate{
		LogID:               ev.LogID,
		SrcIP:               ev.SrcIP,
		DstIP:               ev.DstIP,
		Timestamp:           ev.Timestamp.UTC().Format(time.RFC3339),
		ReconstructionError: det.ReconstructionError,
		Confidence:          det.Confidence,
	})
	metrics.NotificationsSent.WithLabelValues("new_anomaly").Inc()
}
