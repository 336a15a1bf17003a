// Package response executes remediation playbooks for classified anomalies
// and records the outcome. Type 1 (rule-based) remediation creates the
// response record; Type 2 (troubleshooting) remediation updates the same
// record, so one record tracks the full dual-path lifecycle of an anomaly.
package response

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/executor"
	"github.com/IT21259166/anbd-core/internal/ids"
	"github.com/IT21259166/anbd-core/internal/metrics"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/internal/playbook"
	"github.com/IT21259166/anbd-core/internal/store"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

// Notifier pushes a real-time update to subscribers.
type Notifier interface {
	Publish(channel string, payload interface{})
}

// responseTypes names the remediation approach applied per cause category.
var responseTypes = map[string]string{
	"bandwidth_saturation": "bandwidth_optimization",
	"throughput_anomaly":   "throughput_optimization",
	"header_length":        "header_normalization",
	"packet_size":          "packet_optimization",
	"flow_duration":        "flow_management",
	"high_latency":         "latency_mitigation",
	"high_error_rates":     "error_correction",
	"connectivity_issues":  "connectivity_restore",
	"packet_loss":          "loss_prevention",
	"flapping_links":       "link_stabilization",
}

// Service triggers remediation playbooks. It implements the orchestrator's
// Responder contract.
type Service struct {
	registry  *playbook.Registry
	exec      executor.Executor
	responses store.ResponseStore
	network   config.NetworkConfig
	notifier  Notifier
	logger    logger.Logger
}

func New(registry *playbook.Registry, exec executor.Executor, responses store.ResponseStore,
	network config.NetworkConfig, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		registry:  registry,
		exec:      exec,
		responses: responses,
		network:   network,
		notifier:  notifier,
		logger:    log,
	}
}

// TriggerType1 executes the rule-based path's remediation and creates the
// response record for the anomaly.
func (s *Service) TriggerType1(ctx context.Context, ev *models.AnomalyEvent,
	c models.RCAClassification, features map[string]float64) models.ResponseOutcome {

	anomalyID := ids.NewAnomalyID()
	outcome := s.execute(ctx, "type1", c, ev, features)
	outcome.AnomalyID = anomalyID

	rec := &models.ResponseRecord{
		LogID:        ev.LogID,
		AnomalyID:    anomalyID,
		Timestamp:    time.Now().UTC(),
		SrcIP:        ev.SrcIP,
		DstIP:        ev.DstIP,
		SrcPort:      ev.SrcPort,
		DstPort:      ev.DstPort,
		AnomalyType1: c.Category,
		ReFeatures:   features,
		ResType1:     outcome.ResponseType,
		Success:      outcome.Success,
		DurationMs:   outcome.DurationMs,
	}
	if err := s.responses.SaveResponse(ctx, rec); err != nil {
		s.logger.Error("saving type1 response record failed", "log_id", ev.LogID, "error", err)
	}

	s.broadcast(anomalyID, "type1", outcome)
	return outcome
}

// TriggerType2 executes the troubleshooting path's remediation and updates
// the response record created by the Type 1 path. Overall success requires
// both paths to have succeeded.
func (s *Service) TriggerType2(ctx context.Context, ev *models.AnomalyEvent,
	c models.RCAClassification) models.ResponseOutcome {

	rec, err := s.responses.GetResponse(ctx, ev.LogID)
	if err != nil {
		if errors.Is(err, store.ErrResponseNotFound) {
			// Type 1 never ran (unclassified flow); start a fresh record.
			rec = &models.ResponseRecord{
				LogID:     ev.LogID,
				AnomalyID: ids.NewAnomalyID(),
				Timestamp: time.Now().UTC(),
				SrcIP:     ev.SrcIP,
				DstIP:     ev.DstIP,
				SrcPort:   ev.SrcPort,
				DstPort:   ev.DstPort,
				Success:   true,
			}
		} else {
			s.logger.Error("loading response record failed", "log_id", ev.LogID, "error", err)
			return models.ResponseOutcome{Success: false, ResponseType: "error", Error: err.Error()}
		}
	}

	outcome := s.execute(ctx, "type2", c, ev, nil)
	outcome.AnomalyID = rec.AnomalyID

	rec.AnomalyType2 = c.Category
	rec.ResType2 = outcome.ResponseType
	if !outcome.Success {
		rec.Success = false
	}
	if err := s.responses.SaveResponse(ctx, rec); err != nil {
		s.logger.Error("saving type2 response record failed", "log_id", ev.LogID, "error", err)
	}

	s.broadcast(rec.AnomalyID, "type2", outcome)
	return outcome
}

// execute renders the category's playbook and runs every command against the
// remediation target. Success requires every command to succeed.
func (s *Service) execute(ctx context.Context, responseType string, c models.RCAClassification,
	ev *models.AnomalyEvent, features map[string]float64) models.ResponseOutcome {

	start := time.Now()
	outcome := models.ResponseOutcome{
		ResponseType: responseTypeFor(c.Category),
		PlaybookID:   c.PlaybookID,
	}

	pb, err := s.registry.Lookup(responseType, c.Category)
	if err != nil {
		outcome.Error = err.Error()
		outcome.ResponseType = "unknown"
		metrics.PlaybookExecutions.WithLabelValues(responseType, "failure").Inc()
		s.logger.Warn("no playbook for category", "response_type", responseType,
			"category", c.Category)
		return outcome
	}

	cmds := pb.Render(playbook.Params{
		SourceIP:        ev.SrcIP,
		DestinationIP:   ev.DstIP,
		DestinationPort: ev.DstPort,
		FlowMetrics:     metricParams(features),
	})
	outcome.Commands = cmds

	host := s.remediationHost(ev)
	success := true
	for _, cmd := range cmds {
		if _, err := s.exec.Run(ctx, host, cmd); err != nil {
			s.logger.Error("remediation command failed", "log_id", ev.LogID,
				"host", host, "command", cmd, "error", err)
			success = false
			outcome.Error = err.Error()
			break
		}
	}

	outcome.Success = success
	outcome.DurationMs = int(time.Since(start).Milliseconds())

	status := "success"
	if !success {
		status = "failure"
	}
	metrics.PlaybookExecutions.WithLabelValues(responseType, status).Inc()
	s.logger.Info("playbook executed", "log_id", ev.LogID, "response_type", responseType,
		"playbook", pb.Name, "success", success, "duration_ms", outcome.DurationMs)
	return outcome
}

// remediationHost picks the device the remediation commands run on: the
// managed device owning the source, then the destination, then the source
// VLAN's router, falling back to the source host itself.
func (s *Service) remediationHost(ev *models.AnomalyEvent) string {
	if _, dev, ok := s.network.DeviceByIP(ev.SrcIP); ok {
		return dev.ManagementIP
	}
	if _, dev, ok := s.network.DeviceByIP(ev.DstIP); ok {
		return dev.ManagementIP
	}
	if _, vlan, ok := s.network.VLANByIP(ev.SrcIP); ok {
		if dev, ok := s.network.Devices[vlan.Router]; ok {
			return dev.ManagementIP
		}
	}
	return ev.SrcIP
}

func (s *Service) broadcast(anomalyID, responseType string, outcome models.ResponseOutcome) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish("response_executed", models.ResponseUpdate{
		AnomalyID:    anomalyID,
		ResponseType: responseType,
		Success:      outcome.Success,
		DurationMs:   outcome.DurationMs,
		ActionsTaken: outcome.Commands,
	})
	metrics.NotificationsSent.WithLabelValues("response_executed").Inc()
}

func responseTypeFor(category string) string {
	if t, ok := responseTypes[category]; ok {
		return t
	}
	return "generic_fix"
}

// metricParams converts feature names to template placeholder keys, e.g.
// "Flow Bytes/s" -> "flow_bytes_per_sec".
func metricParams(features map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(features))
	for name, v := range features {
		key := strings.ToLower(name)
		key = strings.ReplaceAll(key, "/s", "_per_sec")
		key = strings.ReplaceAll(key, " ", "_")
		out[key] = v
	}
	return out
}
