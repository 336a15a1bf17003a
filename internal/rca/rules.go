// Package rca holds the two root cause analysis paths and the orchestrator
// that fans a positive detection out to both of them.
package rca

import (
	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/models"
)

// CategoryUnclassified is the Type 1 verdict when no rule matches.
const CategoryUnclassified = "unclassified"

// RuleClassifier is the Type 1 path: an ordered table of fixed numeric rules
// over the reduced 9-feature subset. Pure function of its input, safe for
// concurrent use.
type RuleClassifier struct {
	thresholds config.Type1Thresholds
	playbooks  map[string]string
}

func NewRuleClassifier(cfg config.Type1Config) *RuleClassifier {
	return &RuleClassifier{thresholds: cfg.Thresholds, playbooks: cfg.Playbooks}
}

// Classify evaluates the rules in fixed order and returns the first matching
// category. Feature values at or above the bound match; a flow matching no
// rule classifies as unclassified with no playbook bound.
func (c *RuleClassifier) Classify(features map[string]float64) models.RCAClassification {
	t := c.thresholds

	if features["Flow Bytes/s"] >= t.FlowBytesPerSec || features["Flow Packets/s"] >= t.FlowPacketsPerSec {
		return c.verdict("bandwidth_saturation", "flow_rate_bound", "high", features,
			"Flow Bytes/s", "Flow Packets/s")
	}
	if features["Total Length of Fwd Packets"] >= t.TotalFwdBytes || features["Total Length of Bwd Packets"] >= t.TotalBwdBytes {
		return c.verdict("throughput_anomaly", "byte_total_bound", "medium", features,
			"Total Length of Fwd Packets", "Total Length of Bwd Packets")
	}
	if features["Fwd Header Length"] >= t.FwdHeaderLength || features["Bwd Header Length"] >= t.BwdHeaderLength {
		return c.verdict("header_length", "header_length_bound", "medium", features,
			"Fwd Header Length", "Bwd Header Length")
	}
	if features["Max Packet Length"] >= t.MaxPacketLength || features["Packet Length Mean"] >= t.PacketLengthMean {
		return c.verdict("packet_size", "packet_size_bound", "medium", features,
			"Max Packet Length", "Packet Length Mean")
	}
	if features["Flow Duration"] >= t.FlowDurationMicros {
		return c.verdict("flow_duration", "flow_duration_bound", "low", features,
			"Flow Duration")
	}

	return models.RCAClassification{Category: CategoryUnclassified}
}

// verdict builds a classification carrying the evaluated feature values as
// evidence.
func (c *RuleClassifier) verdict(category, rule, severity string, features map[string]float64, evidence ...string) models.RCAClassification {
	metrics := make(map[string]float64, len(evidence))
	for _, name := range evidence {
		metrics[name] = features[name]
	}
	return models.RCAClassification{
		Category:    category,
		MatchedRule: rule,
		Severity:    severity,
		PlaybookID:  c.playbooks[category],
		Metrics:     metrics,
	}
}
