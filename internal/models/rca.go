package models

// RCAClassification is the verdict of one RCA path.
type RCAClassification struct {
	// Category is one of the fixed enumerations: the Type 1 rule categories
	// (bandwidth_saturation, throughput_anomaly, header_length, packet_size,
	// flow_duration, unclassified) or the Type 2 troubleshooting categories
	// (connectivity_issues, high_error_rates, flapping_links, packet_loss,
	// high_latency, none).
	Category string `json:"category"`

	// MatchedRule names the rule or probe pattern that fired.
	MatchedRule string `json:"matched_rule,omitempty"`

	// Severity of the match: low | medium | high, or empty when unmatched.
	Severity string `json:"severity,omitempty"`

	// PlaybookID is the remediation playbook bound to the category.
	PlaybookID string `json:"playbook_id,omitempty"`

	// Metrics holds the numeric evidence behind the match (extracted probe
	// metrics for Type 2, the triggering feature values for Type 1).
	Metrics map[string]float64 `json:"metrics,omitempty"`

	// Output carries raw probe output for audit (Type 2 only).
	Output string `json:"output,omitempty"`

	// TargetDevice is the device the probes ran against (Type 2 only).
	TargetDevice string `json:"target_device,omitempty"`
}
