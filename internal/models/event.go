package models

import "time"

// AnomalyEvent is the persisted record of a single ingested flow. Created
// exactly once per log_id; after a positive detection the RCA results are
// attached, nothing else is ever mutated.
type AnomalyEvent struct {
	LogID     string    `json:"log_id"`
	Timestamp time.Time `json:"timestamp"`
	SrcIP     string    `json:"src_ip"`
	DstIP     string    `json:"dst_ip"`
	SrcPort   int       `json:"src_port,omitempty"`
	DstPort   int       `json:"dst_port,omitempty"`

	IsAnomalous         bool    `json:"is_anomalous"`
	ReconstructionError float64 `json:"reconstruction_error,omitempty"`
	Confidence          float64 `json:"confidence,omitempty"`

	// RCAResults holds at most one entry per RCA path name
	// ("rca_type1", "rca_type2").
	RCAResults map[string]PathResult `json:"rca_results,omitempty"`
}

// PathResult is one RCA path's slot in the merged result: either a
// classification or a captured error, never both.
type PathResult struct {
	Classification *RCAClassification `json:"classification,omitempty"`
	Error          string             `json:"error,omitempty"`

	// ResponseTriggered records the remediation outcome for this path.
	ResponseTriggered *ResponseOutcome `json:"response_triggered,omitempty"`
}

// ResponseRecord is the persisted record of remediation executed for one
// anomaly. Type 1 fields are written first; the Type 2 path updates the same
// record, mirroring the dual-path lifecycle of the responses table.
type ResponseRecord struct {
	LogID     string    `json:"log_id"`
	AnomalyID string    `json:"anomaly_id"`
	Timestamp time.Time `json:"timestamp"`
	SrcIP     string    `json:"src_ip"`
	DstIP     string    `json:"dst_ip"`
	SrcPort   int       `json:"src_port,omitempty"`
	DstPort   int       `json:"dst_port,omitempty"`

	AnomalyType1 string             `json:"anomaly_type1,omitempty"`
	ReFeatures   map[string]float64 `json:"re_features,omitempty"`
	ResType1     string             `json:"res_type1,omitempty"`

	AnomalyType2 string `json:"anomaly_type2,omitempty"`
	ResType2     string `json:"res_type2,omitempty"`

	Success    bool `json:"success"`
	DurationMs int  `json:"duration_ms"`
}

// ResponseOutcome summarizes one playbook execution.
type ResponseOutcome struct {
	Success      bool     `json:"success"`
	AnomalyID    string   `json:"anomaly_id,omitempty"`
	ResponseType string   `json:"response_type,omitempty"`
	PlaybookID   string   `json:"playbook_id,omitempty"`
	Commands     []string `json:"commands,omitempty"`
	DurationMs   int      `json:"duration_ms"`
	Error        string   `json:"error,omitempty"`
}

// OrchestrationResult is returned to the ingestion pipeline for every
// detection, positive or not.
type OrchestrationResult struct {
	IsAnomalous  bool                  `json:"is_anomalous"`
	Prediction   DetectionResult       `json:"prediction"`
	RCAInitiated map[string]PathResult `json:"rca_initiated,omitempty"`
}
