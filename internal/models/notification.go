package models

import "time"

// Notification is a real-time update pushed to websocket subscribers.
type Notification struct {
	Channel   string      `json:"channel"` // new_anomaly | response_executed | processing_update
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// AnomalyUpdate is the payload broadcast on the new_anomaly channel.
type AnomalyUpdate struct {
	LogID               string  `json:"log_id"`
	SrcIP               string  `json:"src_ip"`
	DstIP               string  `json:"dst_ip"`
	Timestamp           string  `json:"timestamp"`
	ReconstructionError float64 `json:"reconstruction_error"`
	Confidence          float64 `json:"confidence"`
}

// ResponseUpdate is the payload broadcast on the response_executed channel.
type ResponseUpdate struct {
	AnomalyID    string   `json:"anomaly_id"`
	ResponseType string   `json:"response_type"` // type1 | type2
	Success      bool     `json:"success"`
	DurationMs   int      `json:"duration_ms"`
	ActionsTaken []string `json:"actions_taken,omitempty"`
}

// ProcessingUpdate is the payload broadcast on the processing_update channel.
type ProcessingUpdate struct {
	ProcessedCount int    `json:"processed_count"`
	AnomalyCount   int    `json:"anomaly_count"`
	Timestamp      string `json:"timestamp"`
}
