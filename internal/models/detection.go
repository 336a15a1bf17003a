package models

// DetectionResult is the output of one anomaly detection over a single flow.
type DetectionResult struct {
	IsAnomalous         bool    `json:"is_anomalous"`
	ReconstructionError float64 `json:"reconstruction_error"`
	Confidence          float64 `json:"confidence"`
}

// Confidence maps a reconstruction error onto [0,1]: full confidence is
// reached at twice the classification threshold.
func ConfidenceFromError(reconstructionError, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	c := reconstructionError / (2 * threshold)
	if c > 1 {
		return 1
	}
	if c < 0 {
		return 0
	}
	return c
}

// ModelStatus reports the detector lifecycle for the status endpoint.
type ModelStatus struct {
	Status     string  `json:"status"` // not_initialized | not_loaded | loaded
	SeqLen     int     `json:"seq_len,omitempty"`
	InputDim   int     `json:"input_dim,omitempty"`
	Threshold  float64 `json:"threshold,omitempty"`
	ScalerFit  bool    `json:"scaler_fitted,omitempty"`
	ArtifactID string  `json:"artifact_id,omitempty"`
}
