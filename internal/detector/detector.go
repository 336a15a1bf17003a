// Package detector wraps the trained reconstruction model behind a
// reloadable handle: many readers run Detect concurrently while Load and
// SetThreshold are the only writers. A detector that has not loaded serves
// safe negative results so the ingestion pipeline never blocks on the model.
package detector

import (
	"os"
	"sync"

	"github.com/IT21259166/anbd-core/internal/metrics"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

const minThreshold = 0.01

// Detector classifies flows as anomalous or normal.
type Detector struct {
	mu            sync.RWMutex
	model         *Model
	pre           *Preprocessor
	threshold     float64
	loadAttempted bool
	logger        logger.Logger
}

func New(threshold float64, log logger.Logger) *Detector {
	d := &Detector{
		pre:    NewPreprocessor(&MinMaxScaler{}, log),
		logger: log,
	}
	d.SetThreshold(threshold)
	return d
}

// Load reads the model artifact and optional scaler and swaps them in
// atomically. A failed load leaves the previous state untouched; the error
// is returned for logging but the detector keeps serving defaults.
func (d *Detector) Load(artifactPath, scalerPath string) error {
	d.mu.Lock()
	d.loadAttempted = true
	d.mu.Unlock()

	artifact, err := LoadArtifact(artifactPath)
	if err != nil {
		return err
	}

	var scaler *MinMaxScaler
	if scalerPath != "" {
		if _, statErr := os.Stat(scalerPath); statErr == nil {
			scaler, err = LoadScaler(scalerPath)
			if err != nil {
				return err
			}
			if len(scaler.Min) != artifact.InputDim {
				d.logger.Warn("scaler dimension does not match model, ignoring persisted scaler",
					"scaler_dim", len(scaler.Min), "input_dim", artifact.InputDim)
				scaler = nil
			}
		} else {
			d.logger.Warn("scaler artifact not found, falling back to per-batch scaling", "path", scalerPath)
		}
	}
	if scaler == nil {
		scaler = &MinMaxScaler{}
	}

	model := NewModel(artifact)

	d.mu.Lock()
	d.model = model
	d.pre = NewPreprocessor(scaler, d.logger)
	d.mu.Unlock()

	d.logger.Info("model loaded", "artifact", artifact.ID,
		"seq_len", artifact.SeqLen, "input_dim", artifact.InputDim, "scaler_fitted", scaler.Fitted())
	return nil
}

// Detect classifies one flow record. It never fails: an unloaded detector
// returns the safe negative default.
func (d *Detector) Detect(rec models.FlowFeatureRecord) models.DetectionResult {
	d.mu.RLock()
	model := d.model
	pre := d.pre
	threshold := d.threshold
	d.mu.RUnlock()

	if model == nil {
		d.logger.Warn("model not loaded, returning default non-anomalous result")
		metrics.DetectionsTotal.WithLabelValues("model_not_ready").Inc()
		return models.DetectionResult{}
	}

	vec := pre.TransformOne(rec)
	mse := model.ReconstructionError(vec)
	isAnomalous := mse > threshold

	metrics.ReconstructionError.Observe(mse)
	if isAnomalous {
		metrics.DetectionsTotal.WithLabelValues("anomalous").Inc()
	} else {
		metrics.DetectionsTotal.WithLabelValues("normal").Inc()
	}

	return models.DetectionResult{
		IsAnomalous:         isAnomalous,
		ReconstructionError: mse,
		Confidence:          models.ConfidenceFromError(mse, threshold),
	}
}

// SetThreshold updates the classification threshold without reloading the
// model. Values below 0.01 clamp up to 0.01.
func (d *Detector) SetThreshold(t float64) {
	if t < minThreshold {
		t = minThreshold
	}
	d.mu.Lock()
	d.threshold = t
	d.mu.Unlock()
	if d.logger != nil {
		d.logger.Info("anomaly threshold set", "threshold", t)
	}
}

// Threshold returns the current classification threshold.
func (d *Detector) Threshold() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threshold
}

// Status reports the detector lifecycle: not_initialized before any load
// attempt, not_loaded after a failed one, loaded on success.
func (d *Detector) Status() models.ModelStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch {
	case d.model != nil:
		return models.ModelStatus{
			Status:     "loaded",
			SeqLen:     d.model.SeqLen(),
			InputDim:   d.model.InputDim(),
			Threshold:  d.threshold,
			ScalerFit:  d.pre.ScalerFitted(),
			ArtifactID: d.model.ID(),
		}
	case d.loadAttempted:
		return models.ModelStatus{Status: "not_loaded"}
	default:
		return models.ModelStatus{Status: "not_initialized"}
	}
}
