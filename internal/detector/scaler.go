package detector

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// MinMaxScaler scales each column into [0,1] using per-column bounds. The
// production path loads bounds fitted during training; Fit exists for the
// batch fallback when no persisted scaler is configured.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// LoadScaler reads persisted per-column bounds from a JSON artifact.
func LoadScaler(path string) (*MinMaxScaler, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler artifact: %w", err)
	}
	var s MinMaxScaler
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode scaler artifact: %w", err)
	}
	if len(s.Min) == 0 || len(s.Min) != len(s.Max) {
		return nil, fmt.Errorf("scaler artifact has mismatched bounds: %d min, %d max", len(s.Min), len(s.Max))
	}
	for i := range s.Min {
		if s.Max[i] < s.Min[i] {
			return nil, fmt.Errorf("scaler column %d has max < min", i)
		}
	}
	return &s, nil
}

// Fit computes per-column bounds from a batch. NaN values are ignored.
func (s *MinMaxScaler) Fit(batch [][]float64) {
	if len(batch) == 0 {
		return
	}
	dim := len(batch[0])
	s.Min = make([]float64, dim)
	s.Max = make([]float64, dim)
	for j := 0; j < dim; j++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := range batch {
			v := batch[i][j]
			if math.IsNaN(v) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if math.IsInf(lo, 1) {
			lo, hi = 0, 0
		}
		s.Min[j], s.Max[j] = lo, hi
	}
}

// Transform scales one vector in place. Columns with degenerate bounds map
// to 0; outputs clamp to [0,1] so unseen extremes stay within the model's
// trained input range.
func (s *MinMaxScaler) Transform(vec []float64) error {
	if len(vec) != len(s.Min) {
		return fmt.Errorf("vector dim %d does not match scaler dim %d", len(vec), len(s.Min))
	}
	for j := range vec {
		span := s.Max[j] - s.Min[j]
		if span == 0 {
			vec[j] = 0
			continue
		}
		v := (vec[j] - s.Min[j]) / span
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		vec[j] = v
	}
	return nil
}

// Fitted reports whether bounds are available.
func (s *MinMaxScaler) Fitted() bool {
	return s != nil && len(s.Min) > 0
}
