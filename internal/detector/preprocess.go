package detector

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/IT21259166/anbd-core/internal/metrics"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

const imputeNeighbors = 5

// Preprocessor turns flow feature records into model-ready vectors. The
// pipeline reproduces the training-time transform exactly: project onto the
// fixed feature order, coerce non-finite values to missing, winsorize each
// column at the 1st/99th percentile of the batch, KNN-impute what remains,
// then min-max scale into [0,1].
//
// Scaling uses the persisted scaler when one is set; otherwise bounds are
// fitted on the calling batch, which degenerates for single-record calls.
// Production inference always configures a persisted scaler.
type Preprocessor struct {
	scaler *MinMaxScaler
	logger logger.Logger
}

func NewPreprocessor(scaler *MinMaxScaler, log logger.Logger) *Preprocessor {
	return &Preprocessor{scaler: scaler, logger: log}
}

// ScalerFitted reports whether a persisted scaler is configured.
func (p *Preprocessor) ScalerFitted() bool {
	return p.scaler.Fitted()
}

// TransformOne preprocesses a single record. Failures degrade to the
// all-zero vector; preprocessing must never abort detection.
func (p *Preprocessor) TransformOne(rec models.FlowFeatureRecord) []float64 {
	out := p.Transform([]models.FlowFeatureRecord{rec})
	return out[0]
}

// Transform preprocesses a batch. The returned batch always has one vector
// of dimension len(models.ModelFeatures) per input record; rows that fail
// degrade to zero vectors.
func (p *Preprocessor) Transform(records []models.FlowFeatureRecord) [][]float64 {
	dim := len(models.ModelFeatures)
	out := make([][]float64, len(records))

	batch, err := p.transform(records)
	if err != nil {
		metrics.PreprocessFailures.Inc()
		p.logger.Error("preprocessing failed, degrading to zero vectors", "error", err, "batch", len(records))
		for i := range out {
			out[i] = make([]float64, dim)
		}
		return out
	}
	return batch
}

func (p *Preprocessor) transform(records []models.FlowFeatureRecord) ([][]float64, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	dim := len(models.ModelFeatures)

	// Project + coerce: non-finite values become missing (NaN).
	batch := make([][]float64, len(records))
	for i, rec := range records {
		row := rec.Vector()
		if len(row) != dim {
			return nil, fmt.Errorf("record %d has dim %d, want %d", i, len(row), dim)
		}
		for j, v := range row {
			if math.IsInf(v, 0) {
				row[j] = math.NaN()
			}
		}
		batch[i] = row
	}

	winsorize(batch)
	knnImpute(batch, imputeNeighbors)

	scaler := p.scaler
	if !scaler.Fitted() {
		scaler = &MinMaxScaler{}
		scaler.Fit(batch)
	}
	for i := range batch {
		if err := scaler.Transform(batch[i]); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

// winsorize clips each column to its batch [1st, 99th] percentile bounds.
// With a single row the bounds collapse onto the value itself and clipping
// is a no-op.
func winsorize(batch [][]float64) {
	if len(batch) == 0 {
		return
	}
	dim := len(batch[0])
	col := make([]float64, 0, len(batch))
	for j := 0; j < dim; j++ {
		col = col[:0]
		for i := range batch {
			if !math.IsNaN(batch[i][j]) {
				col = append(col, batch[i][j])
			}
		}
		if len(col) == 0 {
			continue
		}
		sort.Float64s(col)
		lo := stat.Quantile(0.01, stat.Empirical, col, nil)
		hi := stat.Quantile(0.99, stat.Empirical, col, nil)
		for i := range batch {
			v := batch[i][j]
			if math.IsNaN(v) {
				continue
			}
			if v < lo {
				batch[i][j] = lo
			} else if v > hi {
				batch[i][j] = hi
			}
		}
	}
}

// knnImpute replaces each missing cell with the mean of that column over the
// k nearest rows (Euclidean distance on mutually observed columns). Rows
// without usable neighbors fall back to the column mean, then to 0.
func knnImpute(batch [][]float64, k int) {
	if len(batch) == 0 {
		return
	}
	dim := len(batch[0])

	colMean := make([]float64, dim)
	for j := 0; j < dim; j++ {
		sum, n := 0.0, 0
		for i := range batch {
			if !math.IsNaN(batch[i][j]) {
				sum += batch[i][j]
				n++
			}
		}
		if n > 0 {
			colMean[j] = sum / float64(n)
		}
	}

	type neighbor struct {
		idx  int
		dist float64
	}

	for i := range batch {
		for j := 0; j < dim; j++ {
			if !math.IsNaN(batch[i][j]) {
				continue
			}

			var candidates []neighbor
			for o := range batch {
				if o == i || math.IsNaN(batch[o][j]) {
					continue
				}
				d, shared := 0.0, 0
				for c := 0; c < dim; c++ {
					if math.IsNaN(batch[i][c]) || math.IsNaN(batch[o][c]) {
						continue
					}
					diff := batch[i][c] - batch[o][c]
					d += diff * diff
					shared++
				}
				if shared == 0 {
					continue
				}
				candidates = append(candidates, neighbor{idx: o, dist: d / float64(shared)})
			}

			if len(candidates) == 0 {
				batch[i][j] = colMean[j]
				continue
			}
			sort.Slice(candidates, func(a, b int) bool { return candidates[a].dist < candidates[b].dist })
			if len(candidates) > k {
				candidates = candidates[:k]
			}
			sum := 0.0
			for _, nb := range candidates {
				sum += batch[nb.idx][j]
			}
			batch[i][j] = sum / float64(len(candidates))
		}
	}
}
