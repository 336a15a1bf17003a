package detector

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Model is a loaded reconstruction model. Immutable after construction; the
// detector swaps whole Model handles on reload.
type Model struct {
	id       string
	seqLen   int
	inputDim int
	weights  []*mat.Dense
	bias     [][]float64
	acts     []string
}

func NewModel(a *Artifact) *Model {
	m := &Model{
		id:       a.ID,
		seqLen:   a.SeqLen,
		inputDim: a.InputDim,
	}
	for _, l := range a.Layers {
		rows, cols := len(l.Weights), len(l.Bias)
		data := make([]float64, 0, rows*cols)
		for _, row := range l.Weights {
			data = append(data, row...)
		}
		m.weights = append(m.weights, mat.NewDense(rows, cols, data))
		m.bias = append(m.bias, l.Bias)
		m.acts = append(m.acts, l.Activation)
	}
	return m
}

func (m *Model) ID() string    { return m.id }
func (m *Model) SeqLen() int   { return m.seqLen }
func (m *Model) InputDim() int { return m.inputDim }

// ReconstructionError tiles the preprocessed vector into a constant-valued
// sequence, runs the forward pass, and returns the mean squared error
// between input and reconstruction averaged over all elements.
func (m *Model) ReconstructionError(vec []float64) float64 {
	input := m.tile(vec)
	recon := m.forward(input)

	var sum float64
	rows, cols := input.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d := input.At(i, j) - recon.At(i, j)
			sum += d * d
		}
	}
	return sum / float64(rows*cols)
}

func (m *Model) tile(vec []float64) *mat.Dense {
	data := make([]float64, 0, m.seqLen*m.inputDim)
	for i := 0; i < m.seqLen; i++ {
		data = append(data, vec...)
	}
	return mat.NewDense(m.seqLen, m.inputDim, data)
}

func (m *Model) forward(x *mat.Dense) *mat.Dense {
	cur := x
	for li := range m.weights {
		var next mat.Dense
		next.Mul(cur, m.weights[li])

		bias := m.bias[li]
		act := m.acts[li]
		next.Apply(func(_, j int, v float64) float64 {
			return activate(act, v+bias[j])
		}, &next)
		cur = &next
	}
	return cur
}

func activate(name string, v float64) float64 {
	switch name {
	case "relu":
		if v < 0 {
			return 0
		}
		return v
	case "tanh":
		return math.Tanh(v)
	case "sigmoid":
		return 1 / (1 + math.Exp(-v))
	default: // linear
		return v
	}
}
