package detector

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the serialized form of a trained reconstruction model: an
// ordered stack of dense layers applied per timestep. The encoder narrows to
// the latent dimension and the decoder widens back to the input dimension.
type Artifact struct {
	ID       string          `json:"id"`
	SeqLen   int             `json:"seq_len"`
	InputDim int             `json:"input_dim"`
	Layers   []LayerArtifact `json:"layers"`
}

// LayerArtifact holds one dense layer: Weights is row-major with
// len(Weights) input rows of len(Bias) outputs each.
type LayerArtifact struct {
	Activation string      `json:"activation"` // relu | tanh | sigmoid | linear
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
}

// LoadArtifact reads and validates a model artifact. A validation failure
// returns an explicit error; callers never see a partially usable artifact.
func LoadArtifact(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &a, nil
}

func (a *Artifact) validate() error {
	if a.SeqLen <= 0 {
		return fmt.Errorf("seq_len must be positive, got %d", a.SeqLen)
	}
	if a.InputDim <= 0 {
		return fmt.Errorf("input_dim must be positive, got %d", a.InputDim)
	}
	if len(a.Layers) == 0 {
		return fmt.Errorf("no layers")
	}

	in := a.InputDim
	for i, l := range a.Layers {
		if len(l.Weights) != in {
			return fmt.Errorf("layer %d expects %d input rows, has %d", i, in, len(l.Weights))
		}
		out := len(l.Bias)
		if out == 0 {
			return fmt.Errorf("layer %d has empty bias", i)
		}
		for r, row := range l.Weights {
			if len(row) != out {
				return fmt.Errorf("layer %d weight row %d has %d cols, want %d", i, r, len(row), out)
			}
		}
		switch l.Activation {
		case "relu", "tanh", "sigmoid", "linear":
		default:
			return fmt.Errorf("layer %d has unknown activation %q", i, l.Activation)
		}
		in = out
	}
	if in != a.InputDim {
		return fmt.Errorf("final layer emits %d dims, reconstruction requires %d", in, a.InputDim)
	}
	return nil
}
