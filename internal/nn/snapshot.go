package nn

import (
	"fmt"
	"math"
)

// Snapshot is the serializable record of a Network's parameters.
//
// JSON field names match the model.json documents written by earlier runs,
// so snapshots remain loadable across versions.
type Snapshot struct {
	InputSize  int         `json:"inputSize"`
	HiddenSize int         `json:"hiddenSize"`
	OutputSize int         `json:"outputSize"`
	WeightsIH  [][]float64 `json:"weightsIH"` // [hidden][input]
	BiasH      []float64   `json:"biasH"`     // [hidden]
	WeightsHO  [][]float64 `json:"weightsHO"` // [output][hidden]
	BiasO      []float64   `json:"biasO"`     // [output]
}

// Validate checks that every vector length matches the declared dimensions
// and that every parameter is finite.
//
// Returns a *ValidationError describing the first problem found.
func (s *Snapshot) Validate() error {
	if s == nil {
		return ErrNilSnapshot
	}
	if s.InputSize <= 0 || s.HiddenSize <= 0 || s.OutputSize <= 0 {
		return &ValidationError{
			Field:   "dimensions",
			Details: fmt.Sprintf("got (%d, %d, %d), all must be positive", s.InputSize, s.HiddenSize, s.OutputSize),
			Err:     ErrInvalidDimensions,
		}
	}
	if err := validateMatrix("weightsIH", s.WeightsIH, s.HiddenSize, s.InputSize); err != nil {
		return err
	}
	if err := validateVector("biasH", s.BiasH, s.HiddenSize); err != nil {
		return err
	}
	if err := validateMatrix("weightsHO", s.WeightsHO, s.OutputSize, s.HiddenSize); err != nil {
		return err
	}
	return validateVector("biasO", s.BiasO, s.OutputSize)
}

// Dims returns the (input, hidden, output) triple.
func (s *Snapshot) Dims() (int, int, int) {
	return s.InputSize, s.HiddenSize, s.OutputSize
}

func validateMatrix(name string, m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return &ValidationError{
			Field:   name,
			Details: fmt.Sprintf("has %d rows, want %d", len(m), rows),
			Err:     ErrDimensionMismatch,
		}
	}
	for i, row := range m {
		if err := validateVector(fmt.Sprintf("%s[%d]", name, i), row, cols); err != nil {
			return err
		}
	}
	return nil
}

func validateVector(name string, v []float64, n int) error {
	if len(v) != n {
		return &ValidationError{
			Field:   name,
			Details: fmt.Sprintf("has length %d, want %d", len(v), n),
			Err:     ErrDimensionMismatch,
		}
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", name, i),
				Details: fmt.Sprintf("value %v", x),
				Err:     ErrNonFinite,
			}
		}
	}
	return nil
}

func cloneVector(v []float64) []float64 {
	return append([]float64(nil), v...)
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = cloneVector(row)
	}
	return out
}
