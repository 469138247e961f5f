package serialization

import (
	"fmt"
	"math"
)

// Fixed document names inside a build directory.
const (
	ModelFile  = "model.json"
	ConfigFile = "config.json"
)

// RunConfig is the configuration document saved next to a model.
type RunConfig struct {
	InputSize    int     `json:"inputSize"`
	HiddenSize   int     `json:"hiddenSize"`
	OutputSize   int     `json:"outputSize"`
	LearningRate float64 `json:"learningRate"`
	Epochs       int     `json:"epochs"`
}

// Validate checks that the configuration describes a trainable network.
func (c *RunConfig) Validate() error {
	if c.InputSize <= 0 || c.HiddenSize <= 0 || c.OutputSize <= 0 {
		return fmt.Errorf("layer sizes must be positive (got %d, %d, %d)", c.InputSize, c.HiddenSize, c.OutputSize)
	}
	if c.LearningRate <= 0 || math.IsNaN(c.LearningRate) || math.IsInf(c.LearningRate, 0) {
		return fmt.Errorf("learningRate must be > 0 (got %v)", c.LearningRate)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be >= 0 (got %d)", c.Epochs)
	}
	return nil
}
