// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/digits/internal/nn"
)

// Network is a fully connected network with one sigmoid hidden layer.
type Network = nn.Network

// Activations holds the hidden and output values of one forward pass.
type Activations = nn.Activations

// Snapshot is the serializable record of a Network's parameters.
type Snapshot = nn.Snapshot

// ValidationError describes a snapshot that does not match its declared shape.
type ValidationError = nn.ValidationError

// Errors
var (
	ErrDimensionMismatch   = nn.ErrDimensionMismatch
	ErrInvalidDimensions   = nn.ErrInvalidDimensions
	ErrInvalidLearningRate = nn.ErrInvalidLearningRate
	ErrNilSnapshot         = nn.ErrNilSnapshot
	ErrNonFinite           = nn.ErrNonFinite
)

// New creates a network with weights and biases drawn uniformly from [-1, 1).
//
// Example:
//
//	net, err := nn.New(784, 64, 10, nn.NewSource(42))
func New(inputSize, hiddenSize, outputSize int, rng *rand.Rand) (*Network, error) {
	return nn.New(inputSize, hiddenSize, outputSize, rng)
}

// FromSnapshot builds a network from a validated snapshot.
func FromSnapshot(s *Snapshot) (*Network, error) {
	return nn.FromSnapshot(s)
}

// NewSource returns a generator seeded with seed, or with the current time
// when seed is zero.
func NewSource(seed int64) *rand.Rand {
	return nn.NewSource(seed)
}

// Activations

// Sigmoid computes 1 / (1 + exp(-x)).
func Sigmoid(x float64) float64 {
	return nn.Sigmoid(x)
}

// SigmoidDerivative computes σ(x) * (1 - σ(x)).
func SigmoidDerivative(x float64) float64 {
	return nn.SigmoidDerivative(x)
}

// SigmoidPrime computes the derivative from an activated value s = σ(x).
func SigmoidPrime(s float64) float64 {
	return nn.SigmoidPrime(s)
}
