package nn

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Network is a fully connected feedforward network with one hidden layer
// and sigmoid activations on both layers.
//
// Architecture:
//   - Input: InputSize units
//   - Hidden: HiddenSize sigmoid units
//   - Output: OutputSize sigmoid units
//
// Parameters are updated in place by Train, one sample at a time.
// A Network is not safe for concurrent use while training; Forward and
// Predict only read parameters and may run concurrently with each other.
//
// Example:
//
//	net, err := nn.New(784, 64, 10, nn.NewSource(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := net.Train(image, target, 0.1); err != nil {
//	    log.Fatal(err)
//	}
type Network struct {
	inputSize  int
	hiddenSize int
	outputSize int

	weightsIH [][]float64 // [hidden][input]
	biasH     []float64   // [hidden]
	weightsHO [][]float64 // [output][hidden]
	biasO     []float64   // [output]
}

// Activations holds the layer outputs of a single forward pass.
type Activations struct {
	Hidden []float64 // [hidden]
	Output []float64 // [output]
}

// gradients holds per-unit error signals of one backward pass.
type gradients struct {
	output []float64 // [output]
	hidden []float64 // [hidden]
}

// New creates a network with every weight and bias drawn uniformly from [-1, 1).
//
// Parameters:
//   - inputSize, hiddenSize, outputSize: Layer widths (must be positive)
//   - rng: Source of randomness; nil uses a time-seeded source
//
// Returns ErrInvalidDimensions if any size is not positive.
func New(inputSize, hiddenSize, outputSize int, rng *rand.Rand) (*Network, error) {
	if inputSize <= 0 || hiddenSize <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("%w: got (%d, %d, %d)", ErrInvalidDimensions, inputSize, hiddenSize, outputSize)
	}
	if rng == nil {
		rng = NewSource(0)
	}

	return &Network{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		outputSize: outputSize,
		weightsIH:  RandomMatrix(rng, hiddenSize, inputSize),
		biasH:      RandomArray(rng, hiddenSize),
		weightsHO:  RandomMatrix(rng, outputSize, hiddenSize),
		biasO:      RandomArray(rng, outputSize),
	}, nil
}

// FromSnapshot builds a network from a validated snapshot.
//
// The snapshot is copied; later changes to it do not affect the network.
func FromSnapshot(s *Snapshot) (*Network, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := &Network{
		inputSize:  s.InputSize,
		hiddenSize: s.HiddenSize,
		outputSize: s.OutputSize,
	}
	n.load(s)
	return n, nil
}

// InputSize returns the number of input units.
func (n *Network) InputSize() int { return n.inputSize }

// HiddenSize returns the number of hidden units.
func (n *Network) HiddenSize() int { return n.hiddenSize }

// OutputSize returns the number of output units.
func (n *Network) OutputSize() int { return n.outputSize }

// Forward propagates input through both layers.
//
//	hidden[i] = σ(biasH[i] + Σ_j weightsIH[i][j] * input[j])
//	output[i] = σ(biasO[i] + Σ_j weightsHO[i][j] * hidden[j])
//
// Forward does not modify the network.
// Returns ErrDimensionMismatch if len(input) != InputSize.
func (n *Network) Forward(input []float64) (Activations, error) {
	if len(input) != n.inputSize {
		return Activations{}, mismatch("input", len(input), n.inputSize)
	}
	hidden := layer(n.weightsIH, n.biasH, input)
	output := layer(n.weightsHO, n.biasO, hidden)
	return Activations{Hidden: hidden, Output: output}, nil
}

// Predict runs Forward and returns the index of the largest output.
//
// Ties resolve to the lowest index.
func (n *Network) Predict(input []float64) (int, []float64, error) {
	acts, err := n.Forward(input)
	if err != nil {
		return 0, nil, err
	}
	return floats.MaxIdx(acts.Output), acts.Output, nil
}

// Train performs one stochastic gradient descent step on a single sample.
//
// The step runs a forward pass, computes output and hidden gradients from
// the current parameters, then applies every update in place.
// The hidden error is backpropagated through the hidden→output weights as
// they were before this step.
//
// Parameters:
//   - input: Sample input with length InputSize
//   - target: Desired output with length OutputSize (e.g. a one-hot vector)
//   - learningRate: Step size (must be positive and finite)
//
// On error the network is left unchanged.
func (n *Network) Train(input, target []float64, learningRate float64) error {
	if len(target) != n.outputSize {
		return mismatch("target", len(target), n.outputSize)
	}
	if learningRate <= 0 || math.IsNaN(learningRate) || math.IsInf(learningRate, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidLearningRate, learningRate)
	}

	acts, err := n.Forward(input)
	if err != nil {
		return err
	}

	grads := n.backward(acts, target)
	n.apply(input, acts, grads, learningRate)
	return nil
}

// backward computes gradients without touching the parameters.
func (n *Network) backward(acts Activations, target []float64) gradients {
	// outputGrad[i] = (target[i] - output[i]) * σ'(output[i])
	outputGrad := make([]float64, n.outputSize)
	for i, o := range acts.Output {
		outputGrad[i] = (target[i] - o) * SigmoidPrime(o)
	}

	// hiddenError[j] = Σ_k outputGrad[k] * weightsHO[k][j]
	hiddenGrad := make([]float64, n.hiddenSize)
	for k, g := range outputGrad {
		floats.AddScaled(hiddenGrad, g, n.weightsHO[k])
	}
	for j, h := range acts.Hidden {
		hiddenGrad[j] *= SigmoidPrime(h)
	}

	return gradients{output: outputGrad, hidden: hiddenGrad}
}

// apply adds lr * gradient * upstream activation to every weight and
// lr * gradient to every bias.
func (n *Network) apply(input []float64, acts Activations, grads gradients, lr float64) {
	for i, g := range grads.output {
		floats.AddScaled(n.weightsHO[i], lr*g, acts.Hidden)
		n.biasO[i] += lr * g
	}
	for j, g := range grads.hidden {
		floats.AddScaled(n.weightsIH[j], lr*g, input)
		n.biasH[j] += lr * g
	}
}

// Export returns a deep copy of all dimensions and parameters.
func (n *Network) Export() *Snapshot {
	return &Snapshot{
		InputSize:  n.inputSize,
		HiddenSize: n.hiddenSize,
		OutputSize: n.outputSize,
		WeightsIH:  cloneMatrix(n.weightsIH),
		BiasH:      cloneVector(n.biasH),
		WeightsHO:  cloneMatrix(n.weightsHO),
		BiasO:      cloneVector(n.biasO),
	}
}

// Import overwrites every parameter with the values in s.
//
// The snapshot must be valid and its dimensions must equal the network's.
// On error the network is left unchanged.
func (n *Network) Import(s *Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.InputSize != n.inputSize || s.HiddenSize != n.hiddenSize || s.OutputSize != n.outputSize {
		return fmt.Errorf("%w: snapshot is (%d, %d, %d), network is (%d, %d, %d)",
			ErrDimensionMismatch,
			s.InputSize, s.HiddenSize, s.OutputSize,
			n.inputSize, n.hiddenSize, n.outputSize)
	}
	n.load(s)
	return nil
}

func (n *Network) load(s *Snapshot) {
	n.weightsIH = cloneMatrix(s.WeightsIH)
	n.biasH = cloneVector(s.BiasH)
	n.weightsHO = cloneMatrix(s.WeightsHO)
	n.biasO = cloneVector(s.BiasO)
}

// layer computes σ(bias[i] + weights[i]·x) for every row of weights.
func layer(weights [][]float64, bias, x []float64) []float64 {
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = Sigmoid(bias[i] + floats.Dot(w, x))
	}
	return out
}
