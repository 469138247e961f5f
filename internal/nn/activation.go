package nn

import "math"

// Sigmoid computes the logistic function σ(x) = 1 / (1 + exp(-x)).
//
// The result lies in (0, 1) for finite x and saturates toward 0 or 1 for
// large |x|. Extreme inputs follow IEEE-754 float64 behavior.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// SigmoidDerivative computes σ'(x) = σ(x) * (1 - σ(x)) for a pre-activation x.
func SigmoidDerivative(x float64) float64 {
	s := Sigmoid(x)
	return SigmoidPrime(s)
}

// SigmoidPrime computes the sigmoid derivative from an already activated
// value s = σ(x).
//
// The backward pass evaluates derivatives this way so that pre-activation
// sums never have to be carried through the layers.
func SigmoidPrime(s float64) float64 {
	return s * (1 - s)
}
