package nn

import (
	"math/rand"
	"time"
)

// RandomArray returns size values drawn independently and uniformly from [-1, 1).
//
// Parameters:
//   - rng: Source of randomness (must not be nil)
//   - size: Number of values to draw
//
// Returns a freshly allocated slice.
func RandomArray(rng *rand.Rand, size int) []float64 {
	out := make([]float64, size)
	for i := range out {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

// RandomMatrix returns rows independent RandomArray vectors of length cols.
func RandomMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = RandomArray(rng, cols)
	}
	return out
}

// NewSource returns a generator seeded with seed, or with the current time
// when seed is zero.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	return rand.New(rand.NewSource(seed))
}
