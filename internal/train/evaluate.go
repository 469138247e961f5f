package train

import (
	"errors"
	"fmt"
	"log"

	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/digits/internal/mnist"
	"github.com/born-ml/digits/internal/nn"
	"github.com/born-ml/digits/internal/parallel"
)

// Evaluation is the outcome of scoring a network on a labeled dataset.
type Evaluation struct {
	Correct  int
	Total    int
	Accuracy float64 // Correct / Total
	Loss     float64 // Mean absolute error over all samples
}

// Prediction is the network's answer for one sample.
type Prediction struct {
	Index  int
	Label  int
	Pred   int
	Output []float64
}

// Evaluate scores net on data using up to workers goroutines (0 = one per CPU).
//
// Forward passes only read the network, so samples are scored concurrently.
// The network must not be trained while Evaluate runs.
func Evaluate(net *nn.Network, data *mnist.Dataset, workers int) (Evaluation, error) {
	if err := data.Validate(net.InputSize(), net.OutputSize()); err != nil {
		return Evaluation{}, fmt.Errorf("evaluate: %w", err)
	}
	n := data.NumSamples()
	if n == 0 {
		return Evaluation{}, errors.New("evaluate: dataset is empty")
	}

	preds := make([]int, n)
	losses := make([]float64, n)
	errs := make([]error, n)

	parallel.For(n, func(i int) {
		pred, output, err := net.Predict(data.Images[i])
		if err != nil {
			errs[i] = err
			return
		}
		target, err := mnist.OneHot(data.Labels[i], net.OutputSize())
		if err != nil {
			errs[i] = err
			return
		}
		preds[i] = pred
		losses[i] = MeanAbsoluteError(target, output)
	}, parallel.Workers(workers))

	if err := errors.Join(errs...); err != nil {
		return Evaluation{}, fmt.Errorf("evaluate: %w", err)
	}

	ev := Evaluation{Total: n, Loss: stat.Mean(losses, nil)}
	for i, pred := range preds {
		if pred == data.Labels[i] {
			ev.Correct++
		}
	}
	ev.Accuracy = float64(ev.Correct) / float64(n)
	return ev, nil
}

// PredictFirst returns predictions for the first n samples of data.
// A non-positive n returns no predictions.
func PredictFirst(net *nn.Network, data *mnist.Dataset, n int) ([]Prediction, error) {
	n = max(min(n, data.NumSamples()), 0)
	out := make([]Prediction, 0, n)
	for i := 0; i < n; i++ {
		pred, output, err := net.Predict(data.Images[i])
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out = append(out, Prediction{Index: i, Label: data.Labels[i], Pred: pred, Output: output})
	}
	return out, nil
}

// LogPredictions writes one line per prediction with outputs rounded to two decimals.
func LogPredictions(logger *log.Logger, preds []Prediction) {
	for _, p := range preds {
		logger.Printf("sample=%d label=%d pred=%d output=%.2f", p.Index+1, p.Label, p.Pred, p.Output)
	}
}
