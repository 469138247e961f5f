// Package train drives per-sample stochastic gradient descent over a dataset.
package train

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/digits/internal/mnist"
	"github.com/born-ml/digits/internal/nn"
	"github.com/born-ml/digits/internal/serialization"
)

// Trainer runs epochs over a dataset, updating the network after every sample.
//
// The run configuration is fixed at construction; the trainer never tunes it.
// A Trainer owns its network for the duration of Run.
type Trainer struct {
	net    *nn.Network
	cfg    serialization.RunConfig
	store  *serialization.Store
	logger *log.Logger
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithStore persists the model and config to store after the last epoch.
func WithStore(store *serialization.Store) Option {
	return func(t *Trainer) { t.store = store }
}

// WithLogger sets the destination for per-epoch progress lines.
func WithLogger(logger *log.Logger) Option {
	return func(t *Trainer) { t.logger = logger }
}

// Result summarizes a completed run.
type Result struct {
	EpochLoss []float64     // Mean absolute error per epoch
	Samples   int           // Samples per epoch
	Duration  time.Duration // Wall time of all epochs
}

// FinalLoss returns the loss of the last epoch, or NaN if no epoch ran.
func (r *Result) FinalLoss() float64 {
	if len(r.EpochLoss) == 0 {
		return math.NaN()
	}
	return r.EpochLoss[len(r.EpochLoss)-1]
}

// New creates a trainer for net using cfg.
//
// The network dimensions must match cfg and cfg must be valid.
func New(net *nn.Network, cfg serialization.RunConfig, opts ...Option) (*Trainer, error) {
	if net == nil {
		return nil, errors.New("trainer: network is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	if net.InputSize() != cfg.InputSize || net.HiddenSize() != cfg.HiddenSize || net.OutputSize() != cfg.OutputSize {
		return nil, fmt.Errorf("trainer: %w: network (%d, %d, %d), config (%d, %d, %d)", nn.ErrDimensionMismatch,
			net.InputSize(), net.HiddenSize(), net.OutputSize(),
			cfg.InputSize, cfg.HiddenSize, cfg.OutputSize)
	}

	t := &Trainer{
		net:    net,
		cfg:    cfg,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Run trains for cfg.Epochs full passes over data in dataset order.
//
// For every sample: one-hot encode the label, take one Train step, then run
// a second forward pass to measure the loss on the updated network. The
// loss is reporting only; it is not what the gradient step minimizes.
//
// ctx is checked between epochs. A cancelled run returns ctx.Err() and
// persists nothing.
func (t *Trainer) Run(ctx context.Context, data *mnist.Dataset) (*Result, error) {
	if err := data.Validate(t.cfg.InputSize, t.cfg.OutputSize); err != nil {
		return nil, fmt.Errorf("trainer: invalid dataset: %w", err)
	}
	if data.NumSamples() == 0 {
		return nil, errors.New("trainer: dataset is empty")
	}

	targets, err := encodeLabels(data.Labels, t.cfg.OutputSize)
	if err != nil {
		return nil, err
	}

	res := &Result{
		EpochLoss: make([]float64, 0, t.cfg.Epochs),
		Samples:   data.NumSamples(),
	}
	start := time.Now()

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		epochStart := time.Now()
		avg, err := t.epoch(data.Images, targets)
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		res.EpochLoss = append(res.EpochLoss, avg)

		elapsed := time.Since(epochStart)
		t.logger.Printf("epoch=%d avg_loss=%.4f samples=%d samples_per_sec=%.1f",
			epoch, avg, data.NumSamples(), float64(data.NumSamples())/elapsed.Seconds())
	}
	res.Duration = time.Since(start)

	if t.store != nil {
		if err := t.store.Save(t.net.Export(), t.cfg); err != nil {
			return nil, fmt.Errorf("trainer: save model: %w", err)
		}
		t.logger.Printf("saved model=%s config=%s", t.store.ModelPath(), t.store.ConfigPath())
	}

	return res, nil
}

// epoch performs one pass and returns the mean per-sample loss.
func (t *Trainer) epoch(images, targets [][]float64) (float64, error) {
	total := 0.0
	for i, input := range images {
		target := targets[i]
		if err := t.net.Train(input, target, t.cfg.LearningRate); err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}

		acts, err := t.net.Forward(input)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		total += MeanAbsoluteError(target, acts.Output)
	}
	return total / float64(len(images)), nil
}

// MeanAbsoluteError returns Σ|target[i] - output[i]| / len(target).
func MeanAbsoluteError(target, output []float64) float64 {
	return floats.Distance(target, output, 1) / float64(len(target))
}

func encodeLabels(labels []int, numClasses int) ([][]float64, error) {
	targets := make([][]float64, len(labels))
	for i, label := range labels {
		v, err := mnist.OneHot(label, numClasses)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		targets[i] = v
	}
	return targets, nil
}
