package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/born-ml/digits/internal/config"
	"github.com/born-ml/digits/internal/mnist"
	"github.com/born-ml/digits/internal/nn"
	"github.com/born-ml/digits/internal/serialization"
	"github.com/born-ml/digits/internal/train"
)

// syntheticSamples is the size of each split when -synthetic is set.
const syntheticSamples = 100

func trainCmd(ctx context.Context, args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	var o config.Overrides
	fs.StringVar(&o.DataDir, "data", "", "directory holding the MNIST IDX files")
	fs.StringVar(&o.BuildDir, "build", "", "output directory for model.json and config.json")
	fs.IntVar(&o.HiddenSize, "hidden", 0, "hidden layer size")
	fs.Float64Var(&o.LearningRate, "lr", 0, "learning rate")
	fs.IntVar(&o.Epochs, "epochs", 0, "number of epochs")
	fs.Int64Var(&o.Seed, "seed", 0, "weight initialization seed (0 = time based)")
	fs.IntVar(&o.MaxSamples, "max-samples", 0, "limit each split to the first N samples (0 = all)")
	fs.BoolVar(&o.Synthetic, "synthetic", false, "train on generated data instead of MNIST")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	data, err := loadData(cfg)
	if err != nil {
		return err
	}
	logger.Printf("dataset train=%d test=%d", data.Train.NumSamples(), data.Test.NumSamples())

	net, err := nn.New(cfg.InputSize, cfg.HiddenSize, cfg.OutputSize, nn.NewSource(cfg.Seed))
	if err != nil {
		return err
	}
	logger.Printf("network input=%d hidden=%d output=%d lr=%g epochs=%d",
		cfg.InputSize, cfg.HiddenSize, cfg.OutputSize, cfg.LearningRate, cfg.Epochs)

	trainer, err := train.New(net, cfg.Run(),
		train.WithStore(serialization.NewStore(cfg.BuildDir)),
		train.WithLogger(logger))
	if err != nil {
		return err
	}
	res, err := trainer.Run(ctx, data.Train)
	if err != nil {
		return err
	}
	logger.Printf("training done final_loss=%.4f duration=%s", res.FinalLoss(), res.Duration)

	if data.Test.NumSamples() == 0 {
		return nil
	}
	ev, err := train.Evaluate(net, data.Test, cfg.EvalWorkers)
	if err != nil {
		return err
	}
	logger.Printf("test accuracy=%.2f%% correct=%d total=%d avg_loss=%.4f",
		ev.Accuracy*100, ev.Correct, ev.Total, ev.Loss)

	preds, err := train.PredictFirst(net, data.Test, cfg.ReportFirst)
	if err != nil {
		return err
	}
	train.LogPredictions(logger, preds)
	return nil
}

func loadData(cfg *config.Config) (*mnist.Set, error) {
	var set *mnist.Set
	if cfg.Synthetic {
		set = &mnist.Set{
			Train: mnist.Synthetic(syntheticSamples),
			Test:  mnist.Synthetic(syntheticSamples / 5),
		}
	} else {
		var err error
		set, err = mnist.Load(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
	}
	if cfg.MaxSamples > 0 {
		set.Train = set.Train.Limit(cfg.MaxSamples)
		set.Test = set.Test.Limit(cfg.MaxSamples)
	}
	return set, nil
}
