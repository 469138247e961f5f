// Package config loads the run configuration for training and serving.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/digits/internal/serialization"
)

// Config captures the knobs for a training run and the prediction server.
type Config struct {
	DataDir      string  `yaml:"data_dir"`
	BuildDir     string  `yaml:"build_dir"`
	InputSize    int     `yaml:"input_size"`
	HiddenSize   int     `yaml:"hidden_size"`
	OutputSize   int     `yaml:"output_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	Seed         int64   `yaml:"seed"`
	MaxSamples   int     `yaml:"max_samples"`
	Synthetic    bool    `yaml:"synthetic"`
	EvalWorkers  int     `yaml:"eval_workers"`
	ReportFirst  int     `yaml:"report_first"`
	Addr         string  `yaml:"addr"`
	StaticDir    string  `yaml:"static_dir"`
}

// Overrides captures CLI supplied values. Zero values leave the config unchanged.
type Overrides struct {
	DataDir      string
	BuildDir     string
	HiddenSize   int
	LearningRate float64
	Epochs       int
	Seed         int64
	MaxSamples   int
	Synthetic    bool
	Addr         string
	StaticDir    string
}

// Default returns the configuration of the reference MNIST run:
// a 784-64-10 network trained for 10 epochs at learning rate 0.1.
func Default() *Config {
	return &Config{
		DataDir:      "dataset",
		BuildDir:     "build",
		InputSize:    28 * 28,
		HiddenSize:   64,
		OutputSize:   10,
		LearningRate: 0.1,
		Epochs:       10,
		EvalWorkers:  0,
		ReportFirst:  5,
		Addr:         ":8080",
	}
}

// Load reads a YAML config on top of Default and validates it.
//
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	//nolint:gosec // G304: config path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.BuildDir != "" {
		c.BuildDir = o.BuildDir
	}
	if o.HiddenSize > 0 {
		c.HiddenSize = o.HiddenSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.MaxSamples > 0 {
		c.MaxSamples = o.MaxSamples
	}
	if o.Synthetic {
		c.Synthetic = true
	}
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.StaticDir != "" {
		c.StaticDir = o.StaticDir
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.InputSize <= 0 || c.HiddenSize <= 0 || c.OutputSize <= 0 {
		return fmt.Errorf("input_size, hidden_size and output_size must be > 0 (got %d, %d, %d)",
			c.InputSize, c.HiddenSize, c.OutputSize)
	}
	if c.LearningRate <= 0 || math.IsNaN(c.LearningRate) || math.IsInf(c.LearningRate, 0) {
		return fmt.Errorf("learning_rate must be > 0 (got %v)", c.LearningRate)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max_samples must be >= 0 (got %d)", c.MaxSamples)
	}
	if c.ReportFirst < 0 {
		return fmt.Errorf("report_first must be >= 0 (got %d)", c.ReportFirst)
	}
	if c.EvalWorkers < 0 {
		return fmt.Errorf("eval_workers must be >= 0 (got %d)", c.EvalWorkers)
	}
	if c.BuildDir == "" {
		return errors.New("build_dir must be set")
	}
	if !c.Synthetic && c.DataDir == "" {
		return errors.New("data_dir must be set unless synthetic is enabled")
	}
	return nil
}

// Run returns the configuration document persisted next to a trained model.
func (c *Config) Run() serialization.RunConfig {
	return serialization.RunConfig{
		InputSize:    c.InputSize,
		HiddenSize:   c.HiddenSize,
		OutputSize:   c.OutputSize,
		LearningRate: c.LearningRate,
		Epochs:       c.Epochs,
	}
}
