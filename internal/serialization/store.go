package serialization

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/born-ml/digits/internal/nn"
)

// Store reads and writes the model and config documents of one build directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the build directory.
func (s *Store) Dir() string { return s.dir }

// ModelPath returns the path of the model document.
func (s *Store) ModelPath() string { return filepath.Join(s.dir, ModelFile) }

// ConfigPath returns the path of the config document.
func (s *Store) ConfigPath() string { return filepath.Join(s.dir, ConfigFile) }

// Save writes the snapshot and run configuration, replacing any previous run.
//
// Each document is written to a temporary file and renamed into place.
func (s *Store) Save(snapshot *nn.Snapshot, cfg RunConfig) error {
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("refusing to save model: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}
	if err := writeJSON(s.ModelPath(), snapshot); err != nil {
		return err
	}
	return writeJSON(s.ConfigPath(), cfg)
}

// Load reads both documents and rebuilds the network.
//
// Returns ErrNoModel if either document is missing, a *DocumentError if a
// document is malformed, and ErrConfigMismatch if the config dimensions
// disagree with the model.
func (s *Store) Load() (*nn.Network, *RunConfig, error) {
	if !s.Exists() {
		return nil, nil, ErrNoModel
	}

	var snapshot nn.Snapshot
	if err := readJSON(s.ModelPath(), &snapshot); err != nil {
		return nil, nil, err
	}
	var cfg RunConfig
	if err := readJSON(s.ConfigPath(), &cfg); err != nil {
		return nil, nil, err
	}

	if cfg.InputSize != snapshot.InputSize || cfg.HiddenSize != snapshot.HiddenSize || cfg.OutputSize != snapshot.OutputSize {
		return nil, nil, fmt.Errorf("%w: config (%d, %d, %d), model (%d, %d, %d)", ErrConfigMismatch,
			cfg.InputSize, cfg.HiddenSize, cfg.OutputSize,
			snapshot.InputSize, snapshot.HiddenSize, snapshot.OutputSize)
	}

	net, err := nn.FromSnapshot(&snapshot)
	if err != nil {
		return nil, nil, &DocumentError{Path: s.ModelPath(), Err: err}
	}
	return net, &cfg, nil
}

// Exists reports whether both documents are present.
func (s *Store) Exists() bool {
	for _, p := range []string{s.ModelPath(), s.ConfigPath()} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// Stamp identifies the current on-disk version of the pair.
type Stamp struct {
	Model  time.Time
	Config time.Time
}

// Equal reports whether both documents are unchanged between s and o.
func (s Stamp) Equal(o Stamp) bool {
	return s.Model.Equal(o.Model) && s.Config.Equal(o.Config)
}

// Stamp returns the modification times of both documents.
// It returns ErrNoModel if either is missing.
func (s *Store) Stamp() (Stamp, error) {
	model, err := os.Stat(s.ModelPath())
	if err != nil {
		return Stamp{}, statErr(err)
	}
	cfg, err := os.Stat(s.ConfigPath())
	if err != nil {
		return Stamp{}, statErr(err)
	}
	return Stamp{Model: model.ModTime(), Config: cfg.ModTime()}, nil
}

func statErr(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoModel
	}
	return err
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	//nolint:gosec // G304: File path comes from the configured build directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNoModel
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &DocumentError{Path: path, Err: err}
	}
	return nil
}
