package serialization

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/digits/internal/nn"
)

func newNet(t *testing.T, in, hidden, out int) *nn.Network {
	t.Helper()
	net, err := nn.New(in, hidden, out, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return net
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "build"))
	net := newNet(t, 4, 3, 2)
	cfg := RunConfig{InputSize: 4, HiddenSize: 3, OutputSize: 2, LearningRate: 0.1, Epochs: 10}

	require.NoError(t, store.Save(net.Export(), cfg))
	assert.True(t, store.Exists())

	loaded, loadedCfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, *loadedCfg)
	assert.Equal(t, net.Export(), loaded.Export())

	input := []float64{0.2, 0.4, 0.6, 0.8}
	a, err := net.Forward(input)
	require.NoError(t, err)
	b, err := loaded.Forward(input)
	require.NoError(t, err)
	assert.Equal(t, a.Output, b.Output)
}

func TestStoreWritesReadableJSON(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(newNet(t, 2, 2, 2).Export(), RunConfig{InputSize: 2, HiddenSize: 2, OutputSize: 2, LearningRate: 0.1, Epochs: 1}))

	data, err := os.ReadFile(store.ModelPath())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"inputSize", "hiddenSize", "outputSize", "weightsIH", "biasH", "weightsHO", "biasO"} {
		assert.Contains(t, doc, key)
	}

	data, err = os.ReadFile(store.ConfigPath())
	require.NoError(t, err)
	assert.JSONEq(t, `{"inputSize":2,"hiddenSize":2,"outputSize":2,"learningRate":0.1,"epochs":1}`, string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	_, _, err := store.Load()
	assert.ErrorIs(t, err, ErrNoModel)

	// Only one of the two documents present is still "no model".
	require.NoError(t, store.Save(newNet(t, 2, 2, 2).Export(), RunConfig{InputSize: 2, HiddenSize: 2, OutputSize: 2, LearningRate: 0.1}))
	require.NoError(t, os.Remove(store.ConfigPath()))
	_, _, err = store.Load()
	assert.ErrorIs(t, err, ErrNoModel)

	_, err = store.Stamp()
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestStoreLoadMinimalConfig(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(newNet(t, 2, 2, 2).Export(), RunConfig{InputSize: 2, HiddenSize: 2, OutputSize: 2, LearningRate: 0.1}))
	// Configs written by hand may carry only the dimensions.
	require.NoError(t, os.WriteFile(store.ConfigPath(), []byte(`{"inputSize":2,"hiddenSize":2,"outputSize":2}`), 0o644))

	net, cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, net.InputSize())
	assert.Equal(t, 2, net.HiddenSize())
	assert.Equal(t, 2, net.OutputSize())
	assert.Zero(t, cfg.Epochs)
}

func TestStoreLoadMalformed(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(newNet(t, 2, 2, 2).Export(), RunConfig{InputSize: 2, HiddenSize: 2, OutputSize: 2, LearningRate: 0.1}))

	require.NoError(t, os.WriteFile(store.ModelPath(), []byte(`{not json`), 0o644))
	_, _, err := store.Load()
	var docErr *DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, store.ModelPath(), docErr.Path)
}

func TestStoreLoadInconsistentShapes(t *testing.T) {
	store := NewStore(t.TempDir())
	snap := newNet(t, 2, 2, 2).Export()
	require.NoError(t, store.Save(snap, RunConfig{InputSize: 2, HiddenSize: 2, OutputSize: 2, LearningRate: 0.1}))

	snap.BiasO = []float64{0.1}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.ModelPath(), data, 0o644))

	_, _, err = store.Load()
	assert.ErrorIs(t, err, nn.ErrDimensionMismatch)
}

func TestStoreLoadConfigMismatch(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(newNet(t, 2, 2, 2).Export(), RunConfig{InputSize: 3, HiddenSize: 2, OutputSize: 2, LearningRate: 0.1}))

	_, _, err := store.Load()
	assert.ErrorIs(t, err, ErrConfigMismatch)
}

func TestStoreSaveRejectsInvalidSnapshot(t *testing.T) {
	store := NewStore(t.TempDir())
	snap := newNet(t, 2, 2, 2).Export()
	snap.WeightsIH = nil

	err := store.Save(snap, RunConfig{InputSize: 2, HiddenSize: 2, OutputSize: 2, LearningRate: 0.1})
	assert.ErrorIs(t, err, nn.ErrDimensionMismatch)
	assert.False(t, store.Exists())
}

func TestRunConfigValidate(t *testing.T) {
	valid := RunConfig{InputSize: 784, HiddenSize: 64, OutputSize: 10, LearningRate: 0.1, Epochs: 10}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.HiddenSize = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.LearningRate = -1
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Epochs = -1
	assert.Error(t, bad.Validate())
}
