package mnist

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data []byte, compress bool) {
	t.Helper()
	if compress {
		buf := &bytes.Buffer{}
		zw := gzip.NewWriter(buf)
		_, err := zw.Write(data)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		data = buf.Bytes()
		path += ".gz"
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestOneHot(t *testing.T) {
	v, err := OneHot(3, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 1, 0, 0, 0, 0, 0, 0}, v)

	v, err = OneHot(0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v[0])
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	assert.Equal(t, 1.0, sum)

	_, err = OneHot(10, 10)
	assert.ErrorIs(t, err, ErrLabel)
	_, err = OneHot(-1, 10)
	assert.ErrorIs(t, err, ErrLabel)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	// Training files gzip-compressed, test files raw.
	writeFile(t, filepath.Join(dir, TrainImagesFile), idxImages(t, ImageMagic, 2, 2, 2, []byte{0, 255, 255, 0, 51, 51, 51, 51}), true)
	writeFile(t, filepath.Join(dir, TrainLabelsFile), idxLabels(t, LabelMagic, []byte{3, 5}), true)
	writeFile(t, filepath.Join(dir, TestImagesFile), idxImages(t, ImageMagic, 1, 2, 2, []byte{255, 0, 0, 255}), false)
	writeFile(t, filepath.Join(dir, TestLabelsFile), idxLabels(t, LabelMagic, []byte{1}), false)

	set, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, 2, set.Train.NumSamples())
	assert.Equal(t, []int{3, 5}, set.Train.Labels)
	assert.InDeltaSlice(t, []float64{0.2, 0.2, 0.2, 0.2}, set.Train.Images[1], 1e-12)

	require.Equal(t, 1, set.Test.NumSamples())
	assert.Equal(t, []float64{1, 0, 0, 1}, set.Test.Images[0])
	assert.NoError(t, set.Test.Validate(4, NumClasses))
}

func TestLoadCountMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, TrainImagesFile), idxImages(t, ImageMagic, 1, 1, 1, []byte{9}), false)
	writeFile(t, filepath.Join(dir, TrainLabelsFile), idxLabels(t, LabelMagic, []byte{1, 2}), false)

	_, err := LoadPair(dir, TrainImagesFile, TrainLabelsFile)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoadBadMagic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, TrainImagesFile), idxImages(t, 9999, 1, 1, 1, []byte{9}), true)
	writeFile(t, filepath.Join(dir, TrainLabelsFile), idxLabels(t, LabelMagic, []byte{1}), true)

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoadMissingFiles(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSynthetic(t *testing.T) {
	d := Synthetic(12)
	require.Equal(t, 12, d.NumSamples())
	require.NoError(t, d.Validate(ImageSize, NumClasses))
	assert.Equal(t, 0, d.Labels[10])
	assert.Equal(t, d.Images[1], d.Images[11])
	assert.NotEqual(t, d.Images[0], d.Images[1])
}

func TestDatasetLimitAndValidate(t *testing.T) {
	d := Synthetic(10)
	assert.Equal(t, 3, d.Limit(3).NumSamples())
	assert.Equal(t, 10, d.Limit(0).NumSamples())
	assert.Equal(t, 10, d.Limit(50).NumSamples())

	assert.Error(t, d.Validate(100, NumClasses))
	assert.ErrorIs(t, d.Validate(ImageSize, 5), ErrLabel)
}
