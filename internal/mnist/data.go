package mnist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Standard MNIST geometry.
const (
	Rows       = 28
	Cols       = 28
	ImageSize  = Rows * Cols
	NumClasses = 10
)

// Standard IDX file base names. Load accepts each with or without a ".gz" suffix.
const (
	TrainImagesFile = "train-images-idx3-ubyte"
	TrainLabelsFile = "train-labels-idx1-ubyte"
	TestImagesFile  = "t10k-images-idx3-ubyte"
	TestLabelsFile  = "t10k-labels-idx1-ubyte"
)

// ErrLabel reports a label outside [0, numClasses).
var ErrLabel = errors.New("mnist: label out of range")

// Dataset holds images and their labels in file order.
type Dataset struct {
	Images [][]float64 // [num_samples][rows*cols], values in [0, 1]
	Labels []int       // [num_samples]
}

// Set is the train/test pair produced by Load.
type Set struct {
	Train *Dataset
	Test  *Dataset
}

// NumSamples returns the number of samples in the dataset.
func (d *Dataset) NumSamples() int {
	return len(d.Images)
}

// Limit returns a view over the first n samples (n <= 0 keeps everything).
func (d *Dataset) Limit(n int) *Dataset {
	if n <= 0 || n >= d.NumSamples() {
		return d
	}
	return &Dataset{Images: d.Images[:n], Labels: d.Labels[:n]}
}

// Validate checks that every image has inputSize values and every label
// is in [0, numClasses).
func (d *Dataset) Validate(inputSize, numClasses int) error {
	if len(d.Images) != len(d.Labels) {
		return fmt.Errorf("image count (%d) != label count (%d)", len(d.Images), len(d.Labels))
	}
	for i, img := range d.Images {
		if len(img) != inputSize {
			return fmt.Errorf("sample %d: image has %d values, want %d", i, len(img), inputSize)
		}
		if l := d.Labels[i]; l < 0 || l >= numClasses {
			return fmt.Errorf("sample %d: %w: %d not in [0, %d)", i, ErrLabel, l, numClasses)
		}
	}
	return nil
}

// Load loads the MNIST training and test sets from dir.
//
// Expected files in dir (each may carry a ".gz" suffix):
//   - train-images-idx3-ubyte, train-labels-idx1-ubyte
//   - t10k-images-idx3-ubyte, t10k-labels-idx1-ubyte
//
// Any read or format failure aborts the load.
func Load(dir string) (*Set, error) {
	train, err := LoadPair(dir, TrainImagesFile, TrainLabelsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load training set: %w", err)
	}
	test, err := LoadPair(dir, TestImagesFile, TestLabelsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load test set: %w", err)
	}
	return &Set{Train: train, Test: test}, nil
}

// LoadPair loads one images/labels file pair from dir.
func LoadPair(dir, imagesName, labelsName string) (*Dataset, error) {
	images, err := readFile(resolve(dir, imagesName), ReadImages)
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	labels, err := readFile(resolve(dir, labelsName), ReadLabels)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	if len(images) != len(labels) {
		return nil, fmt.Errorf("%w: image count (%d) != label count (%d)", ErrFormat, len(images), len(labels))
	}
	return &Dataset{Images: images, Labels: labels}, nil
}

// resolve prefers the gzip-compressed file when both forms exist.
func resolve(dir, name string) string {
	gz := filepath.Join(dir, name+".gz")
	if _, err := os.Stat(gz); err == nil {
		return gz
	}
	return filepath.Join(dir, name)
}

func readFile[T any](path string, read func(r io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := openIDX(path)
	if err != nil {
		return zero, err
	}
	defer rc.Close()

	v, err := read(rc)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return v, nil
}

// OneHot encodes label as a vector of length numClasses with a single 1.
//
// Example: OneHot(3, 10) = [0 0 0 1 0 0 0 0 0 0].
func OneHot(label, numClasses int) ([]float64, error) {
	if label < 0 || label >= numClasses {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrLabel, label, numClasses)
	}
	v := make([]float64, numClasses)
	v[label] = 1
	return v, nil
}

// Synthetic creates a tiny deterministic dataset for smoke runs.
//
// Sample i has label i % 10 and a bright horizontal band whose position
// depends on the label. This is NOT realistic MNIST data.
func Synthetic(numSamples int) *Dataset {
	images := make([][]float64, numSamples)
	labels := make([]int, numSamples)

	for i := 0; i < numSamples; i++ {
		digit := i % NumClasses
		images[i] = make([]float64, ImageSize)
		labels[i] = digit

		startRow := digit * 2 // 0, 2, 4, ..., 18
		for row := startRow; row < startRow+8 && row < Rows; row++ {
			for col := 5; col < 23; col++ {
				images[i][row*Cols+col] = 0.8
			}
		}
	}

	return &Dataset{Images: images, Labels: labels}
}
