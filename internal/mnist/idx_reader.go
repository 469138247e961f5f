package mnist

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDX magic numbers.
const (
	ImageMagic = 2051 // 0x00000803
	LabelMagic = 2049 // 0x00000801
)

// Header sanity limits.
const (
	maxSide     = 1 << 16 // Largest accepted row or column count
	maxPixels   = 1 << 24 // Largest accepted rows*cols
	maxPrealloc = 1 << 16 // Samples reserved up front, regardless of the header count
)

// ErrFormat reports a malformed IDX file.
var ErrFormat = errors.New("mnist: invalid IDX format")

// ReadImages reads an MNIST image file in IDX format.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
//
// Pixels are normalized to [0, 1] by dividing by 255; this is the only
// layer that normalizes dataset pixels.
func ReadImages(r io.Reader) ([][]float64, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != ImageMagic {
		return nil, fmt.Errorf("%w: invalid image magic number: got %d, want %d", ErrFormat, magic, ImageMagic)
	}

	var header [3]uint32 // count, rows, cols
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	numImages, numRows, numCols := header[0], header[1], header[2]
	if numRows == 0 || numCols == 0 || numRows > maxSide || numCols > maxSide ||
		uint64(numRows)*uint64(numCols) > maxPixels {
		return nil, fmt.Errorf("%w: image geometry %dx%d out of range", ErrFormat, numRows, numCols)
	}

	// The header count is untrusted; grow as samples actually arrive.
	imageSize := int(numRows) * int(numCols)
	raw := make([]byte, imageSize)
	images := make([][]float64, 0, min(numImages, maxPrealloc))
	for i := 0; i < int(numImages); i++ {
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("%w: failed to read image %d of %d: %v", ErrFormat, i, numImages, err)
		}
		img := make([]float64, imageSize)
		for j, p := range raw {
			img[j] = float64(p) / 255
		}
		images = append(images, img)
	}

	return images, nil
}

// ReadLabels reads an MNIST label file in IDX format.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
func ReadLabels(r io.Reader) ([]int, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != LabelMagic {
		return nil, fmt.Errorf("%w: invalid label magic number: got %d, want %d", ErrFormat, magic, LabelMagic)
	}

	var numLabels uint32
	if err := binary.Read(r, binary.BigEndian, &numLabels); err != nil {
		return nil, fmt.Errorf("failed to read label count: %w", err)
	}

	raw, err := io.ReadAll(io.LimitReader(r, int64(numLabels)))
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	if len(raw) != int(numLabels) {
		return nil, fmt.Errorf("%w: header declares %d labels, file holds %d", ErrFormat, numLabels, len(raw))
	}
	labels := make([]int, len(raw))
	for i, l := range raw {
		labels[i] = int(l)
	}

	return labels, nil
}

// openIDX opens path, transparently decompressing files ending in ".gz".
func openIDX(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return struct {
			io.Reader
			io.Closer
		}{bufio.NewReader(f), f}, nil
	}
	gz, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &gzipFile{Reader: gz, file: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}
