// Package preprocess turns client-submitted images into network input vectors.
//
// Two input forms are accepted:
//   - a flat pixel array on the 0-255 scale, of any length
//   - an image data URL ("data:image/png;base64,...")
//
// Both produce a vector of the requested length with values in [0, 1].
package preprocess

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"math"
	"strings"
)

// Common errors.
var (
	ErrEmptyImage       = errors.New("image is empty")
	ErrUnsupportedImage = errors.New("unsupported image payload")
)

// Pixels normalizes a flat 0-255 pixel array to size values in [0, 1].
//
// Arrays of exactly size values are used as is. A square array of another
// length is resized with nearest-neighbour sampling to a sqrt(size) grid
// (when size is itself square). Anything else is zero-padded or truncated.
// Every value is then divided by 255 and clamped to [0, 1].
func Pixels(values []float64, size int) ([]float64, error) {
	if len(values) == 0 {
		return nil, ErrEmptyImage
	}

	input := values
	if len(values) != size {
		srcSide, srcSquare := squareSide(len(values))
		dstSide, dstSquare := squareSide(size)
		if srcSquare && dstSquare {
			input = resize(values, srcSide, srcSide, dstSide)
		} else {
			input = make([]float64, size)
			copy(input, values)
		}
	}

	out := make([]float64, size)
	for i, v := range input {
		out[i] = clamp01(v / 255)
	}
	return out, nil
}

// DataURL decodes a base64 image data URL and rasterizes it to size values in
// [0, 1], averaging the RGB channels of each sampled pixel.
//
// size must be a perfect square; the image is sampled on a sqrt(size) grid.
func DataURL(url string, size int) ([]float64, error) {
	payload, err := decodeDataURL(url)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(payload), size)
}

// MaxImagePixels bounds width*height of a decoded image.
const MaxImagePixels = 4096 * 4096

// Decode reads a PNG, JPEG or GIF image from r and rasterizes it to size
// values in [0, 1]. size must be a perfect square.
//
// The header is checked before any pixel data is decoded; images larger
// than MaxImagePixels are rejected with ErrUnsupportedImage.
func Decode(r io.Reader, size int) ([]float64, error) {
	side, ok := squareSide(size)
	if !ok {
		return nil, fmt.Errorf("%w: input size %d is not a square", ErrUnsupportedImage, size)
	}

	header := &bytes.Buffer{}
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, header))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: image is %dx%d, limit is %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, MaxImagePixels)
	}

	img, _, err := image.Decode(io.MultiReader(header, r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return Rasterize(img, side)
}

// Rasterize samples img on a side×side grid and returns row-major grayscale
// intensities in [0, 1].
func Rasterize(img image.Image, side int) ([]float64, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, ErrEmptyImage
	}

	out := make([]float64, side*side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			px := bounds.Min.X + x*width/side
			py := bounds.Min.Y + y*height/side
			r, g, b, _ := img.At(px, py).RGBA()
			out[y*side+x] = (float64(r) + float64(g) + float64(b)) / (3 * 0xffff)
		}
	}
	return out, nil
}

func decodeDataURL(url string) ([]byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: not a data URL", ErrUnsupportedImage)
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URL has no payload", ErrUnsupportedImage)
	}
	if !strings.HasPrefix(meta, "image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: want base64 image data, got %q", ErrUnsupportedImage, meta)
	}
	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return payload, nil
}

// resize samples a srcW×srcH image onto a dst×dst grid with nearest-neighbour lookup.
func resize(data []float64, srcW, srcH, dst int) []float64 {
	out := make([]float64, 0, dst*dst)
	for y := 0; y < dst; y++ {
		for x := 0; x < dst; x++ {
			srcX := x * srcW / dst
			srcY := y * srcH / dst
			out = append(out, data[srcY*srcW+srcX])
		}
	}
	return out
}

func squareSide(n int) (int, bool) {
	side := int(math.Sqrt(float64(n)))
	for side*side > n {
		side--
	}
	for (side+1)*(side+1) <= n {
		side++
	}
	return side, side > 0 && side*side == n
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
