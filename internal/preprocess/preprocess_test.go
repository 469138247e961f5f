package preprocess

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, img image.Image) string {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestPixelsExactLength(t *testing.T) {
	in := make([]float64, 784)
	in[0] = 255
	in[1] = 51
	in[2] = 300 // clamps to 1
	in[3] = -5  // clamps to 0

	out, err := Pixels(in, 784)
	require.NoError(t, err)
	require.Len(t, out, 784)
	assert.Equal(t, 1.0, out[0])
	assert.InDelta(t, 0.2, out[1], 1e-12)
	assert.Equal(t, 1.0, out[2])
	assert.Equal(t, 0.0, out[3])
}

func TestPixelsResizesSquare(t *testing.T) {
	// 56x56 image: left half 255, right half 0.
	in := make([]float64, 56*56)
	for y := 0; y < 56; y++ {
		for x := 0; x < 28; x++ {
			in[y*56+x] = 255
		}
	}

	out, err := Pixels(in, 784)
	require.NoError(t, err)
	require.Len(t, out, 784)
	for y := 0; y < 28; y++ {
		for x := 0; x < 28; x++ {
			want := 0.0
			if x < 14 {
				want = 1
			}
			assert.Equal(t, want, out[y*28+x], "x=%d y=%d", x, y)
		}
	}
}

func TestPixelsUpscalesSmallSquare(t *testing.T) {
	// 2x2 → 4x4 nearest neighbour.
	out, err := Pixels([]float64{0, 255, 255, 0}, 16)
	require.NoError(t, err)
	assert.Equal(t, []float64{
		0, 0, 1, 1,
		0, 0, 1, 1,
		1, 1, 0, 0,
		1, 1, 0, 0,
	}, out)
}

func TestPixelsPadsAndTruncates(t *testing.T) {
	out, err := Pixels([]float64{255, 255, 255}, 784)
	require.NoError(t, err)
	require.Len(t, out, 784)
	assert.Equal(t, []float64{1, 1, 1, 0}, out[:4])

	long := make([]float64, 1000)
	long[999] = 255
	out, err = Pixels(long, 784)
	require.NoError(t, err)
	require.Len(t, out, 784)
	for _, v := range out {
		assert.Equal(t, 0.0, v)
	}
}

func TestPixelsEmpty(t *testing.T) {
	_, err := Pixels(nil, 784)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

// oversizedPNG returns a valid 1x1 PNG whose header claims width x height.
func oversizedPNG(t *testing.T, width, height uint32) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()

	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc at 29.
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDataURL(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 280, 280))
	for y := 0; y < 280; y++ {
		for x := 0; x < 280; x++ {
			c := color.RGBA{A: 255}
			if y < 140 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	out, err := DataURL(pngDataURL(t, img), 784)
	require.NoError(t, err)
	require.Len(t, out, 784)
	assert.Equal(t, 1.0, out[0])
	assert.Equal(t, 1.0, out[13*28+27])
	assert.Equal(t, 0.0, out[14*28])
	assert.Equal(t, 0.0, out[783])
}

func TestDataURLGrayAverage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})

	out, err := DataURL(pngDataURL(t, img), 4)
	require.NoError(t, err)
	for _, v := range out {
		assert.InDelta(t, 1.0/3, v, 1e-9)
	}
}

func TestDataURLErrors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"not a data url", "http://example.com/a.png"},
		{"no payload", "data:image/png;base64"},
		{"not base64", "data:image/png,abc"},
		{"not an image", "data:text/plain;base64,aGVsbG8="},
		{"bad base64", "data:image/png;base64,!!!"},
		{"garbage image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("nope"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DataURL(tt.url, 784)
			assert.ErrorIs(t, err, ErrUnsupportedImage)
		})
	}

	_, err := DataURL("data:image/png;base64,", 10)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestSquareSide(t *testing.T) {
	side, ok := squareSide(784)
	assert.True(t, ok)
	assert.Equal(t, 28, side)

	_, ok = squareSide(785)
	assert.False(t, ok)

	_, ok = squareSide(0)
	assert.False(t, ok)
}

func TestDecodeReader(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 56, 56))
	img.SetGray(0, 0, color.Gray{Y: 255})
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))

	out, err := Decode(bytes.NewReader(buf.Bytes()), 784)
	require.NoError(t, err)
	require.Len(t, out, 784)
	assert.Equal(t, 1.0, out[0])
	assert.Equal(t, 0.0, out[1])

	_, err = Decode(bytes.NewReader(buf.Bytes()), 10)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestDecodeRejectsOversizedImage(t *testing.T) {
	data := oversizedPNG(t, 16000, 16000)

	_, err := Decode(bytes.NewReader(data), 784)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.ErrorContains(t, err, "16000x16000")

	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	_, err = DataURL(url, 784)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestDecodeAtPixelLimit(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4096, 1))
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))

	out, err := Decode(bytes.NewReader(buf.Bytes()), 4)
	require.NoError(t, err)
	assert.Len(t, out, 4)
}
