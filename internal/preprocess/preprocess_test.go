package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitImage is red on the left half and blue on the right half.
func splitImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, float32(-1), Normalize(0))
	assert.Equal(t, float32(1), Normalize(255))
	assert.InDelta(t, 0.0039, Normalize(128), 0.0001)
}

func TestOptionsShape(t *testing.T) {
	assert.Equal(t, []int64{1, 224, 224, 3}, DefaultOptions().Shape())
	assert.Equal(t, []int64{1, 3, 32, 32}, Options{Size: 32, Layout: NCHW}.Shape())
	assert.Equal(t, 3*224*224, Options{}.InputSize())
	assert.NoError(t, Options{}.Validate())
	assert.Error(t, Options{Layout: "HWCN"}.Validate())
}

func TestTensorNHWC(t *testing.T) {
	data := Tensor(splitImage(448, 300), DefaultOptions())
	require.Len(t, data, 3*224*224)

	left := (10*224 + 10) * 3
	assert.Equal(t, float32(1), data[left])
	assert.Equal(t, float32(-1), data[left+1])
	assert.Equal(t, float32(-1), data[left+2])

	right := (10*224 + 200) * 3
	assert.Equal(t, float32(-1), data[right])
	assert.Equal(t, float32(-1), data[right+1])
	assert.Equal(t, float32(1), data[right+2])
}

func TestTensorNCHW(t *testing.T) {
	opts := Options{Size: 16, Layout: NCHW}
	data := Tensor(splitImage(64, 64), opts)
	require.Len(t, data, 3*16*16)

	plane := 16 * 16
	px := 5*16 + 1
	assert.Equal(t, float32(1), data[px])
	assert.Equal(t, float32(-1), data[plane+px])
	assert.Equal(t, float32(-1), data[2*plane+px])

	px = 5*16 + 14
	assert.Equal(t, float32(-1), data[px])
	assert.Equal(t, float32(1), data[2*plane+px])
}

func TestTensorValuesInRange(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 30))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 256)
	}
	for _, v := range Tensor(img, Options{Size: 24}) {
		assert.GreaterOrEqual(t, v, float32(-1))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, splitImage(8, 8)))

	img, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, _, err = Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
