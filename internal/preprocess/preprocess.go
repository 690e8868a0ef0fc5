// Package preprocess turns decoded images into the normalised float tensor
// the classifier expects.
package preprocess

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"

	"github.com/nfnt/resize"
)

// DefaultSize is the square input resolution of MobileNetV2-style models.
const DefaultSize = 224

const (
	channels = 3
	offset   = 127.5
)

// Layout is the memory order of the input tensor.
type Layout string

const (
	// NHWC is [batch, height, width, channel], the browser runtime's order.
	NHWC Layout = "NHWC"
	// NCHW is [batch, channel, height, width], the PyTorch export order.
	NCHW Layout = "NCHW"
)

// Options controls tensor construction.
type Options struct {
	Size   int
	Layout Layout
}

// DefaultOptions returns 224x224 NHWC.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, Layout: NHWC}
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Layout == "" {
		o.Layout = NHWC
	}
	return o
}

// InputSize is the number of float values in one tensor.
func (o Options) InputSize() int {
	o = o.withDefaults()
	return channels * o.Size * o.Size
}

// Shape returns the tensor shape including the batch dimension of 1.
func (o Options) Shape() []int64 {
	o = o.withDefaults()
	s := int64(o.Size)
	if o.Layout == NCHW {
		return []int64{1, channels, s, s}
	}
	return []int64{1, s, s, channels}
}

// Validate rejects unknown layouts.
func (o Options) Validate() error {
	switch o.withDefaults().Layout {
	case NHWC, NCHW:
		return nil
	default:
		return fmt.Errorf("unsupported tensor layout %q", o.Layout)
	}
}

// Decode reads a JPEG, PNG or GIF image.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Normalize maps an 8-bit channel value from [0,255] to [-1,1].
func Normalize(v uint8) float32 {
	return (float32(v) - offset) / offset
}

// Tensor resizes img with nearest-neighbour sampling and returns the
// normalised pixel data with a leading batch dimension of 1.
func Tensor(img image.Image, opts Options) []float32 {
	opts = opts.withDefaults()
	size := uint(opts.Size)

	resized := resize.Resize(size, size, img, resize.NearestNeighbor)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	data := make([]float32, channels*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			px := y*width + x

			if opts.Layout == NCHW {
				data[px] = Normalize(c.R)
				data[plane+px] = Normalize(c.G)
				data[2*plane+px] = Normalize(c.B)
				continue
			}
			data[px*channels] = Normalize(c.R)
			data[px*channels+1] = Normalize(c.G)
			data[px*channels+2] = Normalize(c.B)
		}
	}

	return data
}
