// Package preprocess turns uploaded images into model-ready tensors.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Size is the spatial input size of the model.
type Size struct {
	Height int
	Width  int
}

// Square returns a Size with equal edges.
func Square(edge int) Size {
	return Size{Height: edge, Width: edge}
}

// Tensor is a dense float32 array in row-major order.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// Channels is the size of the last axis.
func (t *Tensor) Channels() int {
	return int(t.Shape[len(t.Shape)-1])
}

// DecodeError is returned when uploaded bytes are not a readable image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode reads an image in any registered format.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}
	return img, format, nil
}

// Preprocess resizes img to size (stretching, not cropping), lays pixels out
// channel-last, expands grayscale to three channels, scales to [0,1] and adds
// a batch axis. The result has shape [1, H, W, C].
func Preprocess(img image.Image, size Size) *Tensor {
	resized := resize.Resize(uint(size.Width), uint(size.Height), img, resize.Bicubic)

	pixels, channels := toArray(resized, channelsOf(img))
	if channels == 1 {
		pixels = replicate(pixels, 3)
		channels = 3
	}

	data := make([]float32, len(pixels))
	for i, v := range pixels {
		data[i] = float32(v) / 255.0
	}

	return &Tensor{
		Shape: []int64{1, int64(size.Height), int64(size.Width), int64(channels)},
		Data:  data,
	}
}

// channelsOf mirrors the band count of the decoded image: one for gray, four
// when the source carries straight alpha, three otherwise. 16-bit gray is
// read through color.GrayModel, so it is scaled down to 8 bits first.
func channelsOf(img image.Image) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.NRGBAModel, color.NRGBA64Model:
		return 4
	default:
		return 3
	}
}

func toArray(img image.Image, channels int) ([]uint8, int) {
	b := img.Bounds()
	out := make([]uint8, 0, b.Dx()*b.Dy()*channels)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.At(x, y)
			if channels == 1 {
				out = append(out, color.GrayModel.Convert(px).(color.Gray).Y)
				continue
			}
			c := color.NRGBAModel.Convert(px).(color.NRGBA)
			out = append(out, c.R, c.G, c.B)
			if channels == 4 {
				out = append(out, c.A)
			}
		}
	}
	return out, channels
}

func replicate(gray []uint8, n int) []uint8 {
	out := make([]uint8, 0, len(gray)*n)
	for _, v := range gray {
		for i := 0; i < n; i++ {
			out = append(out, v)
		}
	}
	return out
}
