// Package dither converts images to 1-bit monochrome.
package dither

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/flavioheleno/oled/image1bit"
)

// Method selects how greyscale is reduced to on/off pixels.
type Method uint8

const (
	// FloydSteinberg diffuses the quantization error to neighbouring pixels.
	FloydSteinberg Method = iota
	// None applies a plain 50% luminance threshold.
	None
)

// ErrUnknownMethod is returned for a Method outside the known set.
var ErrUnknownMethod = errors.New("dither: unknown method")

func (m Method) String() string {
	switch m {
	case FloydSteinberg:
		return "floyd-steinberg"
	case None:
		return "none"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

// ParseMethod returns the Method named s, as printed by String.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "floyd-steinberg", "fs":
		return FloydSteinberg, nil
	case "none":
		return None, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Apply converts src with method m.
func Apply(m Method, src image.Image) (*image1bit.VerticalLSB, error) {
	switch m {
	case FloydSteinberg:
		return FloydSteinbergDither(src), nil
	case None:
		return Threshold(src), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, m)
	}
}

// Threshold turns on every pixel whose luminance is at least 50%.
func Threshold(src image.Image) *image1bit.VerticalLSB {
	b := src.Bounds()
	dst := image1bit.NewVerticalLSB(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetBit(x, y, image1bit.BitModel.Convert(src.At(x, y)).(image1bit.Bit))
		}
	}
	return dst
}

// Error buffer levels: pixels start at 64*(luminance-0.5), so black is -32
// and white is +32.
const (
	errScale = 64
	levelOn  = 32
	levelOff = -32
)

// FloydSteinbergDither dithers src with Floyd-Steinberg error diffusion.
//
// The error buffer is signed 8-bit and wraps on overflow. Each share of the
// error is computed as weight*err/16 with truncating integer division, in
// raster order, so the output is bit-identical to the device vendor's tool.
func FloydSteinbergDither(src image.Image) *image1bit.VerticalLSB {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image1bit.NewVerticalLSB(b)
	if w <= 0 || h <= 0 {
		return dst
	}

	data := make([]int8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			data[y*w+x] = int8(errScale * (image1bit.Luminance(n.R, n.G, n.B) - 0.5))
		}
	}

	for y := 0; y < h; y++ {
		row := data[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			on := row[x] > 0
			level := int8(levelOff)
			if on {
				level = levelOn
				dst.SetBit(b.Min.X+x, b.Min.Y+y, image1bit.On)
			}
			e := int(row[x] - level)
			if x < w-1 {
				row[x+1] += int8(7 * e / 16)
			}
			if y < h-1 {
				next := data[(y+1)*w : (y+2)*w]
				if x > 0 {
					next[x-1] += int8(3 * e / 16)
				}
				next[x] += int8(5 * e / 16)
				if x < w-1 {
					next[x+1] += int8(1 * e / 16)
				}
			}
		}
	}
	return dst
}
