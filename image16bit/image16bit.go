// Package image16bit provides an RGB565 image in the byte order used by the
// chassis OLED controller.
//
// Each pixel is packed into 16 bits: 5 bits red, 6 bits green, 5 bits blue.
// 8-bit channels are scaled by 31/255, 63/255 and 31/255 and truncated. On
// the wire the low byte comes first:
//
//	byte 0: G2 G1 G0 B4 B3 B2 B1 B0
//	byte 1: R4 R3 R2 R1 R0 G5 G4 G3
package image16bit

import (
	"image"
	"image/color"
)

// RGB565 is a packed 16-bit color, R in the top 5 bits and B in the bottom 5.
type RGB565 uint16

// FromRGB packs 8-bit channels, truncating each scaled value.
func FromRGB(r, g, b uint8) RGB565 {
	r5 := uint16(float64(r) / 255 * 31)
	g6 := uint16(float64(g) / 255 * 63)
	b5 := uint16(float64(b) / 255 * 31)
	return RGB565(r5<<11 | g6<<5 | b5)
}

// Components returns the raw 5/6/5-bit fields.
func (c RGB565) Components() (r5, g6, b5 uint8) {
	return uint8(c>>11) & 0x1F, uint8(c>>5) & 0x3F, uint8(c) & 0x1F
}

// Bytes returns the two wire bytes of the color.
func (c RGB565) Bytes() [2]byte {
	return [2]byte{byte(c), byte(c >> 8)}
}

// RGBA expands the fields back to 16-bit channels.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r5, g6, b5 := c.Components()
	r = uint32(r5) * 0xFFFF / 31
	g = uint32(g6) * 0xFFFF / 63
	b = uint32(b5) * 0xFFFF / 31
	return r, g, b, 0xFFFF
}

func toRGB565(c color.Color) color.Color {
	if v, ok := c.(RGB565); ok {
		return v
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return FromRGB(n.R, n.G, n.B)
}

// RGB565Model converts colors to RGB565. Alpha is ignored.
var RGB565Model = color.ModelFunc(toRGB565)

// Image is an RGB565 image whose Pix holds wire-ordered bytes, row by row.
type Image struct {
	Pix    []byte          // 2 bytes per pixel, low byte first
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// New creates an Image with the given bounds.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 2*w*h),
		Stride: 2 * w,
		Rect:   r,
	}
}

// ColorModel returns RGB565Model.
func (p *Image) ColorModel() color.Model {
	return RGB565Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// Opaque always returns true.
func (p *Image) Opaque() bool {
	return true
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the pixel at (x, y), zero when out of bounds.
func (p *Image) RGB565At(x, y int) RGB565 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	i := p.PixOffset(x, y)
	return RGB565(p.Pix[i]) | RGB565(p.Pix[i+1])<<8
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, RGB565Model.Convert(c).(RGB565))
}

// SetRGB565 sets the pixel at (x, y) without color conversion.
func (p *Image) SetRGB565(x, y int, c RGB565) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	b := c.Bytes()
	p.Pix[i] = b[0]
	p.Pix[i+1] = b[1]
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

// Convert returns src as an Image with the same bounds.
func Convert(src image.Image) *Image {
	if m, ok := src.(*Image); ok {
		return m
	}
	b := src.Bounds()
	dst := New(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
	return dst
}
