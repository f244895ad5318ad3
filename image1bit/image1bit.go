// Package image1bit provides a 1-bit monochrome image in the page layout of
// the chassis OLED controller.
//
// The display is addressed in pages of 8 rows. Each byte holds one column of
// a page: bit 0 (LSB) is the top row of the page, bit 7 the bottom row.
// Bytes are stored page by page, left to right within a page, which is the
// order the controller expects on the wire.
//
// Memory layout example for a 3x8 image (one page):
//
//	x:     0    1    2
//	byte:  0x01 0x80 0xFF
//	       (0x01 = only the top pixel of column 0 is lit)
//	       (0x80 = only the bottom pixel of column 1 is lit)
package image1bit

import (
	"image"
	"image/color"
)

// Bit is a monochrome pixel: On is lit (white), Off is dark.
type Bit bool

const (
	On  Bit = true
	Off Bit = false
)

// RGBA returns white for On and black for Off.
func (b Bit) RGBA() (r, g, bl, a uint32) {
	if b {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// Luminance returns the perceived brightness of an 8-bit RGB sample in [0, 1]
// using the 0.299/0.587/0.114 weights.
func Luminance(r, g, b uint8) float64 {
	return (float64(r)*0.299 + float64(g)*0.587 + float64(b)*0.114) / 255
}

// Threshold is the luminance at and above which a pixel is On.
const Threshold = 0.5

func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Bit(!(Luminance(n.R, n.G, n.B) < Threshold))
}

// BitModel converts colors to Bit with a plain 50% luminance threshold.
var BitModel = color.ModelFunc(toBit)

// VerticalLSB is a 1-bit image stored as 8-row pages, one byte per column
// per page, least significant bit on top.
type VerticalLSB struct {
	Pix    []byte          // Pixel data, one byte per column per page
	Stride int             // Bytes per page (image width)
	Rect   image.Rectangle // Image bounds
}

// NewVerticalLSB creates a VerticalLSB image with the given bounds.
// A height that is not a multiple of 8 leaves the last page partially used.
func NewVerticalLSB(r image.Rectangle) *VerticalLSB {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &VerticalLSB{Rect: r}
	}
	pages := (h + 7) / 8
	return &VerticalLSB{
		Pix:    make([]byte, w*pages),
		Stride: w,
		Rect:   r,
	}
}

// ColorModel returns BitModel.
func (p *VerticalLSB) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the image bounds.
func (p *VerticalLSB) Bounds() image.Rectangle {
	return p.Rect
}

// Opaque always returns true.
func (p *VerticalLSB) Opaque() bool {
	return true
}

// At implements image.Image.
func (p *VerticalLSB) At(x, y int) color.Color {
	return p.BitAt(x, y)
}

// BitAt returns the pixel at (x, y). Out of bounds pixels are Off.
func (p *VerticalLSB) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Off
	}
	offset, mask := p.pixOffset(x, y)
	return Bit(p.Pix[offset]&mask != 0)
}

// Set implements draw.Image.
func (p *VerticalLSB) Set(x, y int, c color.Color) {
	p.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the pixel at (x, y) without color conversion.
func (p *VerticalLSB) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, mask := p.pixOffset(x, y)
	if b {
		p.Pix[offset] |= mask
	} else {
		p.Pix[offset] &^= mask
	}
}

// Pages returns the number of pages, counting a trailing partial page.
func (p *VerticalLSB) Pages() int {
	if p.Stride == 0 {
		return 0
	}
	return len(p.Pix) / p.Stride
}

// Page returns the bytes of page i, one per column.
func (p *VerticalLSB) Page(i int) []byte {
	return p.Pix[i*p.Stride : (i+1)*p.Stride]
}

// pixOffset returns the byte offset and bit mask of the pixel at (x, y).
func (p *VerticalLSB) pixOffset(x, y int) (offset int, mask byte) {
	dy := y - p.Rect.Min.Y
	offset = (dy/8)*p.Stride + (x - p.Rect.Min.X)
	mask = 1 << uint(dy&7)
	return
}
