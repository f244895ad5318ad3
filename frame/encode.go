package frame

import (
	"errors"
	"fmt"
	"image"

	"github.com/flavioheleno/oled/dither"
	"github.com/flavioheleno/oled/image16bit"
	"github.com/flavioheleno/oled/image1bit"
	"github.com/flavioheleno/oled/telemetry"
)

var (
	// ErrDimensionMismatch is returned when an image is not exactly the size
	// of the display. Images are never cropped or scaled.
	ErrDimensionMismatch = errors.New("frame: image size does not match the display")
	// ErrUnsupportedMode is returned for pixel formats or dithering methods
	// the encoders do not implement.
	ErrUnsupportedMode = errors.New("frame: unsupported mode")
	// ErrInvalidGeometry is returned when the display geometry cannot be
	// addressed by the frame format.
	ErrInvalidGeometry = errors.New("frame: invalid display geometry")
)

const (
	pageHeight = 8
	// Origins are single bytes.
	maxOrigin = 0x100
	// RGB565 pixels are 2 bytes and never split across frames.
	colorUnit = 2
)

func checkSize(r image.Rectangle, a telemetry.Attributes) error {
	if r.Dx() != int(a.Width) || r.Dy() != int(a.Height) {
		return fmt.Errorf("%w: image is %dx%d, display is %dx%d", ErrDimensionMismatch, r.Dx(), r.Dy(), a.Width, a.Height)
	}
	return nil
}

func checkGeometry(a telemetry.Attributes, unit, cols, rows int) error {
	if int(a.MaxLength) < unit || a.MaxLength > MaxPayload {
		return fmt.Errorf("%w: max length %d", ErrInvalidGeometry, a.MaxLength)
	}
	if cols > maxOrigin || rows > maxOrigin {
		return fmt.Errorf("%w: %dx%d cannot be addressed with byte origins", ErrInvalidGeometry, cols, rows)
	}
	return nil
}

// EncodeMono converts src to monochrome with method m and splits it into
// OpMonoPage frames for the display described by a.
func EncodeMono(m dither.Method, src image.Image, a telemetry.Attributes) ([]Frame, error) {
	if err := checkSize(src.Bounds(), a); err != nil {
		return nil, err
	}
	img, err := dither.Apply(m, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedMode, err)
	}
	return Mono(img, a)
}

// EncodeColor converts src to RGB565 and splits it into OpColor frames for
// the display described by a.
func EncodeColor(src image.Image, a telemetry.Attributes) ([]Frame, error) {
	if err := checkSize(src.Bounds(), a); err != nil {
		return nil, err
	}
	return Color(image16bit.Convert(src), a)
}

// Encode splits an image that is already in a device pixel format into
// frames: *image1bit.VerticalLSB as OpMonoPage, *image16bit.Image as OpColor.
func Encode(img image.Image, a telemetry.Attributes) ([]Frame, error) {
	switch m := img.(type) {
	case *image1bit.VerticalLSB:
		return Mono(m, a)
	case *image16bit.Image:
		return Color(m, a)
	default:
		return nil, fmt.Errorf("%w: pixel format %T", ErrUnsupportedMode, img)
	}
}

// Mono splits img into OpMonoPage frames, page by page and column by column
// within a page. Rows of a trailing partial page are not sent.
func Mono(img *image1bit.VerticalLSB, a telemetry.Attributes) ([]Frame, error) {
	if err := checkSize(img.Bounds(), a); err != nil {
		return nil, err
	}
	cols, pages := int(a.Width), int(a.Height)/pageHeight
	if err := checkGeometry(a, 1, cols, pages); err != nil {
		return nil, err
	}

	p := newPacketizer(OpMonoPage, a.MaxLength, cols*pages)
	for page := 0; page < pages; page++ {
		row := img.Page(page)
		for x := 0; x < cols; x++ {
			p.add(byte(page), byte(x), row[x])
		}
	}
	return p.done(), nil
}

// Color splits img into OpColor frames in row-major order.
func Color(img *image16bit.Image, a telemetry.Attributes) ([]Frame, error) {
	if err := checkSize(img.Bounds(), a); err != nil {
		return nil, err
	}
	w, h := int(a.Width), int(a.Height)
	if err := checkGeometry(a, colorUnit, w, h); err != nil {
		return nil, err
	}

	p := newPacketizer(OpColor, a.MaxLength, w*h*colorUnit)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			p.add(byte(x), byte(y), row[x*colorUnit], row[x*colorUnit+1])
		}
	}
	return p.done(), nil
}
