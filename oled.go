package oled

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"go.uber.org/atomic"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"

	"github.com/flavioheleno/oled/dither"
	"github.com/flavioheleno/oled/frame"
	"github.com/flavioheleno/oled/image16bit"
	"github.com/flavioheleno/oled/image1bit"
	"github.com/flavioheleno/oled/telemetry"
)

// USB identifiers of the chassis display controller.
const (
	VendorID  = 0x0416
	ProductID = 0xE007
)

const (
	// DefaultReportSize is the size of a telemetry response report, report
	// ID included.
	DefaultReportSize = 64

	responseOpcodeOffset  = 1
	responsePayloadOffset = 4
	minReportSize         = responsePayloadOffset + telemetry.Size

	// maxStrayReports bounds the input reports skipped while waiting for a
	// telemetry response.
	maxStrayReports = 8
)

var (
	// ErrHalted is returned by every operation after Halt.
	ErrHalted = errors.New("oled: halted")
	// ErrNoAttributes is returned when no telemetry snapshot has been stored.
	ErrNoAttributes = errors.New("oled: no device attributes")
	// ErrUnexpectedResponse is returned when no telemetry response arrives
	// within maxStrayReports further input reports.
	ErrUnexpectedResponse = errors.New("oled: unexpected response")
)

// Opts is the configuration for the display.
type Opts struct {
	ReportSize int           // Telemetry response size in bytes (default: 64)
	Dither     dither.Method // Method used by Draw for monochrome frames
	Color      bool          // Draw sends RGB565 frames instead of mono pages
}

// Dev is the device handle for the chassis OLED display.
type Dev struct {
	// Communication
	c  conn.Conn
	mu sync.Mutex // One transfer at a time

	// Draw defaults
	reportSize int
	dither     dither.Method
	color      bool

	// State
	attrs  atomic.Value // telemetry.Attributes
	halted atomic.Bool
}

var _ display.Drawer = &Dev{}

// New creates a device over c and reads its telemetry.
//
// c is usually a *hidconn.Conn. opts can be nil to use defaults (mono frames,
// Floyd-Steinberg dithering).
func New(c conn.Conn, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	size := opts.ReportSize
	if size == 0 {
		size = DefaultReportSize
	}
	if size < minReportSize {
		return nil, fmt.Errorf("oled: report size %d is smaller than %d", size, minReportSize)
	}
	if opts.Dither != dither.FloydSteinberg && opts.Dither != dither.None {
		return nil, fmt.Errorf("oled: %w", dither.ErrUnknownMethod)
	}

	d := &Dev{
		c:          c,
		reportSize: size,
		dither:     opts.Dither,
		color:      opts.Color,
	}
	if _, err := d.UpdateAttributes(); err != nil {
		return nil, err
	}
	return d, nil
}

// tx serializes transfers on the connection.
func (d *Dev) tx(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.c.Tx(w, r)
}

// sendCommand sends a single byte command.
func (d *Dev) sendCommand(op frame.Opcode) error {
	return d.tx([]byte{byte(op)}, nil)
}

// sendFrames writes frames in order. It stops at the first error; frames
// already written stay on the display.
func (d *Dev) sendFrames(frames []frame.Frame) error {
	for i := range frames {
		b, err := frames[i].MarshalBinary()
		if err != nil {
			return err
		}
		if err := d.tx(b, nil); err != nil {
			return fmt.Errorf("oled: frame %d of %d: %w", i+1, len(frames), err)
		}
	}
	return nil
}

// UpdateAttributes requests telemetry from the device and stores the new
// snapshot. Input reports that are not a telemetry response are skipped.
// When the device reports an unknown mode, the previous mode is kept.
//
// Reads after the request are read-only transfers: Tx with an empty w.
func (d *Dev) UpdateAttributes() (telemetry.Attributes, error) {
	if d.halted.Load() {
		return telemetry.Attributes{}, ErrHalted
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	r := make([]byte, d.reportSize)
	if err := d.c.Tx([]byte{byte(frame.OpRequestTelemetry)}, r); err != nil {
		return telemetry.Attributes{}, fmt.Errorf("oled: requesting telemetry: %w", err)
	}
	for skipped := 0; ; skipped++ {
		op := frame.Opcode(r[responseOpcodeOffset])
		if op == frame.OpTelemetryResponse {
			break
		}
		if skipped == maxStrayReports {
			return telemetry.Attributes{}, fmt.Errorf("%w: %v after %d reports", ErrUnexpectedResponse, op, skipped+1)
		}
		if err := d.c.Tx(nil, r); err != nil {
			return telemetry.Attributes{}, fmt.Errorf("oled: reading telemetry: %w", err)
		}
	}

	prev, _ := d.attrs.Load().(telemetry.Attributes)
	a, err := prev.Update(r[responsePayloadOffset:])
	if err != nil {
		return telemetry.Attributes{}, err
	}
	d.attrs.Store(a)
	return a, nil
}

// Attributes returns the last telemetry snapshot.
func (d *Dev) Attributes() (telemetry.Attributes, error) {
	a, ok := d.attrs.Load().(telemetry.Attributes)
	if !ok {
		return telemetry.Attributes{}, ErrNoAttributes
	}
	return a, nil
}

// snapshot returns the attributes a draw call encodes against.
func (d *Dev) snapshot() (telemetry.Attributes, error) {
	if d.halted.Load() {
		return telemetry.Attributes{}, ErrHalted
	}
	return d.Attributes()
}

// DrawMono dithers src with method m and sends it as monochrome pages. src
// must be exactly the size of the display.
func (d *Dev) DrawMono(m dither.Method, src image.Image) error {
	a, err := d.snapshot()
	if err != nil {
		return err
	}
	frames, err := frame.EncodeMono(m, src, a)
	if err != nil {
		return err
	}
	return d.sendFrames(frames)
}

// DrawColor sends src as RGB565 pixels. src must be exactly the size of the
// display.
func (d *Dev) DrawColor(src image.Image) error {
	a, err := d.snapshot()
	if err != nil {
		return err
	}
	frames, err := frame.EncodeColor(src, a)
	if err != nil {
		return err
	}
	return d.sendFrames(frames)
}

// ColorModel returns the color model used by Draw.
func (d *Dev) ColorModel() color.Model {
	if d.color {
		return image16bit.RGB565Model
	}
	return image1bit.BitModel
}

// Bounds returns the image bounds of the display, or an empty rectangle
// before the first telemetry snapshot.
func (d *Dev) Bounds() image.Rectangle {
	a, err := d.Attributes()
	if err != nil {
		return image.Rectangle{}
	}
	return image.Rect(0, 0, int(a.Width), int(a.Height))
}

// Draw draws src onto the dst region of the display and sends the whole
// screen. Pixels outside dst are black.
//
// The screen is always sent in full: the device has no read back, so there
// is nothing to diff against.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	a, err := d.snapshot()
	if err != nil {
		return err
	}
	rect := image.Rect(0, 0, int(a.Width), int(a.Height))

	var frames []frame.Frame
	if d.color {
		canvas := image16bit.New(rect)
		draw.Draw(canvas, dst, src, sp, draw.Src)
		frames, err = frame.Color(canvas, a)
	} else {
		canvas := image.NewNRGBA(rect)
		draw.Draw(canvas, rect, image.Black, image.Point{}, draw.Src)
		draw.Draw(canvas, dst, src, sp, draw.Src)
		frames, err = frame.EncodeMono(d.dither, canvas, a)
	}
	if err != nil {
		return err
	}
	return d.sendFrames(frames)
}

// KeepAlive sends a keep-alive command every interval until ctx is done or a
// transfer fails.
func (d *Dev) KeepAlive(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if d.halted.Load() {
				return ErrHalted
			}
			if err := d.sendCommand(frame.OpKeepAlive); err != nil {
				return fmt.Errorf("oled: keep-alive: %w", err)
			}
		}
	}
}

// PowerLEDOn reports whether the power LED was on in the last snapshot.
func (d *Dev) PowerLEDOn() bool {
	a, _ := d.Attributes()
	return a.LEDs.Power
}

// ChassisLEDOn reports whether the chassis decor LEDs were on in the last
// snapshot.
func (d *Dev) ChassisLEDOn() bool {
	a, _ := d.Attributes()
	return a.LEDs.Chassis
}

// Halt stops the device handle and halts the connection. The display keeps
// its last image; further calls return ErrHalted.
func (d *Dev) Halt() error {
	d.halted.Store(true)
	return d.c.Halt()
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	r := d.Bounds()
	return fmt.Sprintf("oled.Dev{%s, %dx%d}", d.c, r.Dx(), r.Dy())
}
