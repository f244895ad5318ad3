// Package hidconn exposes a USB HID device as a periph.io conn.Conn.
//
// Every write is sent as one output report: report ID 0 followed by the
// message, zero padded to the report size. A transfer that expects a reply
// reads one input report and returns it with its report ID at index 0, the
// way the device documents its responses. A transfer with an empty write
// only reads.
//
// Reads give up after Opts.ReadTimeout. A report that arrives after its read
// timed out is returned by the next read.
package hidconn

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"
	log "github.com/s00500/env_logger"
	"periph.io/x/conn/v3"
)

// DefaultReportSize is the report length of the display controller, report
// ID excluded.
const DefaultReportSize = 64

// DefaultReadTimeout bounds how long a transfer waits for an input report.
const DefaultReadTimeout = time.Second

const reportID = 0x00

var (
	// ErrNotFound is returned by Open when no matching device is attached.
	ErrNotFound = errors.New("hidconn: device not found")
	// ErrReportTooLarge is returned when a message does not fit one report.
	ErrReportTooLarge = errors.New("hidconn: message does not fit in a report")
	// ErrTimeout is returned when no input report arrives in time.
	ErrTimeout = errors.New("hidconn: read timed out")
)

// Device is the part of *hid.Device used by Conn.
type Device interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

// Opts selects and configures the device.
type Opts struct {
	Serial      string        // Only open the device with this serial (optional)
	ReportSize  int           // Report length without report ID (default: 64)
	ReadTimeout time.Duration // Wait for an input report; negative waits forever (default: 1s)
}

// Info describes an attached device.
type Info struct {
	Path         string
	Serial       string
	Manufacturer string
	Product      string
	Interface    int
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (serial %q) at %s", i.Manufacturer, i.Product, i.Serial, i.Path)
}

// Devices lists the attached devices matching vid and pid.
func Devices(vid, pid uint16) []Info {
	var out []Info
	for _, d := range hid.Enumerate(vid, pid) {
		out = append(out, Info{
			Path:         d.Path,
			Serial:       d.Serial,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
			Interface:    d.Interface,
		})
	}
	return out
}

// Open opens the first attached device matching vid, pid and opts.Serial.
func Open(vid, pid uint16, opts *Opts) (*Conn, error) {
	if opts == nil {
		opts = &Opts{}
	}
	if !hid.Supported() {
		return nil, errors.New("hidconn: USB HID is not supported on this platform")
	}
	for _, info := range hid.Enumerate(vid, pid) {
		log.Debugln(log.Indent(info))
		if opts.Serial != "" && opts.Serial != info.Serial {
			continue
		}
		dev, err := info.Open()
		if err != nil {
			return nil, fmt.Errorf("hidconn: opening %s: %w", info.Path, err)
		}
		name := fmt.Sprintf("hid(%04x:%04x %s)", vid, pid, info.Serial)
		log.Debugf("opened %s", name)
		return New(dev, name, opts)
	}
	return nil, fmt.Errorf("%w: %04x:%04x serial %q", ErrNotFound, vid, pid, opts.Serial)
}

// Conn is a half-duplex connection to a HID device.
type Conn struct {
	mu          sync.Mutex
	dev         Device
	name        string
	reportSize  int
	readTimeout time.Duration
	pending     chan readResult // Read still in flight after a timeout
}

type readResult struct {
	report []byte
	err    error
}

var _ conn.Conn = &Conn{}

// New wraps an open device.
func New(dev Device, name string, opts *Opts) (*Conn, error) {
	size := DefaultReportSize
	if opts != nil && opts.ReportSize != 0 {
		size = opts.ReportSize
	}
	if size < 1 {
		return nil, fmt.Errorf("hidconn: invalid report size %d", size)
	}
	timeout := DefaultReadTimeout
	if opts != nil && opts.ReadTimeout != 0 {
		timeout = opts.ReadTimeout
	}
	return &Conn{dev: dev, name: name, reportSize: size, readTimeout: timeout}, nil
}

func (c *Conn) String() string {
	return c.name
}

// Duplex implements conn.Conn.
func (c *Conn) Duplex() conn.Duplex {
	return conn.Half
}

// Tx writes w as one output report. When r is not empty, it then reads one
// input report into r, report ID first. An empty w skips the write.
func (c *Conn) Tx(w, r []byte) error {
	out, err := OutputReport(w, c.reportSize)
	if err != nil {
		return err
	}
	if len(r) > c.reportSize+1 {
		return fmt.Errorf("%w: read of %d bytes", ErrReportTooLarge, len(r))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev == nil {
		return errors.New("hidconn: closed")
	}
	if len(w) > 0 {
		if _, err := c.dev.Write(out); err != nil {
			return fmt.Errorf("hidconn: write: %w", err)
		}
		log.Debugf("%s > % X", c.name, w)
	}
	if len(r) == 0 {
		return nil
	}

	in, err := c.read()
	if err != nil {
		return err
	}
	InputReport(r, in)
	log.Debugf("%s < % X", c.name, in)
	return nil
}

// read waits for one input report. The device read runs in its own goroutine
// so a timeout leaves it pending; the next read picks up its result. c.mu
// must be held.
func (c *Conn) read() ([]byte, error) {
	if c.pending == nil {
		ch := make(chan readResult, 1)
		go func(dev Device, buf []byte) {
			n, err := dev.Read(buf)
			ch <- readResult{report: buf[:n], err: err}
		}(c.dev, make([]byte, c.reportSize))
		c.pending = ch
	}

	var timeout <-chan time.Time
	if c.readTimeout > 0 {
		t := time.NewTimer(c.readTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case res := <-c.pending:
		c.pending = nil
		if res.err != nil {
			return nil, fmt.Errorf("hidconn: read: %w", res.err)
		}
		return res.report, nil
	case <-timeout:
		return nil, fmt.Errorf("%w after %v", ErrTimeout, c.readTimeout)
	}
}

// Halt implements conn.Resource. There is nothing in flight to stop.
func (c *Conn) Halt() error {
	return nil
}

// Close closes the device.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev == nil {
		return nil
	}
	err := c.dev.Close()
	c.dev = nil
	c.pending = nil
	return err
}

// OutputReport returns w framed as an output report of size bytes plus the
// report ID.
func OutputReport(w []byte, size int) ([]byte, error) {
	if len(w) > size {
		return nil, fmt.Errorf("%w: %d bytes, report is %d", ErrReportTooLarge, len(w), size)
	}
	out := make([]byte, size+1)
	out[0] = reportID
	copy(out[1:], w)
	return out, nil
}

// InputReport fills dst with the report ID followed by report. Bytes of dst
// past the report are zeroed.
func InputReport(dst, report []byte) {
	if len(dst) == 0 {
		return
	}
	dst[0] = reportID
	n := copy(dst[1:], report)
	clear(dst[1+n:])
}
