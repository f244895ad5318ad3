// Package telemetry decodes the status packet reported by the chassis OLED
// controller.
//
// The controller answers a telemetry request with a fixed-layout packet of at
// least 37 bytes describing the display geometry, the motion sensor, the
// device clock, LED state and a few user settings. Multi-byte fields are
// little-endian. Decoding is a pure transformation: the result is an
// Attributes value that is never modified after construction.
//
// Packet layout (byte offsets):
//
//	0-1   display width           18-20 background color R, G, B
//	2-3   display height          21-22 color setting
//	4     max chunk length        23    canvas rotation (bits 1,0)
//	5     sensor flags (bit 7)    24-29 acceleration X, Y, Z
//	6     device flags (bit 6)    30-32 angle X, Y, Z
//	7     bus traffic status      33    volume
//	8     button repeat delay     34    show time (0 = shown)
//	9     button repeat rate      35    mode
//	10-17 clock                   36    LED flags (bits 7,6,5)
package telemetry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"time"
)

// Size is the minimum length of a telemetry packet.
const Size = 37

const (
	offWidth         = 0
	offHeight        = 2
	offMaxLength     = 4
	offSensorFlags   = 5
	offDeviceFlags   = 6
	offBusTraffic    = 7
	offRepeatDelay   = 8
	offRepeatRate    = 9
	offClockYear     = 10
	offClockMonth    = 12
	offClockDay      = 13
	offClockHour     = 14
	offClockMinute   = 15
	offClockSecond   = 16
	offClockWeekday  = 17
	offColorR        = 18
	offColorG        = 19
	offColorB        = 20
	offColorSetting  = 21
	offRotation      = 23
	offAccelX        = 24
	offAccelY        = 26
	offAccelZ        = 28
	offAngleX        = 30
	offAngleY        = 31
	offAngleZ        = 32
	offVolume        = 33
	offShowTime      = 34
	offMode          = 35
	offLEDs          = 36
	repeatDelayUnit  = 100 * time.Millisecond
	repeatRateOffset = 49
)

const (
	bitSensorInit    = 1 << 7 // offset 5
	bitCanvasControl = 1 << 6 // offset 6
	maskRotation     = 0x03   // offset 23
	bitLEDPower      = 1 << 7 // offset 36
	bitLEDChassis    = 1 << 6
	bitLEDLaserBeam  = 1 << 5
)

// ErrMalformed is returned when a packet is too short to hold every field.
var ErrMalformed = errors.New("telemetry: malformed packet")

// Rotation is the canvas rotation reported by the device.
type Rotation uint8

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// Degrees returns the rotation angle in degrees.
func (r Rotation) Degrees() int {
	return int(r) * 90
}

func (r Rotation) String() string {
	return fmt.Sprintf("%d°", r.Degrees())
}

// CanvasControl tells who drives the display content.
type CanvasControl uint8

const (
	ByFirmware CanvasControl = iota
	ByHost
)

func (c CanvasControl) String() string {
	if c == ByFirmware {
		return "firmware"
	}
	return "host"
}

// Mode is the system operating mode.
type Mode uint8

const (
	ModeEco Mode = iota
	ModeStandard
	ModeSpeed
)

func (m Mode) String() string {
	switch m {
	case ModeEco:
		return "eco"
	case ModeStandard:
		return "standard"
	case ModeSpeed:
		return "speed"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Clock is the device calendar clock as reported, without validation.
type Clock struct {
	Year    uint16
	Month   uint8
	Day     uint8
	Hour    uint8
	Minute  uint8
	Second  uint8
	Weekday uint8
}

// Time returns the clock as a time.Time in loc (UTC when nil).
// Out-of-range fields are normalized the way time.Date does.
func (c Clock) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(int(c.Year), time.Month(c.Month), int(c.Day), int(c.Hour), int(c.Minute), int(c.Second), 0, loc)
}

// Motion is the G-sensor state.
type Motion struct {
	Initialized bool
	Accel       [3]uint16 // X, Y, Z
	Angle       [3]uint8  // X, Y, Z
}

// LEDs holds the LED flags.
type LEDs struct {
	Power     bool
	Chassis   bool
	LaserBeam bool
	// LaserBeamChanged is read from the same bit as Power, matching the
	// vendor host library's decoder. Unconfirmed against hardware captures.
	LaserBeamChanged bool
}

// Attributes is a snapshot of the device state decoded from one packet.
type Attributes struct {
	Width     uint16
	Height    uint16
	MaxLength uint8 // bytes per transport frame payload

	Background    color.RGBA
	ColorSetting  uint16
	Rotation      Rotation
	CanvasControl CanvasControl

	Motion Motion
	Clock  Clock

	Volume            uint8
	ShowTime          bool
	Mode              Mode
	LEDs              LEDs
	ButtonRepeatDelay time.Duration
	ButtonRepeatRate  int

	BusTrafficStatus uint8
}

// Decode parses a telemetry packet. Only the first Size bytes are read.
// An unknown mode code leaves Mode at ModeEco.
func Decode(b []byte) (Attributes, error) {
	return Attributes{}.Update(b)
}

// Update decodes b as a newer packet of the same device. Every field comes
// from b except Mode, which keeps the receiver's value when the mode code in
// b is unknown.
func (a Attributes) Update(b []byte) (Attributes, error) {
	if len(b) < Size {
		return Attributes{}, fmt.Errorf("%w: got %d bytes, need %d", ErrMalformed, len(b), Size)
	}
	le := binary.LittleEndian
	leds := b[offLEDs]
	n := Attributes{
		Width:     le.Uint16(b[offWidth:]),
		Height:    le.Uint16(b[offHeight:]),
		MaxLength: b[offMaxLength],

		Background:    color.RGBA{R: b[offColorR], G: b[offColorG], B: b[offColorB], A: 0xFF},
		ColorSetting:  le.Uint16(b[offColorSetting:]),
		Rotation:      Rotation(b[offRotation] & maskRotation),
		CanvasControl: ByHost,

		Motion: Motion{
			Initialized: b[offSensorFlags]&bitSensorInit != 0,
			Accel: [3]uint16{
				le.Uint16(b[offAccelX:]),
				le.Uint16(b[offAccelY:]),
				le.Uint16(b[offAccelZ:]),
			},
			Angle: [3]uint8{b[offAngleX], b[offAngleY], b[offAngleZ]},
		},
		Clock: Clock{
			Year:    le.Uint16(b[offClockYear:]),
			Month:   b[offClockMonth],
			Day:     b[offClockDay],
			Hour:    b[offClockHour],
			Minute:  b[offClockMinute],
			Second:  b[offClockSecond],
			Weekday: b[offClockWeekday],
		},

		Volume:   b[offVolume],
		ShowTime: b[offShowTime] == 0,
		Mode:     a.Mode,
		LEDs: LEDs{
			Power:            leds&bitLEDPower != 0,
			Chassis:          leds&bitLEDChassis != 0,
			LaserBeam:        leds&bitLEDLaserBeam != 0,
			LaserBeamChanged: leds&bitLEDPower != 0,
		},
		ButtonRepeatDelay: time.Duration(b[offRepeatDelay]) * repeatDelayUnit,
		ButtonRepeatRate:  int(b[offRepeatRate]) + repeatRateOffset,

		BusTrafficStatus: b[offBusTraffic],
	}
	if b[offDeviceFlags]&bitCanvasControl != 0 {
		n.CanvasControl = ByFirmware
	}
	switch m := Mode(b[offMode]); m {
	case ModeEco, ModeStandard, ModeSpeed:
		n.Mode = m
	}
	return n, nil
}

// String returns a short description of the geometry.
func (a Attributes) String() string {
	return fmt.Sprintf("telemetry.Attributes{%dx%d, max %d}", a.Width, a.Height, a.MaxLength)
}
