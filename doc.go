// Package oled controls the OLED display built into a PC chassis through its
// USB HID controller (VID 0x0416, PID 0xE007).
//
// The controller reports its geometry and state in a telemetry packet and
// accepts images split into small frames. This driver implements the
// display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - Monochrome pages (1 bit per pixel, 8 rows per byte) or RGB565 color
// - Geometry and frame capacity read from the device at run time
// - Power and chassis LED state, device clock, motion sensor and user settings
// - The device goes back to its own screen unless it receives keep-alives
//
// # Connection
//
// The device is a USB HID device. The hidconn package provides a conn.Conn
// over it:
//
//	package main
//
//	import (
//		"image"
//
//		"github.com/flavioheleno/oled"
//		"github.com/flavioheleno/oled/dither"
//		"github.com/flavioheleno/oled/hidconn"
//	)
//
//	func main() {
//		c, err := hidconn.Open(oled.VendorID, oled.ProductID, nil)
//		if err != nil {
//			panic(err)
//		}
//		defer c.Close()
//
//		dev, err := oled.New(c, nil)
//		if err != nil {
//			panic(err)
//		}
//		defer dev.Halt()
//
//		img := image.NewGray(dev.Bounds())
//		// ... draw into img ...
//		dev.DrawMono(dither.FloydSteinberg, img)
//	}
//
// # Drawing Modes
//
// ## Monochrome
//
// DrawMono converts the image to luminance, dithers it and sends it as
// pages. Pixels at or above half luminance are lit:
//
//	dev.DrawMono(dither.FloydSteinberg, img) // error diffusion
//	dev.DrawMono(dither.None, img)           // plain threshold
//
// ## Color
//
// DrawColor converts the image to RGB565 and sends it row by row:
//
//	dev.DrawColor(img)
//
// Both require the image to be exactly the size of the display. Use Draw to
// compose a smaller image onto a black screen with the defaults from Opts:
//
//	dev.Draw(image.Rect(0, 0, 32, 32), icon, image.Point{})
//
// # Telemetry
//
// The snapshot read by New is used for every draw until UpdateAttributes is
// called again:
//
//	a, _ := dev.UpdateAttributes()
//	fmt.Println(a.Clock.Time(time.Local), a.Rotation, dev.PowerLEDOn())
//
// # Keep-alive
//
// Run KeepAlive for as long as the display should show host content:
//
//	go dev.KeepAlive(ctx, time.Second)
//
// # Compatibility with periph.io
//
// Dev works over any periph.io conn.Conn, so conntest.Playback and
// conntest.Record can stand in for the device in tests.
package oled
