package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flavioheleno/oled/hidconn"
)

var listDevices = false

func statusCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "status",
		Short: "Print the display telemetry",
		Args:  cobra.ExactArgs(0),
		RunE:  status,
	}
	cmd.Flags().BoolVar(&listDevices, "list", listDevices, "List attached devices instead")

	return &cmd
}

func status(_ *cobra.Command, _ []string) error {
	if listDevices {
		infos := hidconn.Devices(cfg.Device.VendorID, cfg.Device.ProductID)
		if len(infos) == 0 {
			return hidconn.ErrNotFound
		}
		for _, i := range infos {
			fmt.Println(i)
		}
		return nil
	}

	dev, c, err := openDevice(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	defer dev.Halt()

	a, err := dev.Attributes()
	if err != nil {
		return err
	}
	fmt.Printf("display:     %dx%d, %d bytes per frame\n", a.Width, a.Height, a.MaxLength)
	fmt.Printf("canvas:      %v, controlled by %v\n", a.Rotation, a.CanvasControl)
	fmt.Printf("mode:        %v\n", a.Mode)
	fmt.Printf("clock:       %s\n", a.Clock.Time(time.Local).Format(time.DateTime))
	fmt.Printf("background:  #%02x%02x%02x, color setting 0x%04x\n", a.Background.R, a.Background.G, a.Background.B, a.ColorSetting)
	fmt.Printf("volume:      %d, show time %v\n", a.Volume, a.ShowTime)
	fmt.Printf("buttons:     delay %v, rate %d\n", a.ButtonRepeatDelay, a.ButtonRepeatRate)
	fmt.Printf("motion:      initialized %v, accel %v, angle %v\n", a.Motion.Initialized, a.Motion.Accel, a.Motion.Angle)
	fmt.Printf("leds:        power %v, chassis %v, laser beam %v\n", dev.PowerLEDOn(), dev.ChassisLEDOn(), a.LEDs.LaserBeam)
	fmt.Printf("bus traffic: 0x%02x\n", a.BusTrafficStatus)
	return nil
}
