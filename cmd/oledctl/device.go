package main

import (
	"fmt"

	log "github.com/s00500/env_logger"

	"github.com/flavioheleno/oled"
	"github.com/flavioheleno/oled/config"
	"github.com/flavioheleno/oled/dither"
	"github.com/flavioheleno/oled/hidconn"
)

// openDevice opens the configured device and reads its telemetry. Closing
// the returned connection releases the device.
func openDevice(cfg *config.Config) (*oled.Dev, *hidconn.Conn, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	m, err := dither.ParseMethod(cfg.Draw.Dither)
	if err != nil {
		return nil, nil, err
	}

	c, err := hidconn.Open(cfg.Device.VendorID, cfg.Device.ProductID, &hidconn.Opts{
		Serial:      cfg.Device.Serial,
		ReportSize:  cfg.Device.ReportSize,
		ReadTimeout: cfg.Device.ReadTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	dev, err := oled.New(c, &oled.Opts{
		// Input reports come back with their report ID.
		ReportSize: cfg.Device.ReportSize + 1,
		Dither:     m,
		Color:      cfg.Draw.Mode == config.ModeColor,
	})
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("connecting to %s: %w", c, err)
	}
	log.Infof("connected to %s", dev)
	return dev, c, nil
}
