// Package config holds the oledctl configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flavioheleno/oled"
	"github.com/flavioheleno/oled/hidconn"
)

type Config struct {
	Device DeviceConfig `yaml:"device"`
	Draw   DrawConfig   `yaml:"draw"`
	Watch  WatchConfig  `yaml:"watch"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	VendorID   uint16 `yaml:"vendor_id"`
	ProductID  uint16 `yaml:"product_id"`
	Serial     string `yaml:"serial"`      // empty = first device found
	ReportSize int    `yaml:"report_size"` // HID report length, report ID excluded

	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// ---- DRAW ----

type DrawConfig struct {
	Mode   string `yaml:"mode"`   // mono | color
	Dither string `yaml:"dither"` // floyd-steinberg | none
	Fit    string `yaml:"fit"`    // stretch | fill | fit
	Rotate int    `yaml:"rotate"` // degrees, clockwise
}

// ---- WATCH ----

type WatchConfig struct {
	KeepAlive time.Duration `yaml:"keep_alive"`
	Refresh   time.Duration `yaml:"refresh"`
}

const (
	ModeMono  = "mono"
	ModeColor = "color"

	FitStretch = "stretch"
	FitFill    = "fill"
	FitFit     = "fit"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			VendorID:    oled.VendorID,
			ProductID:   oled.ProductID,
			ReportSize:  hidconn.DefaultReportSize,
			ReadTimeout: hidconn.DefaultReadTimeout,
		},
		Draw: DrawConfig{
			Mode:   ModeMono,
			Dither: "floyd-steinberg",
			Fit:    FitFill,
		},
		Watch: WatchConfig{
			KeepAlive: time.Second,
			Refresh:   5 * time.Second,
		},
	}
}

// Load reads the file at path over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and normalizes the result.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	Normalize(cfg)
	return cfg, nil
}
