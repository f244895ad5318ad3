package config

import (
	"fmt"

	"github.com/flavioheleno/oled/dither"
	"github.com/flavioheleno/oled/telemetry"
)

const (
	// A telemetry response is a 4 byte header, report ID included, followed
	// by the payload. report_size does not count the report ID.
	minReportSize = 4 + telemetry.Size - 1
	maxReportSize = 1024
)

// Validate checks configuration correctness. It does not modify cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: missing")
	}

	d := cfg.Device
	if d.VendorID == 0 || d.ProductID == 0 {
		return fmt.Errorf("device: vendor_id and product_id must be set, got %04x:%04x", d.VendorID, d.ProductID)
	}
	if d.ReportSize < minReportSize || d.ReportSize > maxReportSize {
		return fmt.Errorf("device: report_size %d out of range [%d, %d]", d.ReportSize, minReportSize, maxReportSize)
	}
	if d.ReadTimeout <= 0 {
		return fmt.Errorf("device: read_timeout must be positive, got %v", d.ReadTimeout)
	}

	switch cfg.Draw.Mode {
	case ModeMono, ModeColor:
	default:
		return fmt.Errorf("draw: unknown mode %q", cfg.Draw.Mode)
	}
	if _, err := dither.ParseMethod(cfg.Draw.Dither); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	switch cfg.Draw.Fit {
	case FitStretch, FitFill, FitFit:
	default:
		return fmt.Errorf("draw: unknown fit %q", cfg.Draw.Fit)
	}
	switch cfg.Draw.Rotate {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("draw: rotate must be a multiple of 90, got %d", cfg.Draw.Rotate)
	}

	if cfg.Watch.KeepAlive <= 0 {
		return fmt.Errorf("watch: keep_alive must be positive, got %v", cfg.Watch.KeepAlive)
	}
	if cfg.Watch.Refresh <= 0 {
		return fmt.Errorf("watch: refresh must be positive, got %v", cfg.Watch.Refresh)
	}
	return nil
}
