package config

import "strings"

// Normalize fills fields left empty with their defaults and lowercases the
// names. It never rejects a value; that is Validate's job.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	def := Default()

	if cfg.Device.VendorID == 0 && cfg.Device.ProductID == 0 {
		cfg.Device.VendorID = def.Device.VendorID
		cfg.Device.ProductID = def.Device.ProductID
	}
	if cfg.Device.ReportSize == 0 {
		cfg.Device.ReportSize = def.Device.ReportSize
	}
	if cfg.Device.ReadTimeout == 0 {
		cfg.Device.ReadTimeout = def.Device.ReadTimeout
	}

	cfg.Draw.Mode = strings.ToLower(strings.TrimSpace(cfg.Draw.Mode))
	if cfg.Draw.Mode == "" {
		cfg.Draw.Mode = def.Draw.Mode
	}
	cfg.Draw.Dither = strings.ToLower(strings.TrimSpace(cfg.Draw.Dither))
	if cfg.Draw.Dither == "" {
		cfg.Draw.Dither = def.Draw.Dither
	}
	cfg.Draw.Fit = strings.ToLower(strings.TrimSpace(cfg.Draw.Fit))
	if cfg.Draw.Fit == "" {
		cfg.Draw.Fit = def.Draw.Fit
	}
	// -90 is 270
	cfg.Draw.Rotate = ((cfg.Draw.Rotate % 360) + 360) % 360

	if cfg.Watch.KeepAlive == 0 {
		cfg.Watch.KeepAlive = def.Watch.KeepAlive
	}
	if cfg.Watch.Refresh == 0 {
		cfg.Watch.Refresh = def.Watch.Refresh
	}
}
