package main

import (
	"fmt"

	log "github.com/s00500/env_logger"
	"github.com/spf13/cobra"

	"github.com/flavioheleno/oled"
	"github.com/flavioheleno/oled/config"
	"github.com/flavioheleno/oled/dither"
)

var drawFlags struct {
	mode, dither, fit string
	rotate            int
}

func addDrawFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&drawFlags.mode, "mode", "", "Frame format: mono or color (default from config)")
	cmd.Flags().StringVar(&drawFlags.dither, "dither", "", "Mono conversion: floyd-steinberg or none (default from config)")
	cmd.Flags().StringVar(&drawFlags.fit, "fit", "", "Scaling: stretch, fill or fit (default from config)")
	cmd.Flags().IntVar(&drawFlags.rotate, "rotate", -1, "Clockwise rotation in degrees (default from config)")
}

// applyDrawFlags overrides the configuration with the flags that were set.
func applyDrawFlags(cmd *cobra.Command) error {
	if cmd.Flags().Changed("mode") {
		cfg.Draw.Mode = drawFlags.mode
	}
	if cmd.Flags().Changed("dither") {
		cfg.Draw.Dither = drawFlags.dither
	}
	if cmd.Flags().Changed("fit") {
		cfg.Draw.Fit = drawFlags.fit
	}
	if cmd.Flags().Changed("rotate") {
		cfg.Draw.Rotate = drawFlags.rotate
	}
	config.Normalize(cfg)
	return config.Validate(cfg)
}

func drawCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "draw IMAGE",
		Short: "Show an image file on the display",
		Args:  cobra.ExactArgs(1),
		RunE:  drawFile,
	}
	addDrawFlags(&cmd)

	return &cmd
}

func drawFile(cmd *cobra.Command, args []string) error {
	if err := applyDrawFlags(cmd); err != nil {
		return err
	}
	dev, c, err := openDevice(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	defer dev.Halt()

	return drawImage(dev, args[0])
}

// drawImage scales the image at path to the display and sends it.
func drawImage(dev *oled.Dev, path string) error {
	src, err := loadImage(path)
	if err != nil {
		return err
	}
	img, err := prepareImage(src, dev.Bounds().Size(), cfg.Draw.Fit, cfg.Draw.Rotate)
	if err != nil {
		return err
	}

	if cfg.Draw.Mode == config.ModeColor {
		err = dev.DrawColor(img)
	} else {
		var m dither.Method
		if m, err = dither.ParseMethod(cfg.Draw.Dither); err == nil {
			err = dev.DrawMono(m, img)
		}
	}
	if err != nil {
		return fmt.Errorf("drawing %s: %w", path, err)
	}
	log.Infof("drew %s (%s, %s) on %s", path, cfg.Draw.Mode, cfg.Draw.Fit, dev)
	return nil
}
