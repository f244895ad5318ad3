package main

import (
	"context"
	"errors"
	"time"

	log "github.com/s00500/env_logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/flavioheleno/oled"
	"github.com/flavioheleno/oled/telemetry"
)

var watchFlags struct {
	keepAlive, refresh time.Duration
}

func watchCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "watch [IMAGE]",
		Short: "Keep the display on host content and log telemetry changes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watch,
	}
	cmd.Flags().DurationVar(&watchFlags.keepAlive, "keep-alive", 0, "Keep-alive interval (default from config)")
	cmd.Flags().DurationVar(&watchFlags.refresh, "refresh", 0, "Telemetry refresh interval (default from config)")
	addDrawFlags(&cmd)

	return &cmd
}

func watch(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("keep-alive") {
		cfg.Watch.KeepAlive = watchFlags.keepAlive
	}
	if cmd.Flags().Changed("refresh") {
		cfg.Watch.Refresh = watchFlags.refresh
	}
	if err := applyDrawFlags(cmd); err != nil {
		return err
	}

	dev, c, err := openDevice(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	defer dev.Halt()

	if len(args) == 1 {
		if err := drawImage(dev, args[0]); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return dev.KeepAlive(ctx, cfg.Watch.KeepAlive) })
	g.Go(func() error { return refreshAttributes(ctx, dev, cfg.Watch.Refresh) })

	if err := g.Wait(); !errors.Is(err, context.Canceled) {
		return err
	}
	log.Infof("stopped")
	return nil
}

// refreshAttributes polls telemetry until ctx is done. Failed polls are
// logged and retried on the next tick.
func refreshAttributes(ctx context.Context, dev *oled.Dev, interval time.Duration) error {
	prev, _ := dev.Attributes()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		a, err := dev.UpdateAttributes()
		if errors.Is(err, oled.ErrHalted) {
			return err
		}
		if err != nil {
			log.Warnf("refreshing telemetry: %v", err)
			continue
		}
		for _, change := range attributeChanges(prev, a) {
			log.Infof("%s", change)
		}
		prev = a
	}
}

// attributeChanges describes the user visible differences between two
// snapshots.
func attributeChanges(prev, next telemetry.Attributes) []string {
	var out []string
	add := func(changed bool, msg string) {
		if changed {
			out = append(out, msg)
		}
	}
	add(prev.Rotation != next.Rotation, "rotation "+prev.Rotation.String()+" -> "+next.Rotation.String())
	add(prev.Mode != next.Mode, "mode "+prev.Mode.String()+" -> "+next.Mode.String())
	add(prev.CanvasControl != next.CanvasControl, "canvas control "+prev.CanvasControl.String()+" -> "+next.CanvasControl.String())
	add(prev.LEDs.Power != next.LEDs.Power, onOff("power led", next.LEDs.Power))
	add(prev.LEDs.Chassis != next.LEDs.Chassis, onOff("chassis led", next.LEDs.Chassis))
	add(prev.Width != next.Width || prev.Height != next.Height, "display geometry changed")
	return out
}

func onOff(name string, on bool) string {
	if on {
		return name + " on"
	}
	return name + " off"
}
