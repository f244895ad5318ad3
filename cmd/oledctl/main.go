// Command oledctl drives the chassis OLED display from the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/s00500/env_logger"
	"github.com/spf13/cobra"

	"github.com/flavioheleno/oled/config"
)

var (
	configPath string
	serial     string
	cfg        = config.Default()
)

func main() {
	cmd := &cobra.Command{
		Use:           "oledctl",
		Args:          cobra.ExactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadConfig()
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&serial, "serial", "", "Serial number of the device to open")

	cmd.AddCommand(statusCommand())
	cmd.AddCommand(drawCommand())
	cmd.AddCommand(watchCommand())
	cmd.AddCommand(framesCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() error {
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
	}
	if serial != "" {
		cfg.Device.Serial = serial
	}
	return nil
}
