package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	log "github.com/s00500/env_logger"
	"github.com/spf13/cobra"

	"github.com/flavioheleno/oled/config"
	"github.com/flavioheleno/oled/dither"
	"github.com/flavioheleno/oled/frame"
	"github.com/flavioheleno/oled/telemetry"
)

var geometryFlags struct {
	width, height int
	maxLength     int
}

func framesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Encode or inspect frames without a device",
		Args:  cobra.ExactArgs(0),
	}

	encode := &cobra.Command{
		Use:   "encode IMAGE",
		Short: "Print the frames an image is sent as, one hex line each",
		Args:  cobra.ExactArgs(1),
		RunE:  encodeFrames,
	}
	encode.Flags().IntVar(&geometryFlags.width, "width", 128, "Display width in pixels")
	encode.Flags().IntVar(&geometryFlags.height, "height", 64, "Display height in pixels")
	encode.Flags().IntVar(&geometryFlags.maxLength, "max-length", 58, "Frame payload capacity in bytes")
	addDrawFlags(encode)

	cmd.AddCommand(encode)
	cmd.AddCommand(&cobra.Command{
		Use:   "decode [FILE]",
		Short: "Parse hex frame lines (or hidconn debug output) and print them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  decodeFrames,
	})

	return cmd
}

func encodeFrames(cmd *cobra.Command, args []string) error {
	if err := applyDrawFlags(cmd); err != nil {
		return err
	}
	g := geometryFlags
	if g.width <= 0 || g.height <= 0 || g.width > 0xFFFF || g.height > 0xFFFF || g.maxLength < 0 || g.maxLength > 0xFF {
		return fmt.Errorf("invalid geometry %dx%d, max length %d", g.width, g.height, g.maxLength)
	}
	a := telemetry.Attributes{
		Width:     uint16(g.width),
		Height:    uint16(g.height),
		MaxLength: uint8(g.maxLength),
	}

	src, err := loadImage(args[0])
	if err != nil {
		return err
	}
	img, err := prepareImage(src, image.Pt(g.width, g.height), cfg.Draw.Fit, cfg.Draw.Rotate)
	if err != nil {
		return err
	}

	var frames []frame.Frame
	if cfg.Draw.Mode == config.ModeColor {
		frames, err = frame.EncodeColor(img, a)
	} else {
		var m dither.Method
		if m, err = dither.ParseMethod(cfg.Draw.Dither); err == nil {
			frames, err = frame.EncodeMono(m, img, a)
		}
	}
	if err != nil {
		return err
	}
	return writeFrames(cmd.OutOrStdout(), frames)
}

func writeFrames(w io.Writer, frames []frame.Frame) error {
	for i := range frames {
		b, err := frames[i].MarshalBinary()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "% X\n", b); err != nil {
			return err
		}
	}
	return nil
}

func decodeFrames(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	name := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in, name = f, args[0]
	}

	frames, err := readFrames(in)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	out := cmd.OutOrStdout()
	bytesByOp := map[frame.Opcode]int{}
	for i := range frames {
		fmt.Fprintln(out, &frames[i])
		bytesByOp[frames[i].Opcode] += len(frames[i].Payload)
	}
	for _, op := range slices.Sorted(maps.Keys(bytesByOp)) {
		fmt.Fprintf(out, "%v: %d payload bytes\n", op, bytesByOp[op])
	}
	log.Debugf("decoded %d frames from %s", len(frames), name)
	return nil
}

// readFrames parses one frame per line. Blank lines, lines starting with #
// and single byte commands are skipped. In hidconn debug output only the
// bytes after "> " are read; replies ("< ") are skipped.
func readFrames(r io.Reader) ([]frame.Frame, error) {
	var frames []frame.Frame
	s := bufio.NewScanner(r)
	for line := 1; s.Scan(); line++ {
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.Contains(text, " < ") {
			continue
		}
		if i := strings.LastIndex(text, "> "); i >= 0 {
			text = text[i+2:]
		}
		b, err := hex.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(b) == 1 {
			continue
		}
		var f frame.Frame
		if err := f.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, f)
	}
	return frames, s.Err()
}
