package main

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/gift"

	"github.com/flavioheleno/oled/config"
)

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// prepareImage rotates src clockwise by rotate degrees and scales it to
// size according to fit. Letterboxed areas are black.
func prepareImage(src image.Image, size image.Point, fit string, rotate int) (image.Image, error) {
	var filters []gift.Filter
	switch rotate {
	case 0:
	case 90:
		filters = append(filters, gift.Rotate270())
	case 180:
		filters = append(filters, gift.Rotate180())
	case 270:
		filters = append(filters, gift.Rotate90())
	default:
		return nil, fmt.Errorf("unsupported rotation %d", rotate)
	}

	switch fit {
	case config.FitStretch:
		filters = append(filters, gift.Resize(size.X, size.Y, gift.LanczosResampling))
	case config.FitFill:
		filters = append(filters, gift.ResizeToFill(size.X, size.Y, gift.LanczosResampling, gift.CenterAnchor))
	case config.FitFit:
		filters = append(filters, gift.ResizeToFit(size.X, size.Y, gift.LanczosResampling))
	default:
		return nil, fmt.Errorf("unsupported fit %q", fit)
	}

	g := gift.New(filters...)
	scaled := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(scaled, src)
	if scaled.Rect.Size() == size {
		return scaled, nil
	}

	out := image.NewNRGBA(image.Rectangle{Max: size})
	draw.Draw(out, out.Rect, image.Black, image.Point{}, draw.Src)
	off := size.Sub(scaled.Rect.Size()).Div(2)
	draw.Draw(out, scaled.Rect.Add(off), scaled, image.Point{}, draw.Over)
	return out, nil
}
