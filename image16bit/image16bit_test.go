package image16bit

import (
	"image"
	"image/color"
	"testing"
)

func TestFromRGBBytes(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    [2]byte
	}{
		{"white", 255, 255, 255, [2]byte{0xFF, 0xFF}},
		{"black", 0, 0, 0, [2]byte{0x00, 0x00}},
		{"red", 255, 0, 0, [2]byte{0x00, 0xF8}},
		{"green", 0, 255, 0, [2]byte{0xE0, 0x07}},
		{"blue", 0, 0, 255, [2]byte{0x1F, 0x00}},
		{"mixed", 128, 64, 200, [2]byte{0xF8, 0x79}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromRGB(tt.r, tt.g, tt.b).Bytes(); got != tt.want {
				t.Errorf("FromRGB(%d, %d, %d).Bytes() = % X, want % X", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestFromRGBTruncates(t *testing.T) {
	// Scaling truncates: only 255 reaches the top of each field.
	for v := 0; v < 256; v++ {
		r5, g6, b5 := FromRGB(uint8(v), uint8(v), uint8(v)).Components()
		if want := uint8(v * 31 / 255); r5 != want || b5 != want {
			t.Fatalf("value %d: r5=%d b5=%d, want %d", v, r5, b5, want)
		}
		if want := uint8(v * 63 / 255); g6 != want {
			t.Fatalf("value %d: g6=%d, want %d", v, g6, want)
		}
	}
}

func TestRGB565RGBA(t *testing.T) {
	r, g, b, a := RGB565(0xFFFF).RGBA()
	if r != 0xFFFF || g != 0xFFFF || b != 0xFFFF || a != 0xFFFF {
		t.Errorf("RGBA() = (%x, %x, %x, %x), want all ffff", r, g, b, a)
	}
	r, g, b, _ = RGB565(0).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("RGBA() = (%x, %x, %x), want zero", r, g, b)
	}
}

func TestRGB565ModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  RGB565
	}{
		{"passthrough", RGB565(0x1234), RGB565(0x1234)},
		{"white", color.White, RGB565(0xFFFF)},
		{"black", color.Black, RGB565(0)},
		{"nrgba red", color.NRGBA{255, 0, 0, 255}, RGB565(0xF800)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RGB565Model.Convert(tt.input).(RGB565); got != tt.want {
				t.Errorf("Convert(%v) = 0x%04X, want 0x%04X", tt.input, uint16(got), uint16(tt.want))
			}
		})
	}
}

func TestImageLayout(t *testing.T) {
	img := New(image.Rect(0, 0, 2, 2))
	if img.Stride != 4 || len(img.Pix) != 8 {
		t.Fatalf("Stride = %d, len(Pix) = %d, want 4, 8", img.Stride, len(img.Pix))
	}

	img.Set(1, 0, color.White)
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})

	want := []byte{0, 0, 0xFF, 0xFF, 0x1F, 0x00, 0, 0}
	for i, b := range want {
		if img.Pix[i] != b {
			t.Errorf("Pix[%d] = 0x%02X, want 0x%02X", i, img.Pix[i], b)
		}
	}
	if got := img.RGB565At(1, 0); got != 0xFFFF {
		t.Errorf("RGB565At(1, 0) = 0x%04X, want 0xFFFF", uint16(got))
	}
}

func TestImageOutOfBounds(t *testing.T) {
	img := New(image.Rect(0, 0, 2, 2))
	img.SetRGB565(2, 0, 0xFFFF)
	img.SetRGB565(0, -1, 0xFFFF)
	for i, b := range img.Pix {
		if b != 0 {
			t.Errorf("Pix[%d] = 0x%02X, want 0", i, b)
		}
	}
	if img.RGB565At(5, 5) != 0 {
		t.Error("out of bounds read should be zero")
	}
}

func TestConvert(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	src.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	src.Set(2, 0, color.NRGBA{255, 255, 255, 255})

	dst := Convert(src)
	if dst.Bounds() != src.Bounds() {
		t.Fatalf("Bounds() = %v, want %v", dst.Bounds(), src.Bounds())
	}
	want := []byte{0x00, 0xF8, 0x00, 0x00, 0xFF, 0xFF}
	for i, b := range want {
		if dst.Pix[i] != b {
			t.Errorf("Pix[%d] = 0x%02X, want 0x%02X", i, dst.Pix[i], b)
		}
	}
	if Convert(dst) != dst {
		t.Error("Convert(*Image) should return its argument")
	}
}
