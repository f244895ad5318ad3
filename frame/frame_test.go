package frame

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/flavioheleno/oled/dither"
	"github.com/flavioheleno/oled/image16bit"
	"github.com/flavioheleno/oled/image1bit"
	"github.com/flavioheleno/oled/telemetry"
)

func attrs(w, h uint16, l uint8) telemetry.Attributes {
	return telemetry.Attributes{Width: w, Height: h, MaxLength: l}
}

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestFrameMarshalBinary(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  []byte
	}{
		{
			"full payload",
			Frame{Opcode: OpMonoPage, MaxLength: 3, Origin: [2]byte{1, 2}, Payload: []byte{0xAA, 0xBB, 0xCC}},
			[]byte{0x03, 0x06, 0x01, 0x02, 0x03, 0xAA, 0xBB, 0xCC},
		},
		{
			"short payload is padded",
			Frame{Opcode: OpColor, MaxLength: 4, Origin: [2]byte{5, 6}, Payload: []byte{0x11}},
			[]byte{0x04, 0x07, 0x05, 0x06, 0x01, 0x11, 0x00, 0x00, 0x00},
		},
		{
			"empty payload",
			Frame{Opcode: OpColor, MaxLength: 2},
			[]byte{0x04, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.frame.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("MarshalBinary() = % X, want % X", got, tt.want)
			}
			if len(got) != tt.frame.Len() {
				t.Errorf("len = %d, Len() = %d", len(got), tt.frame.Len())
			}
		})
	}
}

func TestFrameMarshalBinaryErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"payload too long", Frame{Opcode: OpColor, MaxLength: 1, Payload: []byte{1, 2}}},
		{"max length overflows declared length", Frame{Opcode: OpColor, MaxLength: 253}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.frame.MarshalBinary(); !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("MarshalBinary() error = %v, want ErrMalformedFrame", err)
			}
		})
	}
}

func TestFrameUnmarshalBinary(t *testing.T) {
	in := Frame{Opcode: OpColor, MaxLength: 6, Origin: [2]byte{3, 4}, Payload: []byte{1, 2, 3}}
	b, err := in.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}

	var out Frame
	if err := out.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	if out.Opcode != in.Opcode || out.MaxLength != in.MaxLength || out.Origin != in.Origin || !bytes.Equal(out.Payload, in.Payload) {
		t.Errorf("UnmarshalBinary() = %v, want %v", &out, &in)
	}

	// Missing padding is accepted.
	if err := out.UnmarshalBinary(b[:HeaderSize+3]); err != nil {
		t.Errorf("UnmarshalBinary(unpadded) error = %v", err)
	}
}

func TestFrameUnmarshalBinaryErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"short header", []byte{0x03, 0x06, 0x00, 0x00}},
		{"declared length below overhead", []byte{0x03, 0x02, 0x00, 0x00, 0x00}},
		{"payload over max", []byte{0x03, 0x05, 0x00, 0x00, 0x03, 1, 2, 3}},
		{"truncated payload", []byte{0x03, 0x06, 0x00, 0x00, 0x03, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Frame
			if err := f.UnmarshalBinary(tt.in); !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("UnmarshalBinary(% X) error = %v, want ErrMalformedFrame", tt.in, err)
			}
		})
	}
}

func TestMonoOrigins(t *testing.T) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}

	frames, err := Mono(img, attrs(16, 16, 10))
	if err != nil {
		t.Fatalf("Mono() error = %v", err)
	}

	want := []struct {
		origin [2]byte
		n      int
	}{
		{[2]byte{0, 0}, 10},
		{[2]byte{0, 10}, 10}, // page 0 columns 10-15, page 1 columns 0-3
		{[2]byte{1, 4}, 10},
		{[2]byte{1, 14}, 2},
	}
	if len(frames) != len(want) {
		t.Fatalf("len(frames) = %d, want %d", len(frames), len(want))
	}
	for i, w := range want {
		f := frames[i]
		if f.Opcode != OpMonoPage {
			t.Errorf("frame %d opcode = %v, want mono-page", i, f.Opcode)
		}
		if f.Origin != w.origin || len(f.Payload) != w.n {
			t.Errorf("frame %d = %v, want origin %v with %d bytes", i, &f, w.origin, w.n)
		}
	}
	if got := Payload(frames); !bytes.Equal(got, img.Pix) {
		t.Errorf("Payload() = % X, want % X", got, img.Pix)
	}
}

func TestMonoDropsPartialPage(t *testing.T) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 4, 12))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	frames, err := Mono(img, attrs(4, 12, 32))
	if err != nil {
		t.Fatalf("Mono() error = %v", err)
	}
	if got := Payload(frames); !bytes.Equal(got, img.Pix[:4]) {
		t.Errorf("Payload() = % X, want only the first page", got)
	}
}

func TestColorOrigins(t *testing.T) {
	tests := []struct {
		name    string
		max     uint8
		origins [][2]byte
		sizes   []int
	}{
		{"even max", 6, [][2]byte{{0, 0}, {3, 0}, {2, 1}}, []int{6, 6, 4}},
		{"odd max never splits a pixel", 5, [][2]byte{{0, 0}, {2, 0}, {0, 1}, {2, 1}}, []int{4, 4, 4, 4}},
		{"minimum", 2, nil, []int{2, 2, 2, 2, 2, 2, 2, 2}},
	}

	src := image16bit.New(image.Rect(0, 0, 4, 2))
	for i := range src.Pix {
		src.Pix[i] = byte(i + 1)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, err := Color(src, attrs(4, 2, tt.max))
			if err != nil {
				t.Fatalf("Color() error = %v", err)
			}
			if len(frames) != len(tt.sizes) {
				t.Fatalf("len(frames) = %d, want %d", len(frames), len(tt.sizes))
			}
			for i, f := range frames {
				if f.Opcode != OpColor {
					t.Errorf("frame %d opcode = %v, want color", i, f.Opcode)
				}
				if len(f.Payload) != tt.sizes[i] {
					t.Errorf("frame %d payload = %d bytes, want %d", i, len(f.Payload), tt.sizes[i])
				}
				if tt.origins != nil && f.Origin != tt.origins[i] {
					t.Errorf("frame %d origin = %v, want %v", i, f.Origin, tt.origins[i])
				}
			}
			if got := Payload(frames); !bytes.Equal(got, src.Pix) {
				t.Errorf("Payload() = % X, want % X", got, src.Pix)
			}
		})
	}
}

func TestPacketizerInvariants(t *testing.T) {
	sizes := []struct{ w, h int }{{8, 8}, {16, 16}, {128, 64}, {37, 24}, {5, 3}}
	maxes := []uint8{1, 2, 3, 7, 8, 58, 63, 252}

	for _, s := range sizes {
		src := checker(s.w, s.h)
		for _, l := range maxes {
			a := attrs(uint16(s.w), uint16(s.h), l)

			rgb, err := EncodeColor(src, a)
			if l < 2 {
				if !errors.Is(err, ErrInvalidGeometry) {
					t.Errorf("%dx%d max %d: EncodeColor error = %v, want ErrInvalidGeometry", s.w, s.h, l, err)
				}
			} else {
				if err != nil {
					t.Fatalf("%dx%d max %d: EncodeColor error = %v", s.w, s.h, l, err)
				}
				checkFrames(t, rgb, l, image16bit.Convert(src).Pix)
			}

			mono, err := EncodeMono(dither.None, src, a)
			if err != nil {
				t.Fatalf("%dx%d max %d: EncodeMono error = %v", s.w, s.h, l, err)
			}
			m := dither.Threshold(src)
			checkFrames(t, mono, l, m.Pix[:s.w*(s.h/8)])
		}
	}
}

func checkFrames(t *testing.T, frames []Frame, l uint8, want []byte) {
	t.Helper()
	for i := range frames {
		f := &frames[i]
		if len(f.Payload) == 0 || len(f.Payload) > int(l) {
			t.Errorf("frame %d payload = %d bytes, max %d", i, len(f.Payload), l)
		}
		b, err := f.MarshalBinary()
		if err != nil {
			t.Fatalf("frame %d MarshalBinary() error = %v", i, err)
		}
		if b[1] != 3+l {
			t.Errorf("frame %d declared length = %d, want %d", i, b[1], 3+int(l))
		}
		if len(b) != HeaderSize+int(l) {
			t.Errorf("frame %d wire size = %d, want %d", i, len(b), HeaderSize+int(l))
		}
		if int(b[4]) != len(f.Payload) {
			t.Errorf("frame %d payload length byte = %d, want %d", i, b[4], len(f.Payload))
		}
	}
	if got := Payload(frames); !bytes.Equal(got, want) {
		t.Errorf("payloads do not reassemble the image: got %d bytes, want %d", len(got), len(want))
	}
}

func TestExactMaxLengthSingleFrame(t *testing.T) {
	// 8x8 mono is 8 bytes, 2x2 color is 8 bytes.
	mono, err := EncodeMono(dither.None, checker(8, 8), attrs(8, 8, 8))
	if err != nil {
		t.Fatalf("EncodeMono() error = %v", err)
	}
	if len(mono) != 1 || len(mono[0].Payload) != 8 {
		t.Errorf("mono frames = %d, want exactly one full frame", len(mono))
	}

	rgb, err := EncodeColor(checker(2, 2), attrs(2, 2, 8))
	if err != nil {
		t.Fatalf("EncodeColor() error = %v", err)
	}
	if len(rgb) != 1 || len(rgb[0].Payload) != 8 {
		t.Errorf("color frames = %d, want exactly one full frame", len(rgb))
	}
}

func TestMonoCheckerboardRoundTrip(t *testing.T) {
	const w, h = 24, 16
	src := checker(w, h)
	frames, err := EncodeMono(dither.None, src, attrs(w, h, 7))
	if err != nil {
		t.Fatalf("EncodeMono() error = %v", err)
	}

	// Rebuild the bitmap from the wire bytes only.
	pix := Payload(frames)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			got := pix[(y/8)*w+x]&(1<<uint(y%8)) != 0
			want := (x+y)%2 == 0
			if got != want {
				t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if pix[0] != 0x55 || pix[1] != 0xAA {
		t.Errorf("first columns = 0x%02X 0x%02X, want 0x55 0xAA (top row is LSB)", pix[0], pix[1])
	}
}

func TestColorWhiteAndBlack(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.White)
	src.Set(1, 0, color.Black)
	frames, err := EncodeColor(src, attrs(2, 1, 58))
	if err != nil {
		t.Fatalf("EncodeColor() error = %v", err)
	}
	if want := []byte{0xFF, 0xFF, 0x00, 0x00}; !bytes.Equal(Payload(frames), want) {
		t.Errorf("Payload() = % X, want % X", Payload(frames), want)
	}
}

func TestEncodeErrors(t *testing.T) {
	src := checker(8, 8)

	tests := []struct {
		name string
		err  error
		fn   func() error
	}{
		{"mono size mismatch", ErrDimensionMismatch, func() error {
			_, err := EncodeMono(dither.FloydSteinberg, src, attrs(16, 8, 8))
			return err
		}},
		{"color size mismatch", ErrDimensionMismatch, func() error {
			_, err := EncodeColor(src, attrs(8, 16, 8))
			return err
		}},
		{"unknown dither", ErrUnsupportedMode, func() error {
			_, err := EncodeMono(dither.Method(42), src, attrs(8, 8, 8))
			return err
		}},
		{"zero max length", ErrInvalidGeometry, func() error {
			_, err := EncodeMono(dither.None, src, attrs(8, 8, 0))
			return err
		}},
		{"max length overflows", ErrInvalidGeometry, func() error {
			_, err := EncodeColor(src, attrs(8, 8, 253))
			return err
		}},
		{"too wide for byte origins", ErrInvalidGeometry, func() error {
			_, err := EncodeColor(checker(300, 1), attrs(300, 1, 58))
			return err
		}},
		{"unknown pixel format", ErrUnsupportedMode, func() error {
			_, err := Encode(src, attrs(8, 8, 8))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestEncodeDispatch(t *testing.T) {
	a := attrs(8, 8, 8)

	mono, err := Encode(image1bit.NewVerticalLSB(image.Rect(0, 0, 8, 8)), a)
	if err != nil || len(mono) != 1 || mono[0].Opcode != OpMonoPage {
		t.Errorf("Encode(VerticalLSB) = %v, %v", mono, err)
	}

	rgb, err := Encode(image16bit.New(image.Rect(0, 0, 8, 8)), a)
	if err != nil || len(rgb) != 16 || rgb[0].Opcode != OpColor {
		t.Errorf("Encode(image16bit) = %d frames, %v", len(rgb), err)
	}
}

func TestOpcodeString(t *testing.T) {
	if OpKeepAlive.String() != "keep-alive" || Opcode(0x7F).String() != "opcode(0x7F)" {
		t.Errorf("unexpected opcode names %q %q", OpKeepAlive, Opcode(0x7F))
	}
}
