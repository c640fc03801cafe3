package maskedit

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func TestDecodeImageFormats(t *testing.T) {
	src := SolidBackground(4, 3, RGB{10, 20, 30})
	tests := []struct {
		format string
		encode func(*bytes.Buffer) error
	}{
		{"png", func(b *bytes.Buffer) error { return png.Encode(b, src) }},
		{"bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, src) }},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatal(err)
			}
			img, format, err := DecodeImage(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if format != tt.format {
				t.Errorf("format = %q, want %q", format, tt.format)
			}
			n := ToNRGBA(img)
			if n.Bounds() != image.Rect(0, 0, 4, 3) {
				t.Errorf("bounds = %v", n.Bounds())
			}
			if c := n.NRGBAAt(2, 1); c != (color.NRGBA{10, 20, 30, 255}) {
				t.Errorf("pixel = %v", c)
			}
		})
	}
}

func TestDecodeImageGarbage(t *testing.T) {
	if _, _, err := DecodeImage(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestToNRGBA(t *testing.T) {
	n := SolidBackground(4, 4, White)
	if ToNRGBA(n) != n {
		t.Error("qualifying NRGBA should be returned as is")
	}

	sub := n.SubImage(image.Rect(1, 1, 3, 4)).(*image.NRGBA)
	got := ToNRGBA(sub)
	if got == sub {
		t.Error("offset subimage should be copied")
	}
	if got.Bounds() != image.Rect(0, 0, 2, 3) {
		t.Errorf("bounds = %v", got.Bounds())
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	rgba.Set(1, 1, color.RGBA{0, 0, 128, 128})
	conv := ToNRGBA(rgba)
	if c := conv.NRGBAAt(1, 1); c.A != 128 || c.B != 255 {
		t.Errorf("converted pixel = %v, want straight alpha blue", c)
	}
}

func TestLoadBackground(t *testing.T) {
	st := newMemStorage()
	var buf bytes.Buffer
	if err := png.Encode(&buf, SolidBackground(8, 5, RGB{1, 2, 3})); err != nil {
		t.Fatal(err)
	}
	st.put("input", "", "bg.png", buf.Bytes())

	img, err := LoadBackground(context.Background(), st, "bg.png")
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 5 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	if _, err := LoadBackground(context.Background(), st, "missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
}

func TestScaleNRGBA(t *testing.T) {
	src := SolidBackground(40, 20, RGB{100, 150, 200})
	dst := ScaleNRGBA(src, 10, 5)
	if dst.Bounds() != image.Rect(0, 0, 10, 5) {
		t.Fatalf("bounds = %v", dst.Bounds())
	}
	c := dst.NRGBAAt(5, 2)
	if absDiff(c.R, 100) > 1 || absDiff(c.G, 150) > 1 || absDiff(c.B, 200) > 1 || c.A != 255 {
		t.Errorf("pixel = %v, want about {100 150 200 255}", c)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
