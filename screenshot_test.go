package maskedit

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-stroke", "after-stroke"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	s, _, _ := newTestSession(t, 4, 4)
	s.Screenshot("a")
	s.Screenshot("b")
	s.Screenshot("c")
	if len(s.screenshotQueue) != 3 {
		t.Fatalf("queue len = %d, want 3", len(s.screenshotQueue))
	}
	if s.screenshotQueue[0] != "a" || s.screenshotQueue[1] != "b" || s.screenshotQueue[2] != "c" {
		t.Errorf("queue = %v, want [a b c]", s.screenshotQueue)
	}
}

func TestScreenshotDirDefault(t *testing.T) {
	s, _, _ := newTestSession(t, 4, 4)
	if s.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q, want %q", s.ScreenshotDir, "screenshots")
	}
}

func TestScreenshotFlushWritesComposite(t *testing.T) {
	s, clock, _ := newTestSession(t, 6, 4)
	s.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	if err := s.FillActiveLayer(); err != nil {
		t.Fatal(err)
	}

	s.Screenshot("filled layer")
	s.Update(1.0 / 60)
	if len(s.screenshotQueue) != 0 {
		t.Fatalf("queue should drain, got %v", s.screenshotQueue)
	}

	want := filepath.Join(s.ScreenshotDir, clock.t.Format("20060102_150405")+"_filled_layer.png")
	f, err := os.Open(want)
	if err != nil {
		t.Fatalf("screenshot not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 6, 4) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	r, _, _, _ := img.At(0, 0).RGBA()
	if uint8(r>>8) != s.Composite().Pix[0] {
		t.Errorf("R = %d, want %d", r>>8, s.Composite().Pix[0])
	}
}

func TestExportPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportPNG(&buf, SolidBackground(3, 2, RGB{1, 2, 3})); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestExportMasks(t *testing.T) {
	store := NewLayerStore(5, 5, 3)
	store.Layers()[2].SetAlphaAt(1, 2, 77)
	dir := t.TempDir()

	paths, err := ExportMasks(dir, "node 9", store)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %d, want 3", len(paths))
	}
	if !strings.HasSuffix(paths[2], "node_9_layer_2.png") {
		t.Errorf("path = %q", paths[2])
	}
	f, err := os.Open(paths[2])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("decoded %T, want *image.Gray", img)
	}
	if got := g.GrayAt(1, 2).Y; got != 77 {
		t.Errorf("gray = %d, want 77", got)
	}
}
