package maskedit

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Screenshot queues a labeled capture of the composite, written at the end
// of the next Update to ScreenshotDir with a timestamped filename.
func (s *Session) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// flushScreenshots writes the composite once for every queued label.
// Called at the end of Session.Update.
func (s *Session) flushScreenshots() {
	if len(s.screenshotQueue) == 0 {
		return
	}
	defer func() { s.screenshotQueue = s.screenshotQueue[:0] }()

	if err := os.MkdirAll(s.ScreenshotDir, 0o755); err != nil {
		Logger().Warn("screenshot: mkdir", "dir", s.ScreenshotDir, "err", err)
		return
	}
	if s.redrawPending {
		s.Redraw()
	}
	stamp := s.now().Format("20060102_150405")
	for _, label := range s.screenshotQueue {
		path := filepath.Join(s.ScreenshotDir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, s.composite); err != nil {
			Logger().Warn("screenshot", "err", err)
		}
	}
}

// ExportPNG encodes img as PNG.
func ExportPNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportMasks writes every layer of the store as a grayscale PNG named
// <prefix>_layer_<i>.png in dir and returns the paths written.
func ExportMasks(dir, prefix string, store *LayerStore) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export masks: %w", err)
	}
	prefix = sanitizeLabel(prefix)
	paths := make([]string, 0, store.Len())
	for i, l := range store.Layers() {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, LayerKey(i)))
		if err := writePNG(path, l.Gray()); err != nil {
			return paths, fmt.Errorf("export masks: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

