package maskedit

import "time"

// defaultStrokeStep is the canvas distance between interpolated stamps.
const defaultStrokeStep = 2.0

// DefaultFitPadding is the margin, in container pixels, kept around a
// fitted canvas.
const DefaultFitPadding = 40.0

// EditorConfig holds the tunables of an editing session.
type EditorConfig struct {
	// Brush is the initial brush.
	Brush BrushSettings
	// FitPadding is subtracted from each container dimension when fitting.
	FitPadding float64
	// RedrawInterval throttles composites while a stroke is in progress.
	// Stroke end always composites regardless of the interval.
	RedrawInterval time.Duration
	// StrokeStep is the canvas distance between interpolated stamps.
	StrokeStep float64
	// WheelZoomIn and WheelZoomOut are the zoom factors for one wheel notch.
	WheelZoomIn, WheelZoomOut float64
	// ButtonZoomIn and ButtonZoomOut are the factors for ZoomIn and ZoomOut.
	ButtonZoomIn, ButtonZoomOut float64
	// ViewAnimation is the duration in seconds of animated fit and reset.
	// Zero applies view changes immediately.
	ViewAnimation float32
	// Background fills the presenter window around the canvas.
	Background RGB
	// Palette overrides LayerPalette for layer tints when non-empty. Layers
	// take Palette[ordinal mod len(Palette)].
	Palette []RGB
}

// DefaultEditorConfig returns the stock configuration.
func DefaultEditorConfig() EditorConfig {
	return EditorConfig{
		Brush:          DefaultBrush(),
		FitPadding:     DefaultFitPadding,
		RedrawInterval: 50 * time.Millisecond,
		StrokeStep:     defaultStrokeStep,
		WheelZoomIn:    1.1,
		WheelZoomOut:   0.9,
		ButtonZoomIn:   1.2,
		ButtonZoomOut:  0.8,
		Background:     RGB{0x2A, 0x2A, 0x2A},
	}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithConfig replaces the session configuration.
func WithConfig(cfg EditorConfig) SessionOption {
	return func(s *Session) { s.cfg = cfg }
}

// WithClock sets the time source used for redraw throttling and save
// filenames.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStorage sets where Save uploads masks.
func WithStorage(st Storage) SessionOption {
	return func(s *Session) { s.storage = st }
}

// WithNodeID names the host node the session edits. It becomes part of the
// saved filename.
func WithNodeID(id string) SessionOption {
	return func(s *Session) { s.nodeID = id }
}

// WithContainerSize sets the initial container size and fits the canvas
// into it.
func WithContainerSize(w, h float64) SessionOption {
	return func(s *Session) { s.containerW, s.containerH = w, h }
}
