package maskedit

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is an opaque 8-bit color used for layer tints.
type RGB struct {
	R, G, B uint8
}

// White is the fallback tint when a hex color cannot be parsed.
var White = RGB{255, 255, 255}

// ParseHexRGB parses a "#RRGGBB" (or "RRGGBB") color string.
func ParseHexRGB(s string) (RGB, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return White, fmt.Errorf("parse color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return White, fmt.Errorf("parse color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ParsePalette parses a comma-separated list of hex colors, such as
// "#FF6B6B,#4ECDC4". An empty string yields a nil palette.
func ParsePalette(s string) ([]RGB, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []RGB
	for _, part := range strings.Split(s, ",") {
		c, err := ParseHexRGB(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Hex returns the color as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// The right and bottom edges are excluded so that a canvas of width w
// accepts x in [0, w).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width &&
		y >= r.Y && y < r.Y+r.Height
}

// EventType identifies a kind of session event.
type EventType uint8

const (
	EventStrokeBegin   EventType = iota // fires when a paint stroke starts
	EventStrokeEnd                      // fires when a paint stroke ends (after the final composite)
	EventRedraw                         // fires after every composite
	EventLayersChanged                  // fires when layers are added, cleared, filled, shown or hidden, or the active layer changes
	EventViewChanged                    // fires when zoom or pan changes
	EventSaved                          // fires after masks were persisted
	EventClosed                         // fires once when the session closes
)

// String returns a short name for the event type.
func (e EventType) String() string {
	switch e {
	case EventStrokeBegin:
		return "stroke_begin"
	case EventStrokeEnd:
		return "stroke_end"
	case EventRedraw:
		return "redraw"
	case EventLayersChanged:
		return "layers_changed"
	case EventViewChanged:
		return "view_changed"
	case EventSaved:
		return "saved"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Key identifies the keys the session reacts to directly.
type Key uint8

const (
	KeySpace  Key = iota // holds the pan modifier
	KeyEscape            // cancels the session
)
