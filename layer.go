package maskedit

import (
	"fmt"
	"image"
)

const (
	// MaxLayers is the largest number of layers a session may hold.
	MaxLayers = 10
	// DefaultLayers is used when the host does not provide a layer count.
	DefaultLayers = 5
)

// LayerPalette assigns display colors to layers by ordinal, cycling when a
// session holds more layers than colors.
var LayerPalette = [...]RGB{
	{0xFF, 0x6B, 0x6B},
	{0x4E, 0xCD, 0xC4},
	{0x45, 0xB7, 0xD1},
	{0x96, 0xCE, 0xB4},
	{0xFF, 0xEA, 0xA7},
	{0xDD, 0xA1, 0x5E},
	{0xC0, 0x84, 0xFC},
	{0xFB, 0x56, 0x07},
	{0x83, 0x38, 0xEC},
	{0x06, 0xFF, 0xA5},
}

// PaletteColor returns the palette color for the given layer ordinal.
func PaletteColor(ordinal int) RGB {
	n := len(LayerPalette)
	return LayerPalette[((ordinal%n)+n)%n]
}

// Layer is one paintable mask. Only the alpha channel carries data; when
// viewed as a raster the color channels are opaque white.
type Layer struct {
	// Name is the display name ("Layer 1", "Layer 2", ...).
	Name string
	// Color tints the layer in the composite.
	Color RGB
	// Visible controls inclusion in the composite. Hidden layers keep their data.
	Visible bool

	index  int
	width  int
	height int
	alpha  []uint8
}

// NewLayer allocates a fully transparent layer. The ordinal selects the
// display name and palette color.
func NewLayer(width, height, ordinal int) *Layer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Layer{
		Name:    fmt.Sprintf("Layer %d", ordinal+1),
		Color:   PaletteColor(ordinal),
		Visible: true,
		index:   ordinal,
		width:   width,
		height:  height,
		alpha:   make([]uint8, width*height),
	}
}

// Index returns the layer's ordinal within its store.
func (l *Layer) Index() int { return l.index }

// Width returns the layer width in pixels.
func (l *Layer) Width() int { return l.width }

// Height returns the layer height in pixels.
func (l *Layer) Height() int { return l.height }

// Bounds returns the layer rectangle.
func (l *Layer) Bounds() image.Rectangle { return image.Rect(0, 0, l.width, l.height) }

// Alpha returns the row-major alpha buffer. The slice is shared with the layer.
func (l *Layer) Alpha() []uint8 { return l.alpha }

// AlphaAt returns the alpha value at (x, y), or 0 outside the layer.
func (l *Layer) AlphaAt(x, y int) uint8 {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return 0
	}
	return l.alpha[y*l.width+x]
}

// SetAlphaAt sets the alpha value at (x, y). Out-of-range writes are ignored.
func (l *Layer) SetAlphaAt(x, y int, a uint8) {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return
	}
	l.alpha[y*l.width+x] = a
}

// Clear resets the layer to fully transparent.
func (l *Layer) Clear() {
	clear(l.alpha)
}

// Fill sets every alpha value to 255 in paint mode or 0 in erase mode.
func (l *Layer) Fill(mode BrushMode) {
	if mode == BrushErase {
		l.Clear()
		return
	}
	for i := range l.alpha {
		l.alpha[i] = 255
	}
}

// IsEmpty reports whether every alpha value is zero.
func (l *Layer) IsEmpty() bool {
	for _, a := range l.alpha {
		if a != 0 {
			return false
		}
	}
	return true
}

// RGBA returns the layer as a straight-alpha raster: white color channels
// with the layer alpha.
func (l *Layer) RGBA() *image.NRGBA {
	img := image.NewNRGBA(l.Bounds())
	for i, a := range l.alpha {
		j := i * 4
		img.Pix[j] = 255
		img.Pix[j+1] = 255
		img.Pix[j+2] = 255
		img.Pix[j+3] = a
	}
	return img
}

// Gray returns the alpha channel as a grayscale image, the form masks take
// when exported.
func (l *Layer) Gray() *image.Gray {
	img := image.NewGray(l.Bounds())
	copy(img.Pix, l.alpha)
	return img
}
