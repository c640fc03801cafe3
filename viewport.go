package maskedit

import (
	"fmt"
	"math"
)

const (
	// MinZoom and MaxZoom bound Viewport.Zoom.
	MinZoom = 0.1
	MaxZoom = 10.0
)

// Viewport maps between screen and canvas coordinates under pan and zoom:
//
//	container = canvas*Zoom + Pan
//
// "Screen" coordinates are relative to the transformed canvas origin, the
// way a pointer is read against an element that already carries the pan
// translation. "Container" coordinates are relative to the untransformed
// container that hosts the canvas.
type Viewport struct {
	// Zoom is the scale factor, kept within [MinZoom, MaxZoom].
	Zoom float64
	// PanX and PanY translate the scaled canvas inside its container.
	PanX, PanY float64

	anim *ViewTween
}

// NewViewport returns an identity viewport.
func NewViewport() *Viewport {
	return &Viewport{Zoom: 1}
}

// ScreenToCanvas converts a point relative to the transformed canvas origin
// to canvas coordinates.
func (v *Viewport) ScreenToCanvas(sx, sy float64) (cx, cy float64) {
	return sx / v.Zoom, sy / v.Zoom
}

// CanvasToScreen is the inverse of ScreenToCanvas.
func (v *Viewport) CanvasToScreen(cx, cy float64) (sx, sy float64) {
	return cx * v.Zoom, cy * v.Zoom
}

// ContainerToCanvas converts a container point to canvas coordinates.
func (v *Viewport) ContainerToCanvas(x, y float64) (cx, cy float64) {
	return affine(v.InverseViewMatrix()).apply(x, y)
}

// CanvasToContainer converts a canvas point to container coordinates.
func (v *Viewport) CanvasToContainer(cx, cy float64) (x, y float64) {
	return affine(v.ViewMatrix()).apply(cx, cy)
}

// ViewMatrix returns the canvas-to-container affine matrix
// Translate(PanX, PanY) * Scale(Zoom).
func (v *Viewport) ViewMatrix() [6]float64 {
	return viewAffine(v.Zoom, v.PanX, v.PanY)
}

// InverseViewMatrix returns the container-to-canvas affine matrix.
func (v *Viewport) InverseViewMatrix() [6]float64 {
	return viewAffine(v.Zoom, v.PanX, v.PanY).inverse()
}

// ZoomAt multiplies the zoom by factor, clamped to [MinZoom, MaxZoom], and
// shifts the pan so the canvas point under the screen point (sx, sy) stays
// under it. It reports whether the zoom changed; when the clamp leaves the
// zoom unchanged the viewport is not modified.
func (v *Viewport) ZoomAt(sx, sy, factor float64) bool {
	newZoom := clampZoom(v.Zoom * factor)
	if newZoom == v.Zoom {
		return false
	}
	cx, cy := v.ScreenToCanvas(sx, sy)
	v.Zoom = newZoom
	v.PanX += sx - cx*newZoom
	v.PanY += sy - cy*newZoom
	return true
}

// ZoomBy zooms about the center of a cw x ch container.
func (v *Viewport) ZoomBy(factor, cw, ch float64) bool {
	return v.ZoomAt(cw/2-v.PanX, ch/2-v.PanY, factor)
}

// Pan moves the canvas by (dx, dy) container pixels.
func (v *Viewport) Pan(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// FitToContainer scales a w x h canvas to fit inside a cw x ch container
// less padding, never enlarging beyond 1:1, and centers it.
func (v *Viewport) FitToContainer(cw, ch float64, w, h int, padding float64) {
	v.Zoom, v.PanX, v.PanY = fitView(cw, ch, w, h, padding)
}

// ResetToIdentity sets the zoom to 1 and centers a w x h canvas in the
// container.
func (v *Viewport) ResetToIdentity(cw, ch float64, w, h int) {
	v.Zoom = 1
	v.PanX, v.PanY = centerPan(cw, ch, w, h, 1)
}

// ZoomInfo returns the status label text, e.g. "Zoom: 100% | Canvas: 512×512px".
func (v *Viewport) ZoomInfo(w, h int) string {
	return fmt.Sprintf("Zoom: %d%% | Canvas: %d×%dpx", int(math.Round(v.Zoom*100)), w, h)
}

func fitView(cw, ch float64, w, h int, padding float64) (zoom, panX, panY float64) {
	zoom = 1
	if w > 0 && h > 0 {
		zoom = math.Min(math.Min((cw-padding)/float64(w), (ch-padding)/float64(h)), 1)
	}
	zoom = clampZoom(zoom)
	panX, panY = centerPan(cw, ch, w, h, zoom)
	return zoom, panX, panY
}

func centerPan(cw, ch float64, w, h int, zoom float64) (float64, float64) {
	return (cw - float64(w)*zoom) / 2, (ch - float64(h)*zoom) / 2
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return MinZoom
	}
	return clampFloat(z, MinZoom, MaxZoom)
}
