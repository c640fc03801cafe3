package maskedit

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// DefaultViewAnimation is the duration in seconds of animated view changes.
const DefaultViewAnimation float32 = 0.25

// ViewTween animates a Viewport's zoom and pan toward a target. Call
// Update(dt) each frame; values are written to the viewport directly.
//
// There is no global animation manager. A Viewport owns at most one tween
// and advances it from Viewport.Update.
type ViewTween struct {
	tweens [3]*gween.Tween
	fields [3]*float64
	Done   bool
}

// Update advances the tween by dt seconds and writes the values to the
// viewport.
func (g *ViewTween) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := range g.tweens {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// AnimateTo starts animating the viewport to the given zoom and pan over
// duration seconds, replacing any animation in flight. The target zoom is
// clamped. A nil easing function means ease.OutCubic.
func (v *Viewport) AnimateTo(zoom, panX, panY float64, duration float32, fn ease.TweenFunc) *ViewTween {
	if fn == nil {
		fn = ease.OutCubic
	}
	zoom = clampZoom(zoom)
	g := &ViewTween{}
	g.tweens[0] = gween.New(float32(v.Zoom), float32(zoom), duration, fn)
	g.tweens[1] = gween.New(float32(v.PanX), float32(panX), duration, fn)
	g.tweens[2] = gween.New(float32(v.PanY), float32(panY), duration, fn)
	g.fields[0] = &v.Zoom
	g.fields[1] = &v.PanX
	g.fields[2] = &v.PanY
	v.anim = g
	return g
}

// AnimateFit animates to the FitToContainer result.
func (v *Viewport) AnimateFit(cw, ch float64, w, h int, padding float64, duration float32) *ViewTween {
	zoom, panX, panY := fitView(cw, ch, w, h, padding)
	return v.AnimateTo(zoom, panX, panY, duration, ease.OutCubic)
}

// AnimateReset animates to the ResetToIdentity result.
func (v *Viewport) AnimateReset(cw, ch float64, w, h int, duration float32) *ViewTween {
	panX, panY := centerPan(cw, ch, w, h, 1)
	return v.AnimateTo(1, panX, panY, duration, ease.OutCubic)
}

// Animating reports whether an animation is in flight.
func (v *Viewport) Animating() bool { return v.anim != nil }

// StopAnimation abandons the animation in flight, leaving the viewport
// where it currently is.
func (v *Viewport) StopAnimation() { v.anim = nil }

// Update advances the animation in flight. It reports whether the viewport
// changed.
func (v *Viewport) Update(dt float32) bool {
	if v.anim == nil {
		return false
	}
	v.anim.Update(dt)
	if v.anim.Done {
		v.anim = nil
	}
	v.Zoom = clampZoom(v.Zoom)
	return true
}
