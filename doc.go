// Package maskedit is a multi-layer mask editor for [Ebitengine].
//
// It holds up to ten alpha-only layers over a background image, lets the
// user paint and erase them with a round brush through a zoomable, pannable
// viewport, and persists the result as a JSON document of base64 alpha
// channels that downstream processing turns back into per-layer masks.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window around an
// editing session:
//
//	s, err := maskedit.NewSession(bg, 5, maskedit.WithStorage(storage))
//	if err != nil {
//		return err
//	}
//	return maskedit.Run(ctx, s, maskedit.RunConfig{Title: "Masks"})
//
// A [Session] does not depend on a window. Hosts that render elsewhere feed
// it pointer, wheel and key events directly and read [Session.Composite]
// after each [Session.OnRedraw] callback.
//
// # Coordinates
//
// Pointer events are in container coordinates: pixels relative to the
// untransformed area hosting the canvas. The [Viewport] maps them to canvas
// pixels as canvas = (container - pan) / zoom.
//
// # Persistence
//
// [LayerStore.Encode] produces a [MaskSet] keyed "layer_<i>". Saving uploads
// it through a [Storage] and writes the stored filename to the node's
// masks_data widget. A [Resolver] performs the reverse, producing one
// [Mask] per layer for processing.
//
// # Testing
//
// [Session.InjectClick], [Session.InjectDrag] and [LoadTestScript] drive a
// session without real input. [Session.Screenshot] queues PNG captures of
// the composite.
//
// [Ebitengine]: https://ebitengine.org
package maskedit
