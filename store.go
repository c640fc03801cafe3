package maskedit

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// LayerStore holds the ordered layer stack of one editing session. Index 0
// is painted first (bottom). The active index selects the layer receiving
// brush stamps and is always in bounds.
//
// A LayerStore is not safe for concurrent use.
type LayerStore struct {
	width, height int
	layers        []*Layer
	active        int
}

// NewLayerStore creates count transparent layers of the given size. count is
// clamped to [1, MaxLayers].
func NewLayerStore(width, height, count int) *LayerStore {
	count = clampInt(count, 1, MaxLayers)
	s := &LayerStore{width: width, height: height, layers: make([]*Layer, 0, MaxLayers)}
	for i := 0; i < count; i++ {
		s.layers = append(s.layers, NewLayer(width, height, i))
	}
	return s
}

// Width returns the shared layer width.
func (s *LayerStore) Width() int { return s.width }

// Height returns the shared layer height.
func (s *LayerStore) Height() int { return s.height }

// Len returns the number of layers.
func (s *LayerStore) Len() int { return len(s.layers) }

// Layers returns the layer stack. The returned slice MUST NOT be mutated.
func (s *LayerStore) Layers() []*Layer { return s.layers }

// Layer returns layer i.
func (s *LayerStore) Layer(i int) (*Layer, error) {
	if i < 0 || i >= len(s.layers) {
		return nil, fmt.Errorf("layer %d of %d: %w", i, len(s.layers), ErrLayerOutOfRange)
	}
	return s.layers[i], nil
}

// Active returns the active layer index.
func (s *LayerStore) Active() int { return s.active }

// ActiveLayer returns the layer receiving brush stamps.
func (s *LayerStore) ActiveLayer() *Layer { return s.layers[s.active] }

// SetActive selects the layer receiving brush stamps.
func (s *LayerStore) SetActive(i int) error {
	if i < 0 || i >= len(s.layers) {
		return fmt.Errorf("set active %d of %d: %w", i, len(s.layers), ErrLayerOutOfRange)
	}
	s.active = i
	return nil
}

// AddLayer appends a transparent layer and makes it active. At MaxLayers it
// does nothing and returns false.
func (s *LayerStore) AddLayer() (*Layer, bool) {
	if len(s.layers) >= MaxLayers {
		return nil, false
	}
	l := NewLayer(s.width, s.height, len(s.layers))
	s.layers = append(s.layers, l)
	s.active = len(s.layers) - 1
	return l, true
}

// ClearLayer resets layer i to fully transparent.
func (s *LayerStore) ClearLayer(i int) error {
	l, err := s.Layer(i)
	if err != nil {
		return err
	}
	l.Clear()
	return nil
}

// ClearAll resets every layer to fully transparent.
func (s *LayerStore) ClearAll() {
	for _, l := range s.layers {
		l.Clear()
	}
}

// SetVisible shows or hides layer i without touching its data.
func (s *LayerStore) SetVisible(i int, visible bool) error {
	l, err := s.Layer(i)
	if err != nil {
		return err
	}
	l.Visible = visible
	return nil
}

// ToggleVisible flips the visibility of layer i.
func (s *LayerStore) ToggleVisible(i int) error {
	l, err := s.Layer(i)
	if err != nil {
		return err
	}
	l.Visible = !l.Visible
	return nil
}

// Fill sets every alpha value of layer i to 255 (paint) or 0 (erase).
func (s *LayerStore) Fill(i int, mode BrushMode) error {
	l, err := s.Layer(i)
	if err != nil {
		return err
	}
	l.Fill(mode)
	return nil
}

// Seed initializes layers from persisted masks, one entry per layer index.
// Entries that are absent or fail to decode leave their layer blank. It
// returns how many layers were seeded.
func (s *LayerStore) Seed(masks []*EncodedMask) int {
	seeded := 0
	for i, m := range masks {
		if i >= len(s.layers) {
			break
		}
		if err := DecodeInto(s.layers[i], m); err != nil {
			if !errors.Is(err, ErrMaskMissing) {
				Logger().Warn("skipping layer data", "layer", i, "err", err)
			}
			continue
		}
		seeded++
	}
	return seeded
}

// Encode encodes every layer into a MaskSet. Layers are encoded in parallel.
func (s *LayerStore) Encode() MaskSet {
	encoded := make([]EncodedMask, len(s.layers))
	var g errgroup.Group
	for i, l := range s.layers {
		g.Go(func() error {
			encoded[i] = Encode(l)
			return nil
		})
	}
	_ = g.Wait() // encoding cannot fail

	set := make(MaskSet, len(encoded))
	for i := range encoded {
		set[LayerKey(i)] = &encoded[i]
	}
	return set
}
