package maskedit

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EncodedMask is the transport form of a layer: its alpha channel as
// standard base64 together with the dimensions it was painted at.
type EncodedMask struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   string `json:"data"`

	// legacy is set when the mask was read from the older flat list format,
	// which carries no dimensions.
	legacy bool
}

// UnmarshalJSON accepts both the object form and the legacy flat array of
// alpha values.
func (m *EncodedMask) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var values []int
		if err := json.Unmarshal(b, &values); err != nil {
			return fmt.Errorf("%w: legacy list: %v", ErrMaskMalformed, err)
		}
		raw := make([]byte, len(values))
		for i, v := range values {
			raw[i] = uint8(clampInt(v, 0, 255))
		}
		*m = EncodedMask{Data: base64.StdEncoding.EncodeToString(raw), legacy: true}
		return nil
	}
	if len(b) == 0 || b[0] != '{' {
		// Scalars carry no mask; the layer stays blank.
		*m = EncodedMask{}
		return nil
	}
	type plain EncodedMask
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("%w: %v", ErrMaskMalformed, err)
	}
	*m = EncodedMask(p)
	return nil
}

// Legacy reports whether the mask came from the dimensionless list format.
func (m *EncodedMask) Legacy() bool { return m.legacy }

// Encode extracts the layer's alpha channel into its transport form.
func Encode(l *Layer) EncodedMask {
	return EncodedMask{
		Width:  l.width,
		Height: l.height,
		Data:   base64.StdEncoding.EncodeToString(l.alpha),
	}
}

// decodeAlpha validates m against the expected size and returns the raw
// alpha bytes. Legacy masks take their dimensions from the caller.
func decodeAlpha(m *EncodedMask, width, height int) ([]uint8, error) {
	if m == nil || m.Data == "" {
		return nil, ErrMaskMissing
	}
	raw, err := base64.StdEncoding.DecodeString(m.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaskMalformed, err)
	}
	w, h := m.Width, m.Height
	if m.legacy {
		w, h = width, height
	}
	if w != width || h != height {
		return nil, fmt.Errorf("%w: mask %dx%d, layer %dx%d", ErrMaskSize, w, h, width, height)
	}
	if len(raw) != width*height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrMaskMalformed, len(raw), width, height)
	}
	return raw, nil
}

// DecodeInto replaces l's alpha with the decoded mask. On any error l is
// left unmodified.
func DecodeInto(l *Layer, m *EncodedMask) error {
	raw, err := decodeAlpha(m, l.width, l.height)
	if err != nil {
		return err
	}
	copy(l.alpha, raw)
	return nil
}

// Decode reconstructs a new layer from m. The ordinal selects name and color.
// Legacy masks carry no dimensions and fail with ErrMaskSize; decode them
// into a sized layer with DecodeInto. The payload is validated against the
// dimensions before any layer is allocated.
func Decode(m *EncodedMask, ordinal int) (*Layer, error) {
	if m == nil || m.Data == "" {
		return nil, ErrMaskMissing
	}
	if m.legacy {
		return nil, fmt.Errorf("%w: legacy mask has no dimensions", ErrMaskSize)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrMaskMalformed, m.Width, m.Height)
	}
	raw, err := base64.StdEncoding.DecodeString(m.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaskMalformed, err)
	}
	// Division keeps oversized dimensions from overflowing the product.
	if len(raw)%m.Width != 0 || len(raw)/m.Width != m.Height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrMaskMalformed, len(raw), m.Width, m.Height)
	}
	l := NewLayer(m.Width, m.Height, ordinal)
	copy(l.alpha, raw)
	return l, nil
}

// MaskSet is the persisted document: "layer_<i>" mapped to each layer's
// encoded mask. Entries may be nil.
type MaskSet map[string]*EncodedMask

// LayerKey returns the MaskSet key for layer i.
func LayerKey(i int) string {
	return "layer_" + strconv.Itoa(i)
}

// ParseMaskSet parses a MaskSet document.
func ParseMaskSet(data []byte) (MaskSet, error) {
	var set MaskSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse mask set: %w", err)
	}
	if set == nil {
		set = MaskSet{}
	}
	return set, nil
}

// Layer returns the entry for layer i, or nil.
func (s MaskSet) Layer(i int) *EncodedMask {
	return s[LayerKey(i)]
}

// Layers returns entries 0..n-1, with nil for absent layers.
func (s MaskSet) Layers(n int) []*EncodedMask {
	out := make([]*EncodedMask, n)
	for i := range out {
		out[i] = s.Layer(i)
	}
	return out
}

// Marshal encodes the set as JSON.
func (s MaskSet) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// IsMaskFileRef reports whether a masks_data value names a stored file
// rather than holding inline JSON.
func IsMaskFileRef(value string) bool {
	return strings.HasSuffix(value, ".json")
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
