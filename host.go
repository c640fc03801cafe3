package maskedit

import (
	"context"
	"fmt"
	"sync"
)

// Widget names the editor nodes use on the host.
const (
	WidgetImage         = "image"
	WidgetUpload        = "upload"
	WidgetNumLayers     = "num_layers"
	WidgetMasksData     = "masks_data"
	WidgetPointsData    = "points_data"
	WidgetPreset        = "preset"
	WidgetStartStrength = "start_strength"
	WidgetEndStrength   = "end_strength"
	WidgetCurveType     = "curve_type"
	WidgetCurveParam    = "curve_param"
)

// Upload status texts shown on the upload widget.
const (
	StatusUploading    = "Uploading..."
	StatusUploadFailed = "Upload Failed"
)

// NodeWidgets is typed access to one host node's widgets. Every accessor
// reports false when the node has no widget of that name.
type NodeWidgets interface {
	ID() string
	String(name string) (string, bool)
	SetString(name, value string) bool
	Int(name string) (int, bool)
	Float(name string) (float64, bool)
	SetFloat(name string, value float64) bool
	// SetDirty asks the host to redraw the node.
	SetDirty()
}

// MemoryNode is a NodeWidgets backed by a map. It is safe for concurrent
// use.
type MemoryNode struct {
	mu      sync.Mutex
	id      string
	strings map[string]string
	numbers map[string]float64
	dirty   int
}

// NewMemoryNode returns a node with the given id and no widgets.
func NewMemoryNode(id string) *MemoryNode {
	return &MemoryNode{id: id, strings: map[string]string{}, numbers: map[string]float64{}}
}

// AddString declares a string widget.
func (n *MemoryNode) AddString(name, value string) *MemoryNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.strings[name] = value
	return n
}

// AddNumber declares a numeric widget.
func (n *MemoryNode) AddNumber(name string, value float64) *MemoryNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.numbers[name] = value
	return n
}

func (n *MemoryNode) ID() string { return n.id }

func (n *MemoryNode) String(name string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.strings[name]
	return v, ok
}

func (n *MemoryNode) SetString(name, value string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.strings[name]; !ok {
		return false
	}
	n.strings[name] = value
	return true
}

func (n *MemoryNode) Int(name string) (int, bool) {
	v, ok := n.Float(name)
	return int(v), ok
}

func (n *MemoryNode) Float(name string) (float64, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.numbers[name]
	return v, ok
}

func (n *MemoryNode) SetFloat(name string, value float64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.numbers[name]; !ok {
		return false
	}
	n.numbers[name] = value
	return true
}

func (n *MemoryNode) SetDirty() {
	n.mu.Lock()
	n.dirty++
	n.mu.Unlock()
}

// DirtyCount returns how many times SetDirty was called.
func (n *MemoryNode) DirtyCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dirty
}

// MaskEditorNode connects a host node's widgets to editing sessions: it
// uploads input images, opens sessions seeded from masks_data and writes
// the saved file name back.
type MaskEditorNode struct {
	Widgets NodeWidgets
	Storage Storage
	// Alert shows a message to the user. Nil discards messages.
	Alert func(msg string)

	lastImage string
}

func (n *MaskEditorNode) alert(msg string) {
	if n.Alert != nil {
		n.Alert(msg)
	}
}

// UploadImage stores an input image and selects it. Any masks painted for
// the previous image are dropped. On failure the upload widget shows
// StatusUploadFailed.
func (n *MaskEditorNode) UploadImage(ctx context.Context, name string, data []byte) (string, error) {
	n.Widgets.SetString(WidgetUpload, StatusUploading)
	stored, err := n.Storage.Upload(ctx, UploadFile{Name: name, Data: data, Type: "input"})
	if err != nil {
		Logger().Warn("image upload failed", "node", n.Widgets.ID(), "file", name, "err", err)
		n.Widgets.SetString(WidgetUpload, StatusUploadFailed)
		return "", err
	}
	if n.Widgets.SetString(WidgetImage, stored) {
		n.Widgets.SetString(WidgetMasksData, "")
		n.lastImage = stored
	}
	n.Widgets.SetString(WidgetUpload, stored)
	n.Widgets.SetDirty()
	return stored, nil
}

// Open starts a session for the node's current image. Masks are cleared
// when the image changed since the last Open. The session saves through
// the node's Storage, and a successful save stores the file name in
// masks_data.
func (n *MaskEditorNode) Open(ctx context.Context, opts ...SessionOption) (*Session, error) {
	img, ok := n.Widgets.String(WidgetImage)
	if !ok {
		n.alert("Image widget not found")
		return nil, fmt.Errorf("open editor: %s: %w", WidgetImage, ErrMissingWidget)
	}
	masksData, ok := n.Widgets.String(WidgetMasksData)
	if !ok {
		n.alert("Mask data widget not found")
		return nil, fmt.Errorf("open editor: %s: %w", WidgetMasksData, ErrMissingWidget)
	}
	if img == "" || img == WidgetImage {
		n.alert("Please upload an image first")
		return nil, fmt.Errorf("open editor: %w", ErrNoImage)
	}

	if n.lastImage != "" && n.lastImage != img {
		n.Widgets.SetString(WidgetMasksData, "")
		masksData = ""
	}
	n.lastImage = img

	numLayers, ok := n.Widgets.Int(WidgetNumLayers)
	if !ok {
		numLayers = DefaultLayers
	}

	bg, err := LoadBackground(ctx, n.Storage, img)
	if err != nil {
		return nil, fmt.Errorf("open editor: %w", err)
	}
	set, err := LoadMaskSet(ctx, n.Storage, masksData)
	if err != nil {
		Logger().Warn("error loading masks", "node", n.Widgets.ID(), "err", err)
		set = nil
	}

	base := []SessionOption{WithStorage(n.Storage), WithNodeID(n.Widgets.ID())}
	s, err := NewSession(bg, numLayers, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("open editor: %w", err)
	}
	if set != nil {
		s.Seed(set)
	}
	s.OnSaved(func(e Event) {
		n.Widgets.SetString(WidgetMasksData, e.Filename)
		n.Widgets.SetDirty()
	})
	return s, nil
}

// Resolve runs the node's masks through r using the current widget values.
func (n *MaskEditorNode) Resolve(ctx context.Context, r *Resolver) ([]Mask, error) {
	img, _ := n.Widgets.String(WidgetImage)
	masksData, _ := n.Widgets.String(WidgetMasksData)
	numLayers, ok := n.Widgets.Int(WidgetNumLayers)
	if !ok {
		numLayers = DefaultLayers
	}
	return r.Resolve(ctx, ResolveRequest{Image: img, NumLayers: numLayers, MasksData: masksData})
}
