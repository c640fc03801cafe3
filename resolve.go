package maskedit

import (
	"bytes"
	"context"
	"errors"
	"image"

	"golang.org/x/sync/errgroup"
)

const (
	// MaxOutputs is the number of masks the full editor node produces.
	MaxOutputs = 10
	// SimpleOutputs is the number of masks the simple editor node produces.
	SimpleOutputs = 5

	defaultResolveSize = 512
)

// Mask is a single-channel float mask with values in [0, 1], row-major.
type Mask struct {
	Width, Height int
	Values        []float32
}

// NewMask returns an all-zero mask.
func NewMask(w, h int) Mask {
	return Mask{Width: w, Height: h, Values: make([]float32, w*h)}
}

// At returns the value at (x, y), or 0 outside the mask.
func (m Mask) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Values[y*m.Width+x]
}

// IsZero reports whether every value is zero.
func (m Mask) IsZero() bool {
	for _, v := range m.Values {
		if v != 0 {
			return false
		}
	}
	return true
}

// Gray converts the mask to an 8-bit grayscale image.
func (m Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Values {
		img.Pix[i] = uint8(clampFloat(float64(v)*255+0.5, 0, 255))
	}
	return img
}

// ResolveRequest carries the editor node's widget values.
type ResolveRequest struct {
	// Image is the uploaded input image name, possibly empty.
	Image string
	// NumLayers is the number of edited layers.
	NumLayers int
	// MasksData is inline MaskSet JSON or the name of a saved mask file.
	MasksData string
}

// Resolver turns an editor node's widget values into output masks, the way
// the node executes on the host.
type Resolver struct {
	Storage Storage
	// DefaultWidth and DefaultHeight size the masks when the image is
	// missing or unreadable.
	DefaultWidth, DefaultHeight int
	// Outputs is the number of masks returned, MaxOutputs or SimpleOutputs.
	Outputs int
}

// NewResolver returns a Resolver producing MaxOutputs masks.
func NewResolver(st Storage) *Resolver {
	return &Resolver{
		Storage:       st,
		DefaultWidth:  defaultResolveSize,
		DefaultHeight: defaultResolveSize,
		Outputs:       MaxOutputs,
	}
}

// Resolve returns exactly r.Outputs masks sized to the input image. Layers
// without data are zero. A layer painted at another size is zero and
// logged. Mask data that cannot be read at all yields all-zero masks. The
// only error returned is a cancelled context.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) ([]Mask, error) {
	outputs := r.Outputs
	if outputs <= 0 || outputs > MaxOutputs {
		outputs = MaxOutputs
	}
	w, h := r.imageSize(ctx, req.Image)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := req.NumLayers
	if n <= 0 {
		n = DefaultLayers
	}
	n = clampInt(n, 1, outputs)

	masks := make([]Mask, outputs)
	decoded := r.decodeLayers(ctx, req.MasksData, n, w, h)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i := range masks {
		if i < len(decoded) && decoded[i].Values != nil {
			masks[i] = decoded[i]
			continue
		}
		masks[i] = NewMask(w, h)
	}
	return masks, nil
}

func (r *Resolver) imageSize(ctx context.Context, name string) (int, int) {
	w, h := r.DefaultWidth, r.DefaultHeight
	if w <= 0 || h <= 0 {
		w, h = defaultResolveSize, defaultResolveSize
	}
	if name == "" || r.Storage == nil {
		return w, h
	}
	data, err := r.Storage.View(ctx, FileRef{Filename: name, Type: "input"})
	if err != nil {
		Logger().Warn("image not found, using default size", "image", name, "width", w, "height", h, "err", err)
		return w, h
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		Logger().Warn("unreadable image, using default size", "image", name, "err", err)
		return w, h
	}
	return cfg.Width, cfg.Height
}

// decodeLayers decodes layers 0..n-1 in parallel. Entries left with nil
// Values are empty.
func (r *Resolver) decodeLayers(ctx context.Context, masksData string, n, w, h int) []Mask {
	if masksData == "" {
		return nil
	}
	set, err := LoadMaskSet(ctx, r.Storage, masksData)
	if errors.Is(err, ErrNotFound) {
		Logger().Warn("mask file not found", "file", masksData)
		return nil
	}
	if err != nil {
		Logger().Warn("unreadable mask data", "err", err)
		return nil
	}

	out := make([]Mask, n)
	var g errgroup.Group
	for i, m := range set.Layers(n) {
		g.Go(func() error {
			alpha, err := decodeAlpha(m, w, h)
			switch {
			case errors.Is(err, ErrMaskMissing):
				return nil
			case errors.Is(err, ErrMaskSize):
				Logger().Warn("mask size does not match image", "layer", i, "err", err)
				return nil
			case err != nil:
				return err
			}
			values := make([]float32, len(alpha))
			for j, a := range alpha {
				values[j] = float32(a) / 255
			}
			out[i] = Mask{Width: w, Height: h, Values: values}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		Logger().Warn("error processing masks, returning empty masks", "err", err)
		return nil
	}
	return out
}
