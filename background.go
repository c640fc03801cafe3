package maskedit

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"

	_ "golang.org/x/image/bmp"  // register BMP
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// DecodeImage decodes any registered image format.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// ToNRGBA returns img as a straight-alpha raster with its origin at (0, 0).
// An *image.NRGBA that already qualifies is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

// LoadBackground fetches an uploaded input image and converts it for
// compositing.
func LoadBackground(ctx context.Context, st Storage, filename string) (*image.NRGBA, error) {
	data, err := st.View(ctx, FileRef{Filename: filename, Type: "input"})
	if err != nil {
		return nil, fmt.Errorf("load background: %w", err)
	}
	img, format, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load background %s: %w", filename, err)
	}
	Logger().Debug("loaded background", "file", filename, "format", format, "size", img.Bounds().Size())
	return ToNRGBA(img), nil
}

// ScaleNRGBA resamples img to w x h with Catmull-Rom filtering.
func ScaleNRGBA(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
