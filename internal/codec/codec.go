// Package codec moves images between files and segment.RasterImage, and
// renders segmentation results back to files.
package codec

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"rect-segmenter/internal/colorvec"
	"rect-segmenter/internal/segment"
)

// Codec decodes an input file and encodes the two-color rendering of a
// result computed from it.
type Codec interface {
	Name() string
	Decode(path string) (*segment.RasterImage, error)
	Encode(path string, src *segment.RasterImage, res segment.Result) error
}

// FormatFromPath maps a file extension to an output format name.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return "unknown"
	}
}

// RGBA converts a normalized color in the given channel order to an opaque
// 8-bit color.
func RGBA(order segment.ChannelOrder, v colorvec.Vec3) color.RGBA {
	rgb := order.RGB(v)
	return color.RGBA{
		R: colorvec.Byte(rgb[0]),
		G: colorvec.Byte(rgb[1]),
		B: colorvec.Byte(rgb[2]),
		A: 255,
	}
}

// Render paints the result: the outer color everywhere and the inner color
// over the rectangle.
func Render(src *segment.RasterImage, res segment.Result) (*image.NRGBA, error) {
	if src == nil || src.Width < 1 || src.Height < 1 {
		return nil, fmt.Errorf("cannot render into empty image")
	}

	bounds := image.Rect(0, 0, src.Width, src.Height)
	if !res.Bounds().In(bounds) || res.Area() <= 0 {
		return nil, fmt.Errorf("rectangle %s outside %dx%d image", res.Rectangle, src.Width, src.Height)
	}

	out := image.NewNRGBA(bounds)
	fill(out, bounds, RGBA(src.Order, res.Outer))
	fill(out, res.Bounds(), RGBA(src.Order, res.Inner))
	return out, nil
}

func fill(img *image.NRGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			row[i+0] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = c.A
		}
	}
}
