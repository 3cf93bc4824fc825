// Package segment finds the axis-aligned rectangle whose flat-color fill,
// together with a flat-color background, best approximates an image in the
// least-squares sense.
//
// Every rectangle is scored in constant time from a summed-area table over
// the normalized pixel colors, and the (dy, dx) shape grid is searched
// exhaustively on all available cores.
package segment

import (
	"fmt"
	"image"

	"rect-segmenter/internal/colorvec"
)

// ChannelOrder records how the first three channels of a RasterImage are laid
// out. Colors in a Result follow the same order as the input.
type ChannelOrder int

const (
	OrderBGR ChannelOrder = iota
	OrderRGB
)

func (o ChannelOrder) String() string {
	switch o {
	case OrderBGR:
		return "BGR"
	case OrderRGB:
		return "RGB"
	default:
		return fmt.Sprintf("ChannelOrder(%d)", int(o))
	}
}

// RGB reorders v into red, green, blue.
func (o ChannelOrder) RGB(v colorvec.Vec3) colorvec.Vec3 {
	if o == OrderBGR {
		return colorvec.Vec3{v[2], v[1], v[0]}
	}
	return v
}

// RasterImage is a decoded image: Height rows of Width pixels with Channels
// interleaved bytes each. Only the first three channels are used.
type RasterImage struct {
	Height   int
	Width    int
	Channels int
	Pix      []byte
	Order    ChannelOrder
}

// Validate checks the image can be segmented.
func (img *RasterImage) Validate() error {
	if img == nil {
		return &InvalidImageError{Reason: "image is nil"}
	}

	switch {
	case img.Height < 1 || img.Width < 1:
		return img.invalid("image has no pixels")
	case img.Channels < 3:
		return img.invalid("at least 3 channels are required")
	case len(img.Pix) < img.Height*img.Width*img.Channels:
		return img.invalid(fmt.Sprintf("pixel buffer holds %d bytes, need %d",
			len(img.Pix), img.Height*img.Width*img.Channels))
	}
	return nil
}

func (img *RasterImage) invalid(reason string) *InvalidImageError {
	return &InvalidImageError{
		Height:   img.Height,
		Width:    img.Width,
		Channels: img.Channels,
		Reason:   reason,
	}
}

// Rectangle is the half-open region [Y0,Y1) x [X0,X1).
type Rectangle struct {
	Y0, X0, Y1, X1 int
}

func (r Rectangle) Area() int {
	return (r.Y1 - r.Y0) * (r.X1 - r.X0)
}

// Bounds converts r to an image.Rectangle (x first).
func (r Rectangle) Bounds() image.Rectangle {
	return image.Rect(r.X0, r.Y0, r.X1, r.Y1)
}

func (r Rectangle) String() string {
	return fmt.Sprintf("[%d,%d)x[%d,%d)", r.Y0, r.Y1, r.X0, r.X1)
}

// less orders rectangles by area, then by (Y0, X0, Y1, X1).
func (r Rectangle) less(o Rectangle) bool {
	if a, b := r.Area(), o.Area(); a != b {
		return a < b
	}
	if r.Y0 != o.Y0 {
		return r.Y0 < o.Y0
	}
	if r.X0 != o.X0 {
		return r.X0 < o.X0
	}
	if r.Y1 != o.Y1 {
		return r.Y1 < o.Y1
	}
	return r.X1 < o.X1
}

// Result is the best segmentation found. Outer is the mean color outside the
// rectangle (zero when the rectangle covers the whole image) and Inner the
// mean color inside it, both normalized to [0,1].
type Result struct {
	Rectangle
	Outer   colorvec.Vec3
	Inner   colorvec.Vec3
	Utility float64
}

// candidate is a Result that may still be unset.
type candidate struct {
	Result
	set bool
}

// better reports whether r should replace c as the current best: higher
// utility wins, exact ties go to the smaller and then the lexicographically
// smaller rectangle.
func (c *candidate) better(r *Result) bool {
	if !c.set || r.Utility > c.Utility {
		return true
	}
	return r.Utility == c.Utility && r.Rectangle.less(c.Rectangle)
}

func (c *candidate) offer(r *Result) {
	if c.better(r) {
		c.Result = *r
		c.set = true
	}
}
