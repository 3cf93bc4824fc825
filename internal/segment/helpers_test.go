package segment

import (
	"math/rand/v2"

	"rect-segmenter/internal/colorvec"
)

// newImage builds an h x w image with nc channels whose pixel (y, x) has the
// channels returned by px.
func newImage(h, w, nc int, px func(y, x int) []byte) *RasterImage {
	img := &RasterImage{Height: h, Width: w, Channels: nc, Pix: make([]byte, h*w*nc)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			copy(img.Pix[(y*w+x)*nc:(y*w+x+1)*nc], px(y, x))
		}
	}
	return img
}

func randomImage(rng *rand.Rand, h, w int, maxValue int) *RasterImage {
	return newImage(h, w, 3, func(int, int) []byte {
		return []byte{
			byte(rng.IntN(maxValue + 1)),
			byte(rng.IntN(maxValue + 1)),
			byte(rng.IntN(maxValue + 1)),
		}
	})
}

func pixel(img *RasterImage, y, x int) colorvec.Vec3 {
	p := img.Pix[(y*img.Width+x)*img.Channels:]
	return colorvec.Vec3{float64(p[0]) / 255, float64(p[1]) / 255, float64(p[2]) / 255}
}

// bruteSum adds the normalized pixels inside r one by one.
func bruteSum(img *RasterImage, r Rectangle) colorvec.Vec3 {
	var sum colorvec.Vec3
	for y := r.Y0; y < r.Y1; y++ {
		for x := r.X0; x < r.X1; x++ {
			sum = sum.Add(pixel(img, y, x))
		}
	}
	return sum
}

// bruteSSE is the squared error of the two-color approximation defined by r,
// computed directly from the pixels.
func bruteSSE(img *RasterImage, r Rectangle) float64 {
	n := img.Height * img.Width
	in := bruteSum(img, r)
	var all colorvec.Vec3
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			all = all.Add(pixel(img, y, x))
		}
	}

	meanIn := in.Scale(1 / float64(r.Area()))
	var meanOut colorvec.Vec3
	if n > r.Area() {
		meanOut = all.Sub(in).Scale(1 / float64(n-r.Area()))
	}

	var sse float64
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			ref := meanOut
			if y >= r.Y0 && y < r.Y1 && x >= r.X0 && x < r.X1 {
				ref = meanIn
			}
			sse += pixel(img, y, x).Sub(ref).SquaredNorm()
		}
	}
	return sse
}

// allRectangles lists every half-open rectangle of an h x w image.
func allRectangles(h, w int) []Rectangle {
	var rects []Rectangle
	for y0 := 0; y0 < h; y0++ {
		for y1 := y0 + 1; y1 <= h; y1++ {
			for x0 := 0; x0 < w; x0++ {
				for x1 := x0 + 1; x1 <= w; x1++ {
					rects = append(rects, Rectangle{Y0: y0, X0: x0, Y1: y1, X1: x1})
				}
			}
		}
	}
	return rects
}

func tableFor(img *RasterImage) (*Table, error) {
	vectors := make([]colorvec.Vec3, img.Height*img.Width)
	if err := Normalize(0, img, vectors); err != nil {
		return nil, err
	}
	return BuildTable(0, vectors, img.Height, img.Width, make([]colorvec.Vec3, TableCells(img.Height, img.Width)))
}
