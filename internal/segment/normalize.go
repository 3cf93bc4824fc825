package segment

import (
	"rect-segmenter/internal/colorvec"
	"rect-segmenter/internal/parallel"
)

const inv255 = 1.0 / 255.0

// Normalize writes one vector per pixel into dst in row-major order, each of
// the first three channels divided by 255. dst must hold Height*Width
// vectors.
func Normalize(workers int, img *RasterImage, dst []colorvec.Vec3) error {
	if err := img.Validate(); err != nil {
		return err
	}

	h, w, nc := img.Height, img.Width, img.Channels
	if len(dst) < h*w {
		return img.invalid("destination buffer too small")
	}

	parallel.For(workers, h, func(start, end int) {
		for y := start; y < end; y++ {
			src := img.Pix[y*w*nc : (y+1)*w*nc]
			row := dst[y*w : (y+1)*w]
			for x := range row {
				p := src[x*nc:]
				row[x] = colorvec.Vec3{
					float64(p[0]) * inv255,
					float64(p[1]) * inv255,
					float64(p[2]) * inv255,
				}
			}
		}
	})

	return nil
}
