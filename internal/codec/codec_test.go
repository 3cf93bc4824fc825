package codec

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"rect-segmenter/internal/colorvec"
	"rect-segmenter/internal/segment"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"a.PNG":       "png",
		"dir/b.jpeg":  "jpeg",
		"c.jpg":       "jpeg",
		"d.tif":       "tiff",
		"e.bmp":       "bmp",
		"f.webp":      "webp",
		"g.gif":       "gif",
		"noextension": "unknown",
	}

	for path, want := range tests {
		assert.Equal(t, want, FormatFromPath(path), path)
	}
}

func TestRGBA(t *testing.T) {
	v := colorvec.Vec3{1, 0.5, 0}
	assert.Equal(t, color.RGBA{R: 0, G: 128, B: 255, A: 255}, RGBA(segment.OrderBGR, v))
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 255}, RGBA(segment.OrderRGB, v))
}

func TestRender(t *testing.T) {
	src := &segment.RasterImage{Height: 4, Width: 5, Channels: 3, Order: segment.OrderRGB}
	res := segment.Result{
		Rectangle: segment.Rectangle{Y0: 1, X0: 2, Y1: 3, X1: 4},
		Outer:     colorvec.Vec3{1, 0, 0},
		Inner:     colorvec.Vec3{0, 0, 1},
	}

	out, err := Render(src, res)
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			want := color.NRGBA{R: 255, A: 255}
			if y >= 1 && y < 3 && x >= 2 && x < 4 {
				want = color.NRGBA{B: 255, A: 255}
			}
			assert.Equal(t, want, out.NRGBAAt(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestRenderRejectsBadRectangle(t *testing.T) {
	src := &segment.RasterImage{Height: 2, Width: 2, Channels: 3}

	_, err := Render(src, segment.Result{Rectangle: segment.Rectangle{Y1: 3, X1: 1}})
	assert.Error(t, err)

	_, err = Render(src, segment.Result{})
	assert.Error(t, err)

	_, err = Render(&segment.RasterImage{}, segment.Result{Rectangle: segment.Rectangle{Y1: 1, X1: 1}})
	assert.Error(t, err)
}

func TestFromImageCopiesSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	raster := FromImage(img.SubImage(image.Rect(1, 1, 3, 3)))
	assert.Equal(t, 2, raster.Width)
	assert.Equal(t, 2, raster.Height)
	assert.Equal(t, 4, raster.Channels)
	assert.Equal(t, segment.OrderRGB, raster.Order)
	assert.Equal(t, []byte{10, 20, 30, 255}, raster.Pix[4:8])
}

func TestNativeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.png")
	output := filepath.Join(dir, "output.png")

	src := image.NewNRGBA(image.Rect(0, 0, 12, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 12; x++ {
			c := color.NRGBA{G: 200, A: 255}
			if y >= 1 && y < 6 && x >= 7 && x < 11 {
				c = color.NRGBA{R: 240, G: 240, B: 240, A: 255}
			}
			src.SetNRGBA(x, y, c)
		}
	}
	require.NoError(t, imaging.Save(src, input))

	codec := NewNative(nil)
	assert.Equal(t, "native", codec.Name())

	raster, err := codec.Decode(input)
	require.NoError(t, err)
	assert.Equal(t, 12, raster.Width)
	assert.Equal(t, 8, raster.Height)

	res, err := segment.New(segment.WithWorkers(2)).Segment(raster)
	require.NoError(t, err)
	assert.Equal(t, segment.Rectangle{Y0: 1, X0: 7, Y1: 6, X1: 11}, res.Rectangle)

	require.NoError(t, codec.Encode(output, raster, res))

	rendered, err := imaging.Open(output)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBAModel.Convert(color.NRGBA{G: 200, A: 255}), color.NRGBAModel.Convert(rendered.At(0, 0)))
	assert.Equal(t, color.NRGBAModel.Convert(color.NRGBA{R: 240, G: 240, B: 240, A: 255}), color.NRGBAModel.Convert(rendered.At(8, 3)))
}

func TestNativeDecodeMissingFile(t *testing.T) {
	_, err := NewNative(nil).Decode(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestNativeEncodeUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	src := &segment.RasterImage{Height: 1, Width: 1, Channels: 3, Pix: []byte{1, 2, 3}, Order: segment.OrderRGB}
	res := segment.Result{Rectangle: segment.Rectangle{Y1: 1, X1: 1}}

	require.NoError(t, NewNative(nil).Encode(filepath.Join(dir, "out.xyz"), src, res))

	_, err := imaging.Open(filepath.Join(dir, "out.xyz.png"))
	assert.NoError(t, err)
}
