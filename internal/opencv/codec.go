// Package opencv reads and writes images through OpenCV. Decoded images keep
// OpenCV's BGR channel order.
package opencv

import (
	"fmt"

	"rect-segmenter/internal/codec"
	"rect-segmenter/internal/colorvec"
	"rect-segmenter/internal/logger"
	"rect-segmenter/internal/segment"

	"gocv.io/x/gocv"
)

type Codec struct {
	logger logger.Logger
}

var _ codec.Codec = (*Codec)(nil)

func NewCodec(log logger.Logger) *Codec {
	if log == nil {
		log = logger.Nop{}
	}
	return &Codec{logger: log}
}

func (c *Codec) Name() string {
	return "opencv"
}

func (c *Codec) Decode(path string) (*segment.RasterImage, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()

	if err := validateMat(mat, "decode"); err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	raster, err := MatToRaster(mat)
	if err != nil {
		return nil, err
	}

	c.logger.Info("OpenCVCodec", "image loaded", map[string]interface{}{
		"width":    raster.Width,
		"height":   raster.Height,
		"channels": raster.Channels,
		"format":   codec.FormatFromPath(path),
	})

	return raster, nil
}

// Encode draws the outer color over a canvas the size of src, fills the
// rectangle with the inner color and writes the file.
func (c *Codec) Encode(path string, src *segment.RasterImage, res segment.Result) error {
	if src == nil || src.Width < 1 || src.Height < 1 {
		return fmt.Errorf("cannot render into empty image")
	}

	outer := toScalar(src.Order, res.Outer)
	canvas := gocv.NewMatWithSizeFromScalar(outer, src.Height, src.Width, gocv.MatTypeCV8UC3)
	defer canvas.Close()

	if err := validateMat(canvas, "render"); err != nil {
		return err
	}

	gocv.Rectangle(&canvas, res.Bounds(), codec.RGBA(src.Order, res.Inner), -1)

	if !gocv.IMWrite(path, canvas) {
		err := fmt.Errorf("failed to write image %s", path)
		c.logger.Error("OpenCVCodec", err, map[string]interface{}{
			"format": codec.FormatFromPath(path),
		})
		return err
	}

	c.logger.Info("OpenCVCodec", "image saved", map[string]interface{}{
		"format": codec.FormatFromPath(path),
		"path":   path,
	})
	return nil
}

// MatToRaster copies an 8-bit Mat with at least three channels.
func MatToRaster(mat gocv.Mat) (*segment.RasterImage, error) {
	if err := validateMat(mat, "MatToRaster"); err != nil {
		return nil, err
	}

	switch mat.Type() {
	case gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return nil, fmt.Errorf("unsupported Mat type %v, need 8-bit with 3 or 4 channels", mat.Type())
	}

	if !mat.IsContinuous() {
		cloned := mat.Clone()
		defer cloned.Close()
		mat = cloned
	}

	pix, err := mat.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("failed to access Mat data: %w", err)
	}

	return &segment.RasterImage{
		Height:   mat.Rows(),
		Width:    mat.Cols(),
		Channels: mat.Channels(),
		Pix:      append([]byte(nil), pix...),
		Order:    segment.OrderBGR,
	}, nil
}

// toScalar builds a BGR scalar in 0..255 for a color in the given order.
func toScalar(order segment.ChannelOrder, v colorvec.Vec3) gocv.Scalar {
	rgb := order.RGB(v)
	return gocv.NewScalar(
		float64(colorvec.Byte(rgb[2])),
		float64(colorvec.Byte(rgb[1])),
		float64(colorvec.Byte(rgb[0])),
		0,
	)
}

func validateMat(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}
