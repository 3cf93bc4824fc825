package codec

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"rect-segmenter/internal/logger"
	"rect-segmenter/internal/segment"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Native decodes and encodes without OpenCV. Decoded images are in RGB order.
type Native struct {
	logger logger.Logger
}

func NewNative(log logger.Logger) *Native {
	if log == nil {
		log = logger.Nop{}
	}
	return &Native{logger: log}
}

func (n *Native) Name() string {
	return "native"
}

func (n *Native) Decode(path string) (*segment.RasterImage, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	raster := FromImage(img)

	n.logger.Info("NativeCodec", "image loaded", map[string]interface{}{
		"width":    raster.Width,
		"height":   raster.Height,
		"channels": raster.Channels,
		"format":   FormatFromPath(path),
	})

	return raster, nil
}

func (n *Native) Encode(path string, src *segment.RasterImage, res segment.Result) error {
	out, err := Render(src, res)
	if err != nil {
		return err
	}

	format := FormatFromPath(path)
	if _, err := imaging.FormatFromFilename(path); err != nil {
		n.logger.Warning("NativeCodec", "format not supported, using PNG", map[string]interface{}{
			"requested_format": format,
		})
		path += ".png"
		format = "png"
	}

	if err := imaging.Save(out, path, imaging.JPEGQuality(95)); err != nil {
		n.logger.Error("NativeCodec", err, map[string]interface{}{
			"format": format,
		})
		return fmt.Errorf("failed to encode image: %w", err)
	}

	n.logger.Info("NativeCodec", "image saved", map[string]interface{}{
		"format": format,
		"path":   path,
	})
	return nil
}

// FromImage copies any image.Image into a 4-channel RGBA raster. Alpha is
// kept but ignored by the segmentation.
func FromImage(img image.Image) *segment.RasterImage {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	return &segment.RasterImage{
		Height:   b.Dy(),
		Width:    b.Dx(),
		Channels: 4,
		Pix:      nrgba.Pix,
		Order:    segment.OrderRGB,
	}
}
