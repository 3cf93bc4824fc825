// Package pipeline wires decoding, segmentation and rendering together for a
// single input/output pair.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"rect-segmenter/internal/codec"
	"rect-segmenter/internal/logger"
	"rect-segmenter/internal/segment"
)

type Segmenter interface {
	Segment(img *segment.RasterImage) (segment.Result, error)
}

// StatsLogger is implemented by allocators that can report what they handed
// out.
type StatsLogger interface {
	LogStats()
}

// Report describes one completed run.
type Report struct {
	Input       string
	Output      string
	Width       int
	Height      int
	Order       segment.ChannelOrder
	Result      segment.Result
	SegmentTime time.Duration
}

// Hooks lets the caller observe the stages of Run, e.g. to print progress.
type Hooks struct {
	BeforeSegment func(img *segment.RasterImage)
	AfterSegment  func(elapsed time.Duration)
}

type Coordinator struct {
	codec     codec.Codec
	segmenter Segmenter
	stats     StatsLogger
	logger    logger.Logger
	hooks     Hooks
}

func NewCoordinator(c codec.Codec, s Segmenter, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Nop{}
	}

	coord := &Coordinator{
		codec:     c,
		segmenter: s,
		logger:    log,
	}

	log.Debug("PipelineCoordinator", "initialized", map[string]interface{}{
		"codec": c.Name(),
	})
	return coord
}

func (c *Coordinator) SetHooks(h Hooks) {
	c.hooks = h
}

// SetStatsLogger makes Run log allocator statistics after each segmentation.
func (c *Coordinator) SetStatsLogger(s StatsLogger) {
	c.stats = s
}

// Run decodes input, segments it and writes the rendering to output.
func (c *Coordinator) Run(ctx context.Context, input, output string) (*Report, error) {
	start := time.Now()

	img, err := c.codec.Decode(input)
	if err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"operation": "load_image",
			"path":      input,
		})
		return nil, err
	}

	c.logger.Info("PipelineCoordinator", "image loaded", map[string]interface{}{
		"width":     img.Width,
		"height":    img.Height,
		"channels":  img.Channels,
		"load_time": time.Since(start),
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if c.hooks.BeforeSegment != nil {
		c.hooks.BeforeSegment(img)
	}

	segStart := time.Now()
	res, err := c.segmenter.Segment(img)
	elapsed := time.Since(segStart)
	if err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"operation": "segment",
		})
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}

	if c.stats != nil {
		c.stats.LogStats()
	}

	if c.hooks.AfterSegment != nil {
		c.hooks.AfterSegment(elapsed)
	}

	c.logger.Info("PipelineCoordinator", "segmentation completed", map[string]interface{}{
		"rectangle":    res.Rectangle.String(),
		"utility":      res.Utility,
		"segment_time": elapsed,
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := c.codec.Encode(output, img, res); err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"operation": "save_image",
			"path":      output,
		})
		return nil, fmt.Errorf("failed to write result: %w", err)
	}

	return &Report{
		Input:       input,
		Output:      output,
		Width:       img.Width,
		Height:      img.Height,
		Order:       img.Order,
		Result:      res,
		SegmentTime: elapsed,
	}, nil
}
