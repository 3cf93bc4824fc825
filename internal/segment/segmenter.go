package segment

import (
	"fmt"
	"time"

	"rect-segmenter/internal/colorvec"
	"rect-segmenter/internal/logger"
	"rect-segmenter/internal/memory"
	"rect-segmenter/internal/parallel"
)

// Allocator supplies the transient vector buffers. memory.Manager satisfies
// it.
type Allocator interface {
	Alloc(count int, tag string) ([]colorvec.Vec3, error)
	Free(buf []colorvec.Vec3, tag string)
}

const (
	tagVectors = "normalized_vectors"
	tagTable   = "summed_area_table"
)

type Segmenter struct {
	workers   int
	allocator Allocator
	logger    logger.Logger
}

type Option func(*Segmenter)

// WithWorkers sets the number of goroutines; n <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Segmenter) { s.workers = n }
}

func WithAllocator(a Allocator) Option {
	return func(s *Segmenter) { s.allocator = a }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Segmenter) { s.logger = l }
}

func New(opts ...Option) *Segmenter {
	s := &Segmenter{}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Nop{}
	}
	if s.allocator == nil {
		s.allocator = memory.NewManager(s.logger, 0)
	}
	return s
}

// Segment runs a one-off segmentation with default settings.
func Segment(img *RasterImage) (Result, error) {
	return New().Segment(img)
}

// Segment returns the rectangle and the two flat colors that best
// approximate img. It fails with *InvalidImageError before doing any work if
// the image is empty or has fewer than three channels; allocation failures
// are returned unchanged.
func (s *Segmenter) Segment(img *RasterImage) (Result, error) {
	if err := img.Validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	workers := parallel.Workers(s.workers)
	h, w := img.Height, img.Width

	table, err := s.buildTable(workers, img)
	if err != nil {
		return Result{}, err
	}
	defer s.allocator.Free(table.Cells, tagTable)

	tableTime := time.Since(start)

	res, err := search(workers, table)
	if err != nil {
		return Result{}, err
	}

	s.logger.Debug("Segmenter", "search completed", map[string]interface{}{
		"width":      w,
		"height":     h,
		"workers":    workers,
		"shapes":     h * w,
		"candidates": candidateCount(h, w),
		"table_time": tableTime,
		"total_time": time.Since(start),
		"rectangle":  res.Rectangle.String(),
		"utility":    res.Utility,
	})

	return res, nil
}

// buildTable normalizes img into a scratch buffer and turns it into a
// summed-area table. The scratch buffer is released before returning.
func (s *Segmenter) buildTable(workers int, img *RasterImage) (*Table, error) {
	h, w := img.Height, img.Width

	vectors, err := s.allocator.Alloc(h*w, tagVectors)
	if err != nil {
		return nil, err
	}
	defer s.allocator.Free(vectors, tagVectors)

	if err := Normalize(workers, img, vectors); err != nil {
		return nil, err
	}

	cells, err := s.allocator.Alloc(TableCells(h, w), tagTable)
	if err != nil {
		return nil, err
	}

	table, err := BuildTable(workers, vectors, h, w, cells)
	if err != nil {
		s.allocator.Free(cells, tagTable)
		return nil, fmt.Errorf("failed to build summed-area table: %w", err)
	}
	return table, nil
}

// candidateCount is the number of rectangles in an h x w image,
// h(h+1)/2 * w(w+1)/2.
func candidateCount(h, w int) int64 {
	return int64(h) * int64(h+1) / 2 * (int64(w) * int64(w+1) / 2)
}
