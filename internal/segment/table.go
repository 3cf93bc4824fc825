package segment

import (
	"fmt"

	"rect-segmenter/internal/colorvec"
	"rect-segmenter/internal/parallel"
)

// Table is an inclusive summed-area table over Height x Width vectors, stored
// as (Height+1) x (Width+1) cells with a zero first row and column. Cell
// (y, x) holds the sum of every vector above and to the left of it.
type Table struct {
	Height int
	Width  int
	Cells  []colorvec.Vec3
	// Last is the sum over the whole image.
	Last colorvec.Vec3
}

// TableCells is the number of vectors a table for h x w pixels occupies.
func TableCells(h, w int) int {
	return (h + 1) * (w + 1)
}

// At returns cell (y, x), 0 <= y <= Height, 0 <= x <= Width.
func (t *Table) At(y, x int) colorvec.Vec3 {
	return t.Cells[y*(t.Width+1)+x]
}

// Sum returns the sum of the vectors inside r in four lookups.
func (t *Table) Sum(r Rectangle) colorvec.Vec3 {
	stride := t.Width + 1
	a := t.Cells[r.Y1*stride+r.X1]
	b := t.Cells[r.Y1*stride+r.X0]
	c := t.Cells[r.Y0*stride+r.X1]
	d := t.Cells[r.Y0*stride+r.X0]
	return colorvec.Vec3{
		a[0] - b[0] - c[0] + d[0],
		a[1] - b[1] - c[1] + d[1],
		a[2] - b[2] - c[2] + d[2],
	}
}

// BuildTable fills dst with the summed-area table of vectors, an h x w
// row-major grid. Row prefix sums are computed in parallel across rows, then
// rows are accumulated top to bottom in parallel across column blocks.
func BuildTable(workers int, vectors []colorvec.Vec3, h, w int, dst []colorvec.Vec3) (*Table, error) {
	if h < 1 || w < 1 {
		return nil, ErrNoCandidates
	}
	if len(vectors) < h*w {
		return nil, fmt.Errorf("summed-area table: have %d vectors, need %d", len(vectors), h*w)
	}
	if len(dst) < TableCells(h, w) {
		return nil, fmt.Errorf("summed-area table: buffer holds %d cells, need %d", len(dst), TableCells(h, w))
	}

	stride := w + 1
	cells := dst[:TableCells(h, w)]

	for x := 0; x < stride; x++ {
		cells[x] = colorvec.Vec3{}
	}

	parallel.For(workers, h, func(start, end int) {
		for i := start + 1; i <= end; i++ {
			row := cells[i*stride : (i+1)*stride]
			src := vectors[(i-1)*w : i*w]
			row[0] = colorvec.Vec3{}
			for j, v := range src {
				row[j+1] = row[j].Add(v)
			}
		}
	})

	parallel.For(workers, stride, func(start, end int) {
		for i := 1; i <= h; i++ {
			prev := cells[(i-1)*stride : i*stride]
			row := cells[i*stride : (i+1)*stride]
			for j := start; j < end; j++ {
				row[j] = prev[j].Add(row[j])
			}
		}
	})

	return &Table{
		Height: h,
		Width:  w,
		Cells:  cells,
		Last:   cells[h*stride+w],
	}, nil
}
