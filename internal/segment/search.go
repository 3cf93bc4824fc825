package segment

import (
	"rect-segmenter/internal/colorvec"
)

// shape holds the per-(dy, dx) constants shared by every position.
type shape struct {
	dy, dx     int
	invCardIn  float64
	invCardOut float64
}

func newShape(t *Table, dy, dx int) shape {
	cardIn := dy * dx
	cardOut := t.Height*t.Width - cardIn

	s := shape{dy: dy, dx: dx, invCardIn: 1.0 / float64(cardIn)}
	if cardOut > 0 {
		s.invCardOut = 1.0 / float64(cardOut)
	}
	return s
}

// utility scores a rectangle from its channel sum vx:
//
//	sum_c vx_c^2/cardIn + (last_c - vx_c)^2/cardOut
//
// which is cardIn*meanIn^2 + cardOut*meanOut^2 per channel. The total sum of
// squares is fixed, so the largest utility is the smallest squared error.
func (s *shape) utility(vx, last colorvec.Vec3) float64 {
	var u float64
	for c := range vx {
		rest := last[c] - vx[c]
		u += vx[c]*vx[c]*s.invCardIn + rest*rest*s.invCardOut
	}
	return u
}

// Evaluate scores the single rectangle r against t.
func Evaluate(t *Table, r Rectangle) Result {
	s := newShape(t, r.Y1-r.Y0, r.X1-r.X0)
	vx := t.Sum(r)
	return Result{
		Rectangle: r,
		Inner:     vx.Scale(s.invCardIn),
		Outer:     t.Last.Sub(vx).Scale(s.invCardOut),
		Utility:   s.utility(vx, t.Last),
	}
}

// scanShape visits every position of one shape and offers the winners to
// best.
func scanShape(t *Table, s shape, best *candidate) {
	stride := t.Width + 1
	last := t.Last
	cells := t.Cells

	for y0 := 0; y0+s.dy <= t.Height; y0++ {
		top := cells[y0*stride : (y0+1)*stride]
		bottom := cells[(y0+s.dy)*stride : (y0+s.dy+1)*stride]

		for x0 := 0; x0+s.dx <= t.Width; x0++ {
			x1 := x0 + s.dx
			a, b, c, d := bottom[x1], bottom[x0], top[x1], top[x0]
			vx := colorvec.Vec3{
				a[0] - b[0] - c[0] + d[0],
				a[1] - b[1] - c[1] + d[1],
				a[2] - b[2] - c[2] + d[2],
			}

			u := s.utility(vx, last)
			if best.set && u < best.Utility {
				continue
			}

			r := Result{
				Rectangle: Rectangle{Y0: y0, X0: x0, Y1: y0 + s.dy, X1: x1},
				Inner:     vx.Scale(s.invCardIn),
				Outer:     last.Sub(vx).Scale(s.invCardOut),
				Utility:   u,
			}
			best.offer(&r)
		}
	}
}

// searchSequential walks the whole shape grid on the calling goroutine.
func searchSequential(t *Table) (Result, error) {
	if t.Height < 1 || t.Width < 1 {
		return Result{}, ErrNoCandidates
	}

	var best candidate
	for dy := 1; dy <= t.Height; dy++ {
		for dx := 1; dx <= t.Width; dx++ {
			scanShape(t, newShape(t, dy, dx), &best)
		}
	}
	return best.Result, nil
}
