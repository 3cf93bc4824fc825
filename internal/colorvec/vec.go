// Package colorvec holds the three-channel float vector shared by the
// allocator, the summed-area table and the segmentation result.
package colorvec

import "math"

// Vec3 is one pixel's color, one float per channel, in the channel order of
// the image it came from.
type Vec3 [3]float64

// Bytes is the size of one Vec3 in memory.
const Bytes = 24

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{v[0] * k, v[1] * k, v[2] * k}
}

// SquaredNorm returns the sum of the squared channels.
func (v Vec3) SquaredNorm() float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// Sum returns the sum of the channels.
func (v Vec3) Sum() float64 {
	return v[0] + v[1] + v[2]
}

// ApproxEqual reports whether every channel differs by at most tol.
func (v Vec3) ApproxEqual(o Vec3, tol float64) bool {
	for c := range v {
		if math.Abs(v[c]-o[c]) > tol {
			return false
		}
	}
	return true
}

// Byte converts a normalized channel back to 0..255, clamping and rounding.
func Byte(x float64) uint8 {
	switch {
	case x <= 0 || math.IsNaN(x):
		return 0
	case x >= 1:
		return 255
	}
	return uint8(math.Round(x * 255))
}
