/*Package interp implements one-dimensional linear interpolation over
ordered sample axes.

Out-of-range queries are clamped to the value of the nearest boundary sample
instead of extrapolating, and a NaN query yields NaN.
*/
package interp

import "math"

// Axis is an ordered sequence of sample coordinates. Implementations may
// compute values on demand, which lets derived quantities be interpolated
// without being stored.
type Axis interface {
	Len() int
	At(i int) float64
}

// Slice adapts a []float64 to an Axis.
type Slice []float64

func (s Slice) Len() int { return len(s) }
func (s Slice) At(i int) float64 { return s[i] }

// Func adapts an index function to an Axis of length N.
type Func struct {
	N int
	F func(i int) float64
}

func (f Func) Len() int { return f.N }
func (f Func) At(i int) float64 { return f.F(i) }

// Linear evaluates the piecewise-linear function through (xs[i], ys[i]) at x.
// xs must be non-decreasing and the two axes must have equal length.
//
// Linear panics if the axes are empty or of different lengths.
func Linear(xs, ys Axis, x float64) float64 {
	n := xs.Len()
	if n == 0 || n != ys.Len() {
		panic("interp: axes must be non-empty and of equal length")
	}
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x <= xs.At(0) {
		return ys.At(0)
	}
	if x >= xs.At(n-1) {
		return ys.At(n - 1)
	}

	i := search(xs, x)
	x1, x2 := xs.At(i), xs.At(i+1)
	y1, y2 := ys.At(i), ys.At(i+1)
	if x == x1 {
		return y1
	}

	return ((y2-y1)/(x2-x1))*(x-x1) + y1
}

// LinearAll evaluates Linear at every x. If an output slice is given, the
// results are written to it (it is still returned as a convenience).
//
// If more than one output slice is provided, only the first is used.
func LinearAll(xs, ys Axis, x []float64, out ...[]float64) []float64 {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(x))}
	}
	for i, v := range x {
		out[0][i] = Linear(xs, ys, v)
	}
	return out[0]
}

// search returns i with xs[i] <= x < xs[i+1]. The caller guarantees
// xs[0] < x < xs[n-1].
func search(xs Axis, x float64) int {
	n := xs.Len()
	x0, lim := xs.At(0), xs.At(n-1)

	// Guess under the assumption of uniform spacing.
	dx := (lim - x0) / float64(n-1)
	if dx > 0 {
		guess := int((x - x0) / dx)
		if guess >= 0 && guess < n-1 && xs.At(guess) <= x && x < xs.At(guess+1) {
			return guess
		}
	}

	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if x >= xs.At(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
