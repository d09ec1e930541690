package curves

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Func is a scalar intensity mapping. A nil Func is the identity.
type Func func(x float64) float64

// Kind names the interpolation used for a control point set.
type Kind int

const (
	KindNone Kind = iota
	KindLinear
	KindQuadratic
	KindCubic
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindQuadratic:
		return "quadratic"
	case KindCubic:
		return "cubic"
	default:
		return "none"
	}
}

// KindFor reports the interpolation chosen for n control points.
func KindFor(n int) Kind {
	switch {
	case n < 2:
		return KindNone
	case n == 2:
		return KindLinear
	case n == 3:
		return KindQuadratic
	default:
		return KindCubic
	}
}

// NewCurveFunc returns the function interpolating points, or nil when fewer
// than two points are given. Inputs outside the control point range evaluate
// to NaN.
func NewCurveFunc(points Points) (Func, error) {
	kind := KindFor(len(points))
	if kind == KindNone {
		return nil, nil
	}

	for i := 1; i < len(points); i++ {
		if !(points[i].In > points[i-1].In) {
			return nil, fmt.Errorf("point %d input %g after %g: %w", i, points[i].In, points[i-1].In, ErrNotIncreasing)
		}
	}

	xs, ys := points.split()
	switch kind {
	case KindLinear:
		return fitted(&interp.PiecewiseLinear{}, xs, ys)
	case KindQuadratic:
		return quadratic(xs, ys), nil
	default:
		return fitted(&interp.NotAKnotCubic{}, xs, ys)
	}
}

// rangeTolerance absorbs rounding error when a composed curve lands just
// past an end knot.
const rangeTolerance = 1e-9

// clampToRange pulls x onto the knot range when it is within tolerance of
// it. ok is false for genuine extrapolation.
func clampToRange(xs []float64, x float64) (float64, bool) {
	lo, hi := xs[0], xs[len(xs)-1]
	switch {
	case math.IsNaN(x):
		return x, false
	case x < lo:
		return lo, lo-x <= rangeTolerance
	case x > hi:
		return hi, x-hi <= rangeTolerance
	}
	return x, true
}

// fitted fits p to the knots and wraps its prediction so that points off
// the knot range evaluate to NaN; gonum extrapolates there.
func fitted(p interp.FittablePredictor, xs, ys []float64) (Func, error) {
	if err := p.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit curve: %w", err)
	}
	return func(x float64) float64 {
		x, ok := clampToRange(xs, x)
		if !ok {
			return math.NaN()
		}
		return p.Predict(x)
	}, nil
}

// quadratic is the parabola through three points.
func quadratic(xs, ys []float64) Func {
	x0, x1, x2 := xs[0], xs[1], xs[2]
	y0, y1, y2 := ys[0], ys[1], ys[2]
	return func(x float64) float64 {
		x, ok := clampToRange(xs, x)
		if !ok {
			return math.NaN()
		}
		l0 := (x - x1) * (x - x2) / ((x0 - x1) * (x0 - x2))
		l1 := (x - x0) * (x - x2) / ((x1 - x0) * (x1 - x2))
		l2 := (x - x0) * (x - x1) / ((x2 - x0) * (x2 - x1))
		return y0*l0 + y1*l1 + y2*l2
	}
}

// Compose returns a function applying master first, then channel.
func Compose(channel, master Func) Func {
	if channel == nil {
		return master
	}
	if master == nil {
		return channel
	}
	return func(x float64) float64 {
		return channel(master(x))
	}
}
