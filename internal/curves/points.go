package curves

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotIncreasing = errors.New("control point inputs must be strictly increasing")
	ErrOutOfRange    = errors.New("control point outside intensity domain")
)

// Point is one sample of a desired intensity mapping.
type Point struct {
	In  float64
	Out float64
}

// Points is an ordered control point set. Inputs are strictly increasing.
type Points []Point

// Pts builds a Points set from (in, out) pairs.
func Pts(pairs ...[2]float64) Points {
	points := make(Points, len(pairs))
	for i, p := range pairs {
		points[i] = Point{In: p[0], Out: p[1]}
	}
	return points
}

func (p Points) Validate(domainMax float64) error {
	for i, pt := range p {
		if math.IsNaN(pt.In) || math.IsNaN(pt.Out) {
			return fmt.Errorf("point %d: %w", i, ErrOutOfRange)
		}
		if pt.In < 0 || pt.In > domainMax || pt.Out < 0 || pt.Out > domainMax {
			return fmt.Errorf("point %d (%g,%g) not in [0,%g]: %w", i, pt.In, pt.Out, domainMax, ErrOutOfRange)
		}
		if i > 0 && pt.In <= p[i-1].In {
			return fmt.Errorf("point %d input %g after %g: %w", i, pt.In, p[i-1].In, ErrNotIncreasing)
		}
	}
	return nil
}

func (p Points) split() (xs, ys []float64) {
	xs = make([]float64, len(p))
	ys = make([]float64, len(p))
	for i, pt := range p {
		xs[i] = pt.In
		ys[i] = pt.Out
	}
	return xs, ys
}
