// Package filters implements the closed set of frame filters cameo applies
// between entering and exiting a frame.
package filters

import (
	"gocv.io/x/gocv"
)

type Kind int

const (
	KindConvolution Kind = iota
	KindCurve
	KindStroke
	KindChain
)

func (k Kind) String() string {
	switch k {
	case KindConvolution:
		return "convolution"
	case KindCurve:
		return "curve"
	case KindStroke:
		return "stroke"
	case KindChain:
		return "chain"
	default:
		return "unknown"
	}
}

// Filter writes a filtered copy of src into dst. dst may be &src.
// Implementations live in this package only.
type Filter interface {
	Name() string
	Kind() Kind
	Apply(src gocv.Mat, dst *gocv.Mat) error
	sealed()
}
