package filters

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Kernel is a row-major convolution kernel.
type Kernel [][]float32

var (
	// SharpenKernel sharpens with a 1-pixel radius.
	SharpenKernel = Kernel{
		{-1, -1, -1},
		{-1, 9, -1},
		{-1, -1, -1},
	}

	// FindEdgesKernel turns edges white and non-edges black.
	FindEdgesKernel = Kernel{
		{-1, -1, -1},
		{-1, 8, -1},
		{-1, -1, -1},
	}

	// BlurKernel is a 2-pixel radius box blur.
	BlurKernel = Kernel{
		{0.04, 0.04, 0.04, 0.04, 0.04},
		{0.04, 0.04, 0.04, 0.04, 0.04},
		{0.04, 0.04, 0.04, 0.04, 0.04},
		{0.04, 0.04, 0.04, 0.04, 0.04},
		{0.04, 0.04, 0.04, 0.04, 0.04},
	}

	EmbossKernel = Kernel{
		{-2, -1, 0},
		{-1, 1, 1},
		{0, 1, 2},
	}
)

func (k Kernel) validate() error {
	rows := len(k)
	if rows == 0 || rows%2 == 0 {
		return fmt.Errorf("kernel with %d rows: %w", rows, ErrKernelSize)
	}
	for i, row := range k {
		if len(row) != rows {
			return fmt.Errorf("kernel row %d has %d columns, want %d: %w", i, len(row), rows, ErrKernelSize)
		}
	}
	return nil
}

// ConvolutionFilter convolves every channel with a fixed kernel, keeping
// depth and channel count.
type ConvolutionFilter struct {
	name   string
	kernel Kernel
}

func NewConvolutionFilter(name string, kernel Kernel) (*ConvolutionFilter, error) {
	if err := kernel.validate(); err != nil {
		return nil, fmt.Errorf("convolution filter %s: %w", name, err)
	}

	copied := make(Kernel, len(kernel))
	for i, row := range kernel {
		copied[i] = append([]float32(nil), row...)
	}

	return &ConvolutionFilter{name: name, kernel: copied}, nil
}

func mustConvolution(name string, kernel Kernel) *ConvolutionFilter {
	f, err := NewConvolutionFilter(name, kernel)
	if err != nil {
		panic(err)
	}
	return f
}

func NewSharpenFilter() *ConvolutionFilter   { return mustConvolution("sharpen", SharpenKernel) }
func NewFindEdgesFilter() *ConvolutionFilter { return mustConvolution("find_edges", FindEdgesKernel) }
func NewBlurFilter() *ConvolutionFilter      { return mustConvolution("blur", BlurKernel) }
func NewEmbossFilter() *ConvolutionFilter    { return mustConvolution("emboss", EmbossKernel) }

func (c *ConvolutionFilter) Name() string { return c.name }
func (c *ConvolutionFilter) Kind() Kind   { return KindConvolution }
func (c *ConvolutionFilter) sealed()      {}

// Kernel returns a copy of the filter's kernel.
func (c *ConvolutionFilter) Kernel() Kernel {
	out := make(Kernel, len(c.kernel))
	for i, row := range c.kernel {
		out[i] = append([]float32(nil), row...)
	}
	return out
}

func (c *ConvolutionFilter) Apply(src gocv.Mat, dst *gocv.Mat) error {
	if dst == nil {
		return fmt.Errorf("%s: %w", c.name, ErrNilDest)
	}
	if err := validateMatForOperation(src, c.name); err != nil {
		return err
	}

	size := len(c.kernel)
	kernel := gocv.NewMatWithSize(size, size, gocv.MatTypeCV32FC1)
	defer kernel.Close()

	for r, row := range c.kernel {
		for col, v := range row {
			kernel.SetFloatAt(r, col, v)
		}
	}

	// ddepth -1 keeps the source depth
	gocv.Filter2D(src, dst, gocv.MatType(-1), kernel, image.Pt(-1, -1), 0, gocv.BorderDefault)
	return nil
}
