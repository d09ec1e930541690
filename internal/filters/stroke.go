package filters

import (
	"fmt"

	"gocv.io/x/gocv"
)

const (
	DefaultBlurKsize = 7
	DefaultEdgeKsize = 5
)

// StrokeEdgesFilter darkens edges found by a Laplacian and leaves flat
// regions untouched.
type StrokeEdgesFilter struct {
	blurKsize int
	edgeKsize int
}

// NewStrokeEdgesFilter takes the median blur aperture (below 3 disables the
// blur) and the Laplacian aperture.
func NewStrokeEdgesFilter(blurKsize, edgeKsize int) (*StrokeEdgesFilter, error) {
	if blurKsize >= 3 && blurKsize%2 == 0 {
		return nil, fmt.Errorf("stroke_edges blur: size %d: %w", blurKsize, ErrKernelSize)
	}
	if err := validateApertureSize(edgeKsize, "stroke_edges laplacian"); err != nil {
		return nil, err
	}
	return &StrokeEdgesFilter{blurKsize: blurKsize, edgeKsize: edgeKsize}, nil
}

func (s *StrokeEdgesFilter) Name() string { return "stroke_edges" }
func (s *StrokeEdgesFilter) Kind() Kind   { return KindStroke }
func (s *StrokeEdgesFilter) sealed()      {}

func (s *StrokeEdgesFilter) Apply(src gocv.Mat, dst *gocv.Mat) error {
	if err := validate8U(src, dst, s.Name()); err != nil {
		return err
	}

	gray := gocv.NewMat()
	defer gray.Close()
	s.grayscale(src, &gray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Laplacian(gray, &edges, gocv.MatTypeCV8U, s.edgeKsize, 1, 0, gocv.BorderDefault)

	edgeData, err := edges.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("%s: access edge data: %w", s.Name(), err)
	}

	channels := gocv.Split(src)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	for i := range channels {
		data, err := channels[i].DataPtrUint8()
		if err != nil {
			return fmt.Errorf("%s: access channel %d: %w", s.Name(), i, err)
		}
		if err := attenuate(data, edgeData); err != nil {
			return fmt.Errorf("%s: channel %d: %w", s.Name(), i, err)
		}
	}

	gocv.Merge(channels, dst)
	return nil
}

func (s *StrokeEdgesFilter) grayscale(src gocv.Mat, gray *gocv.Mat) {
	input := src
	if s.blurKsize >= 3 {
		blurred := gocv.NewMat()
		defer blurred.Close()
		gocv.MedianBlur(src, &blurred, s.blurKsize)
		input = blurred
	}

	if input.Channels() == 1 {
		input.CopyTo(gray)
		return
	}
	gocv.CvtColor(input, gray, gocv.ColorBGRToGray)
}

// attenuate scales each sample by (255-edge)/255, truncating. A zero edge
// keeps the sample, a full edge blackens it.
func attenuate(channel, edges []uint8) error {
	if len(channel) != len(edges) {
		return fmt.Errorf("channel has %d samples, edge map %d: %w", len(channel), len(edges), ErrChannels)
	}
	for i, e := range edges {
		channel[i] = uint8(uint32(channel[i]) * uint32(255-e) / 255)
	}
	return nil
}
