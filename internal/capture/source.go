package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Property is a capture source property the manager queries.
type Property int

const (
	PropFrameWidth Property = iota
	PropFrameHeight
	PropFPS
)

// Source is a frame producer with separate grab and retrieve steps.
type Source interface {
	// Grab advances to the next frame and reports whether one is available.
	Grab() bool
	// Retrieve decodes the grabbed frame from channel into dst.
	Retrieve(channel int, dst *gocv.Mat) bool
	// Get returns a property value, zero or negative when unknown.
	Get(prop Property) float64
	Close() error
}

// VideoSource adapts a gocv.VideoCapture. gocv reads and decodes in one
// call, so Grab stages the decoded frame and Retrieve copies it out. Only
// channel 0 is available.
type VideoSource struct {
	capture *gocv.VideoCapture
	staged  gocv.Mat
	ready   bool
}

// OpenVideoSource opens the stream at source when set, the camera at device
// otherwise.
func OpenVideoSource(device int, source string) (*VideoSource, error) {
	var (
		capture *gocv.VideoCapture
		err     error
	)
	if source != "" {
		capture, err = gocv.OpenVideoCapture(source)
	} else {
		capture, err = gocv.OpenVideoCapture(device)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open capture source: %w", err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("capture source not opened (device %d, source %q)", device, source)
	}

	return &VideoSource{
		capture: capture,
		staged:  gocv.NewMat(),
	}, nil
}

func (v *VideoSource) Grab() bool {
	v.ready = v.capture.Read(&v.staged) && !v.staged.Empty()
	return v.ready
}

func (v *VideoSource) Retrieve(channel int, dst *gocv.Mat) bool {
	if channel != 0 || !v.ready {
		return false
	}
	v.staged.CopyTo(dst)
	return true
}

func (v *VideoSource) Get(prop Property) float64 {
	switch prop {
	case PropFrameWidth:
		return v.capture.Get(gocv.VideoCaptureFrameWidth)
	case PropFrameHeight:
		return v.capture.Get(gocv.VideoCaptureFrameHeight)
	case PropFPS:
		return v.capture.Get(gocv.VideoCaptureFPS)
	default:
		return 0
	}
}

func (v *VideoSource) Close() error {
	v.ready = false
	v.staged.Close()
	return v.capture.Close()
}
