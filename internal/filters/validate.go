package filters

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	ErrEmptyMat   = errors.New("mat is empty")
	ErrChannels   = errors.New("unsupported channel count")
	ErrDepth      = errors.New("unsupported mat depth")
	ErrKernelSize = errors.New("invalid kernel size")
	ErrNilDest    = errors.New("destination mat is nil")
)

func validateMatForOperation(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("%s: %w", operation, ErrEmptyMat)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("%s: invalid dimensions %dx%d: %w", operation, mat.Cols(), mat.Rows(), ErrEmptyMat)
	}

	return nil
}

// validate8U checks src is a non-empty 8-bit image with 1 or 3 channels.
func validate8U(src gocv.Mat, dst *gocv.Mat, operation string) error {
	if dst == nil {
		return fmt.Errorf("%s: %w", operation, ErrNilDest)
	}
	if err := validateMatForOperation(src, operation); err != nil {
		return err
	}

	switch src.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3:
	default:
		return fmt.Errorf("%s: mat type %d, want 8-bit with 1 or 3 channels: %w", operation, int(src.Type()), ErrDepth)
	}

	return nil
}

// validateApertureSize checks an odd kernel size in [1, 31].
func validateApertureSize(size int, operation string) error {
	if size < 1 || size > 31 || size%2 == 0 {
		return fmt.Errorf("%s: size %d: %w", operation, size, ErrKernelSize)
	}
	return nil
}
