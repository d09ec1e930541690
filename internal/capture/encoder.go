package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Display shows exited frames.
type Display interface {
	Show(frame gocv.Mat)
}

// ImageEncoder writes single frame snapshots.
type ImageEncoder interface {
	WriteImage(path string, frame gocv.Mat) error
}

// VideoWriter appends frames to an open recording.
type VideoWriter interface {
	Write(frame gocv.Mat) error
	Close() error
}

// VideoWriterFactory opens recordings once their frame rate and size are known.
type VideoWriterFactory interface {
	Open(path, codec string, fps float64, width, height int) (VideoWriter, error)
}

// IMWriteEncoder encodes snapshots with OpenCV, choosing the format from the
// file extension.
type IMWriteEncoder struct{}

func (IMWriteEncoder) WriteImage(path string, frame gocv.Mat) error {
	if frame.Empty() {
		return fmt.Errorf("cannot write empty frame to %s", path)
	}
	if !gocv.IMWrite(path, frame) {
		return fmt.Errorf("failed to write image %s", path)
	}
	return nil
}

// GocvWriterFactory opens OpenCV video writers for color frames.
type GocvWriterFactory struct{}

func (GocvWriterFactory) Open(path, codec string, fps float64, width, height int) (VideoWriter, error) {
	writer, err := gocv.VideoWriterFile(path, codec, fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open video writer %s: %w", path, err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("video writer %s not opened (codec %s, %dx%d @ %.2f fps)", path, codec, width, height, fps)
	}
	return writer, nil
}
