// Package capture runs the per-frame capture lifecycle: grab, lazy
// retrieve, display, snapshot and deferred video recording.
package capture

import (
	"errors"
	"fmt"
	"time"

	"cameo/internal/logger"

	"gocv.io/x/gocv"
)

var (
	ErrAlreadyEntered = errors.New("previous EnterFrame had no matching ExitFrame")
	ErrNoSource       = errors.New("no capture source")
	ErrGrabFailed     = errors.New("capture source grab failed")
	ErrNoFrame        = errors.New("no frame retrieved")
)

const (
	// DefaultCodec is the motion JPEG fourcc.
	DefaultCodec = "MJPG"

	// minFramesForEstimate is how many frames must elapse before the FPS
	// estimate is trusted for a recording.
	minFramesForEstimate = 20
)

// Clock supplies wall-clock time for frame rate estimation.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// VideoStatus reports what happened to the recording on one exit.
type VideoStatus int

const (
	VideoIdle VideoStatus = iota
	VideoDeferred
	VideoWritten
	VideoFailed
)

func (s VideoStatus) String() string {
	switch s {
	case VideoIdle:
		return "idle"
	case VideoDeferred:
		return "deferred"
	case VideoWritten:
		return "written"
	case VideoFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExitReport summarises one ExitFrame.
type ExitReport struct {
	// Frame is the 1-based index of the exited frame.
	Frame     int
	Displayed bool
	// ImagePath is the snapshot written this frame, if any.
	ImagePath string
	Video     VideoStatus
}

type Options struct {
	Display       Display
	MirrorPreview bool
	Images        ImageEncoder
	Videos        VideoWriterFactory
	Clock         Clock
	Logger        logger.Logger
	PoolSize      int
}

type recording struct {
	path   string
	codec  string
	writer VideoWriter
}

// Manager mediates one enter/exit cycle per frame. It is not safe for
// concurrent use.
type Manager struct {
	source  Source
	display Display
	images  ImageEncoder
	videos  VideoWriterFactory
	clock   Clock
	log     logger.Logger
	pool    *FramePool

	mirrorPreview bool
	mirrored      gocv.Mat

	channel   int
	entered   bool
	retrieved bool
	frame     *gocv.Mat

	imagePath string
	video     recording

	startTime     time.Time
	framesElapsed int
	fpsEstimate   float64
	hasEstimate   bool
}

func NewManager(source Source, opts Options) *Manager {
	if opts.Images == nil {
		opts.Images = IMWriteEncoder{}
	}
	if opts.Videos == nil {
		opts.Videos = GocvWriterFactory{}
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop{}
	}
	if opts.PoolSize < 1 {
		opts.PoolSize = 4
	}

	return &Manager{
		source:        source,
		display:       opts.Display,
		images:        opts.Images,
		videos:        opts.Videos,
		clock:         opts.Clock,
		log:           opts.Logger,
		pool:          NewFramePool(opts.PoolSize),
		mirrorPreview: opts.MirrorPreview,
		mirrored:      gocv.NewMat(),
	}
}

func (m *Manager) Channel() int {
	return m.channel
}

// SetChannel selects the source channel. A frame cached from the previous
// channel is dropped so the next Frame call decodes the new one.
func (m *Manager) SetChannel(channel int) {
	if m.channel == channel {
		return
	}
	m.channel = channel
	m.releaseFrame()
	m.retrieved = false
}

func (m *Manager) MirrorPreview() bool {
	return m.mirrorPreview
}

func (m *Manager) SetMirrorPreview(mirror bool) {
	m.mirrorPreview = mirror
}

func (m *Manager) Entered() bool {
	return m.entered
}

// EnterFrame grabs the next frame without decoding it. Calling it twice
// without ExitFrame returns ErrAlreadyEntered.
func (m *Manager) EnterFrame() error {
	if m.entered {
		return ErrAlreadyEntered
	}
	if m.source == nil {
		return ErrNoSource
	}

	m.entered = m.source.Grab()
	m.retrieved = false
	if !m.entered {
		return ErrGrabFailed
	}
	return nil
}

// Frame returns the current frame, retrieving it on first access within an
// entered cycle. The returned Mat may be filtered in place and is valid
// until ExitFrame.
func (m *Manager) Frame() (*gocv.Mat, bool) {
	if m.entered && !m.retrieved {
		m.retrieved = true
		buf := m.pool.Get()
		if m.source.Retrieve(m.channel, buf) && !buf.Empty() {
			m.frame = buf
		} else {
			m.pool.Put(buf)
		}
	}
	return m.frame, m.frame != nil
}

// ExitFrame displays and records the current frame then releases it. It
// returns ErrNoFrame when nothing could be retrieved. Snapshot and video
// failures are returned after the frame has been released.
func (m *Manager) ExitFrame() (ExitReport, error) {
	frame, ok := m.Frame()
	if !ok {
		m.entered = false
		m.retrieved = false
		return ExitReport{}, ErrNoFrame
	}

	now := m.clock.Now()
	if m.framesElapsed == 0 {
		m.startTime = now
	} else if elapsed := now.Sub(m.startTime).Seconds(); elapsed > 0 {
		m.fpsEstimate = float64(m.framesElapsed) / elapsed
		m.hasEstimate = true
	}
	m.framesElapsed++

	report := ExitReport{Frame: m.framesElapsed}
	var errs []error

	if m.display != nil {
		if m.mirrorPreview {
			gocv.Flip(*frame, &m.mirrored, 1)
			m.display.Show(m.mirrored)
		} else {
			m.display.Show(*frame)
		}
		report.Displayed = true
	}

	if m.imagePath != "" {
		path := m.imagePath
		m.imagePath = ""
		if err := m.images.WriteImage(path, *frame); err != nil {
			errs = append(errs, fmt.Errorf("snapshot: %w", err))
		} else {
			report.ImagePath = path
			m.log.Info("Capture", "snapshot written", map[string]interface{}{
				"path":  path,
				"frame": m.framesElapsed,
			})
		}
	}

	status, err := m.writeVideoFrame(*frame)
	report.Video = status
	if err != nil {
		errs = append(errs, err)
	}

	m.releaseFrame()
	m.entered = false
	m.retrieved = false

	return report, errors.Join(errs...)
}

// WriteImage requests a snapshot of the next exited frame.
func (m *Manager) WriteImage(path string) {
	m.imagePath = path
}

func (m *Manager) IsWritingImage() bool {
	return m.imagePath != ""
}

// StartWritingVideo records exited frames to path. The writer is created on
// the first exit that knows the frame rate. An empty codec means MJPG.
func (m *Manager) StartWritingVideo(path, codec string) {
	if codec == "" {
		codec = DefaultCodec
	}
	if m.video.writer != nil {
		m.closeWriter()
	}
	m.video = recording{path: path, codec: codec}
	m.log.Info("Capture", "video recording requested", map[string]interface{}{
		"path":  path,
		"codec": codec,
	})
}

// StopWritingVideo ends the recording and closes its writer.
func (m *Manager) StopWritingVideo() error {
	err := m.closeWriter()
	if m.video.path != "" {
		m.log.Info("Capture", "video recording stopped", map[string]interface{}{
			"path": m.video.path,
		})
	}
	m.video = recording{}
	return err
}

func (m *Manager) IsWritingVideo() bool {
	return m.video.path != ""
}

// FPSEstimate reports the running frame rate, undefined until two frames
// have exited.
func (m *Manager) FPSEstimate() (float64, bool) {
	return m.fpsEstimate, m.hasEstimate
}

func (m *Manager) FramesElapsed() int {
	return m.framesElapsed
}

// Close stops any recording and frees the manager's buffers. The source is
// left to its owner.
func (m *Manager) Close() error {
	err := m.StopWritingVideo()
	m.releaseFrame()
	m.entered = false
	released := m.pool.Cleanup()
	m.mirrored.Close()
	m.log.Debug("Capture", "frame buffers released", map[string]interface{}{
		"released":  released,
		"allocated": m.pool.Created(),
	})
	return err
}

func (m *Manager) writeVideoFrame(frame gocv.Mat) (VideoStatus, error) {
	if !m.IsWritingVideo() {
		return VideoIdle, nil
	}

	if m.video.writer == nil {
		fps := m.source.Get(PropFPS)
		if fps <= 0 {
			if m.framesElapsed < minFramesForEstimate || !m.hasEstimate {
				return VideoDeferred, nil
			}
			fps = m.fpsEstimate
		}

		width := int(m.source.Get(PropFrameWidth))
		height := int(m.source.Get(PropFrameHeight))
		if width <= 0 || height <= 0 {
			width, height = frame.Cols(), frame.Rows()
		}

		writer, err := m.videos.Open(m.video.path, m.video.codec, fps, width, height)
		if err != nil {
			path := m.video.path
			m.video = recording{}
			return VideoFailed, fmt.Errorf("start recording %s: %w", path, err)
		}
		m.video.writer = writer
		m.log.Info("Capture", "video writer opened", map[string]interface{}{
			"path":   m.video.path,
			"codec":  m.video.codec,
			"fps":    fps,
			"width":  width,
			"height": height,
		})
	}

	if err := m.video.writer.Write(frame); err != nil {
		return VideoFailed, fmt.Errorf("write video frame: %w", err)
	}
	return VideoWritten, nil
}

func (m *Manager) closeWriter() error {
	if m.video.writer == nil {
		return nil
	}
	err := m.video.writer.Close()
	m.video.writer = nil
	if err != nil {
		return fmt.Errorf("close video writer: %w", err)
	}
	return nil
}

func (m *Manager) releaseFrame() {
	if m.frame != nil {
		m.pool.Put(m.frame)
		m.frame = nil
	}
}
