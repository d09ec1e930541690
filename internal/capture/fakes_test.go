package capture

import (
	"errors"
	"time"

	"gocv.io/x/gocv"
)

type fakeSource struct {
	rows, cols int
	props      map[Property]float64
	grabOK     bool
	retrieveOK bool
	grabs      int
	retrieves  []int // channel of each Retrieve call
	pattern    func(rows, cols int) []byte
}

func newFakeSource(rows, cols int) *fakeSource {
	return &fakeSource{
		rows:       rows,
		cols:       cols,
		props:      map[Property]float64{PropFrameWidth: float64(cols), PropFrameHeight: float64(rows)},
		grabOK:     true,
		retrieveOK: true,
	}
}

func (s *fakeSource) Grab() bool {
	s.grabs++
	return s.grabOK
}

func (s *fakeSource) Retrieve(channel int, dst *gocv.Mat) bool {
	s.retrieves = append(s.retrieves, channel)
	if !s.retrieveOK {
		return false
	}

	var src gocv.Mat
	if s.pattern != nil {
		var err error
		src, err = gocv.NewMatFromBytes(s.rows, s.cols, gocv.MatTypeCV8UC3, s.pattern(s.rows, s.cols))
		if err != nil {
			return false
		}
	} else {
		v := float64(10 * (channel + 1))
		src = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), s.rows, s.cols, gocv.MatTypeCV8UC3)
	}
	defer src.Close()
	src.CopyTo(dst)
	return true
}

func (s *fakeSource) Get(prop Property) float64 {
	return s.props[prop]
}

func (s *fakeSource) Close() error { return nil }

type fakeDisplay struct {
	shown [][]byte
}

func (d *fakeDisplay) Show(frame gocv.Mat) {
	d.shown = append(d.shown, frame.ToBytes())
}

type fakeImages struct {
	paths []string
	err   error
}

func (e *fakeImages) WriteImage(path string, frame gocv.Mat) error {
	if e.err != nil {
		return e.err
	}
	e.paths = append(e.paths, path)
	return nil
}

type openCall struct {
	path, codec   string
	fps           float64
	width, height int
}

type fakeWriter struct {
	writes int
	closed bool
}

func (w *fakeWriter) Write(frame gocv.Mat) error {
	w.writes++
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeVideos struct {
	opens   []openCall
	writers []*fakeWriter
	err     error
}

func (f *fakeVideos) Open(path, codec string, fps float64, width, height int) (VideoWriter, error) {
	f.opens = append(f.opens, openCall{path, codec, fps, width, height})
	if f.err != nil {
		return nil, f.err
	}
	w := &fakeWriter{}
	f.writers = append(f.writers, w)
	return w, nil
}

func (f *fakeVideos) totalWrites() int {
	n := 0
	for _, w := range f.writers {
		n += w.writes
	}
	return n
}

// manualClock advances by step on every Now call.
type manualClock struct {
	now  time.Time
	step time.Duration
}

func (c *manualClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

var errDisk = errors.New("disk full")
