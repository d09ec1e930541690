// Package window provides the display and keyboard backends of cameo.
package window

import (
	"gocv.io/x/gocv"

	"cameo/internal/logger"
)

// Key codes the application reacts to.
const (
	KeyTab    = 9
	KeySpace  = 32
	KeyEscape = 27
)

// KeyHandler receives key codes. It is never called with -1.
type KeyHandler func(key int)

// Window shows frames and polls keyboard events once per loop iteration.
type Window interface {
	Create() error
	IsCreated() bool
	Show(frame gocv.Mat)
	ProcessEvents()
	Destroy() error
	SetKeyHandler(onKey KeyHandler)
}

// highguiWindow is the part of *gocv.Window HighGUI drives.
type highguiWindow interface {
	IMShow(img gocv.Mat)
	WaitKey(delay int) int
	IsOpen() bool
	Close() error
}

// HighGUI is a window backed by OpenCV's HighGUI.
type HighGUI struct {
	name      string
	onKey     KeyHandler
	log       logger.Logger
	window    highguiWindow
	newWindow func(name string) highguiWindow
}

func NewHighGUI(name string, log logger.Logger) *HighGUI {
	if log == nil {
		log = logger.Nop{}
	}
	return &HighGUI{
		name: name,
		log:  log,
		newWindow: func(name string) highguiWindow {
			return gocv.NewWindow(name)
		},
	}
}

func (h *HighGUI) SetKeyHandler(onKey KeyHandler) {
	h.onKey = onKey
}

func (h *HighGUI) Create() error {
	if h.window != nil {
		return nil
	}
	h.window = h.newWindow(h.name)
	return nil
}

func (h *HighGUI) IsCreated() bool {
	return h.window != nil
}

func (h *HighGUI) Show(frame gocv.Mat) {
	if h.window == nil || frame.Empty() {
		return
	}
	h.window.IMShow(frame)
}

// ProcessEvents waits 1ms for a key. A window closed by the user counts as
// destroyed.
func (h *HighGUI) ProcessEvents() {
	if h.window == nil {
		return
	}

	key := h.window.WaitKey(1)
	if key >= 0 && h.onKey != nil {
		h.onKey(key & 0xFF)
	}

	if h.window != nil && !h.window.IsOpen() {
		if err := h.Destroy(); err != nil {
			h.log.Error("Window", err, map[string]interface{}{"window": h.name})
		}
	}
}

func (h *HighGUI) Destroy() error {
	if h.window == nil {
		return nil
	}
	err := h.window.Close()
	h.window = nil
	return err
}
