package window

import (
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"gocv.io/x/gocv"
)

const (
	displayWidth  = 640
	displayHeight = 480
	keyBuffer     = 16
)

// Fyne shows frames in a fyne window. Fyne owns the main goroutine, so
// frames are handed over with fyne.Do and key presses come back through a
// buffered channel drained by ProcessEvents.
type Fyne struct {
	window  fyne.Window
	image   *canvas.Image
	onKey   KeyHandler
	keys    chan int
	created atomic.Bool
}

// NewFyne builds the window. Call it from the goroutine running the fyne app.
func NewFyne(app fyne.App, name string) *Fyne {
	f := &Fyne{
		keys: make(chan int, keyBuffer),
	}

	f.image = canvas.NewImageFromImage(nil)
	f.image.FillMode = canvas.ImageFillContain
	f.image.SetMinSize(fyne.NewSize(displayWidth, displayHeight))

	f.window = app.NewWindow(name)
	f.window.SetContent(f.image)
	f.window.Resize(fyne.NewSize(displayWidth, displayHeight))
	f.window.Canvas().SetOnTypedRune(f.typedRune)
	f.window.Canvas().SetOnTypedKey(f.typedKey)
	f.window.SetOnClosed(func() {
		f.created.Store(false)
	})

	return f
}

func (f *Fyne) SetKeyHandler(onKey KeyHandler) {
	f.onKey = onKey
}

func (f *Fyne) Create() error {
	if f.created.Swap(true) {
		return nil
	}
	fyne.Do(f.window.Show)
	return nil
}

func (f *Fyne) IsCreated() bool {
	return f.created.Load()
}

// Show converts the frame before handing it to fyne, so the caller may
// reuse the Mat immediately.
func (f *Fyne) Show(frame gocv.Mat) {
	if !f.IsCreated() || frame.Empty() {
		return
	}

	img, err := frame.ToImage()
	if err != nil {
		return
	}

	fyne.Do(func() {
		f.image.Image = img
		f.image.Refresh()
	})
}

func (f *Fyne) ProcessEvents() {
	for {
		select {
		case key := <-f.keys:
			if f.onKey != nil {
				f.onKey(key)
			}
		default:
			return
		}
	}
}

func (f *Fyne) Destroy() error {
	if !f.created.Swap(false) {
		return nil
	}
	fyne.Do(f.window.Close)
	return nil
}

func (f *Fyne) typedRune(r rune) {
	if code, ok := runeCode(r); ok {
		f.push(code)
	}
}

func (f *Fyne) typedKey(ev *fyne.KeyEvent) {
	if code, ok := keyCode(ev.Name); ok {
		f.push(code)
	}
}

// push drops the key when the loop has fallen behind.
func (f *Fyne) push(code int) {
	select {
	case f.keys <- code:
	default:
	}
}

// runeCode maps printable ASCII, space included, to its code.
func runeCode(r rune) (int, bool) {
	if r < 0x20 || r > 0x7e {
		return 0, false
	}
	return int(r), true
}

// keyCode maps the non-printable keys fyne reports as key events. Space is
// delivered as a rune.
func keyCode(name fyne.KeyName) (int, bool) {
	switch name {
	case fyne.KeyTab:
		return KeyTab, true
	case fyne.KeyEscape:
		return KeyEscape, true
	default:
		return 0, false
	}
}
