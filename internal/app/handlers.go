package app

import (
	"cameo/internal/config"
	"cameo/internal/window"
)

const (
	keyCycleFilter  = 'f'
	keyToggleMirror = 'm'
)

// OnKeypress handles a key:
//
//	space  take a snapshot
//	tab    start or stop recording
//	escape quit
//	f      next filter pipeline
//	m      toggle preview mirroring
func (c *Cameo) OnKeypress(key int) {
	switch key {
	case window.KeySpace:
		c.snapshot()
	case window.KeyTab:
		c.toggleRecording()
	case window.KeyEscape:
		c.log.Info("Cameo", "quit requested", nil)
		if err := c.window.Destroy(); err != nil {
			c.log.Error("Cameo", err, nil)
		}
	case keyCycleFilter:
		c.cycleFilter()
	case keyToggleMirror:
		c.capture.SetMirrorPreview(!c.capture.MirrorPreview())
		c.log.Info("Cameo", "preview mirroring toggled", map[string]interface{}{
			"mirror": c.capture.MirrorPreview(),
		})
	default:
		c.log.Debug("Cameo", "unbound key", map[string]interface{}{"key": key})
	}
}

func (c *Cameo) snapshot() {
	path := config.Expand(c.cfg.Output.Snapshot, c.session)
	c.capture.WriteImage(path)
	c.log.Debug("Cameo", "snapshot requested", map[string]interface{}{"path": path})
}

func (c *Cameo) toggleRecording() {
	if !c.capture.IsWritingVideo() {
		c.capture.StartWritingVideo(config.Expand(c.cfg.Output.Video, c.session), c.cfg.Output.Codec)
		return
	}
	if err := c.capture.StopWritingVideo(); err != nil {
		c.log.Error("Cameo", err, nil)
	}
}

func (c *Cameo) cycleFilter() {
	c.active = (c.active + 1) % len(c.pipelines)
	c.timings.Reset("")
	c.log.Info("Cameo", "filter pipeline selected", map[string]interface{}{
		"pipeline": c.Pipeline().Name(),
	})
}
