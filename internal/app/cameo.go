package app

import (
	"context"
	"errors"
	"fmt"

	"cameo/internal/capture"
	"cameo/internal/config"
	"cameo/internal/filters"
	"cameo/internal/logger"
	"cameo/internal/timing"
	"cameo/internal/window"
)

// timingReportEvery is how many frames pass between filter timing logs.
const timingReportEvery = 300

// Cameo runs the capture loop: enter a frame, filter it in place, exit it
// to the window and recorders, then poll the keyboard.
type Cameo struct {
	cfg     *config.Config
	log     logger.Logger
	session string

	window  window.Window
	capture *capture.Manager

	pipelines []*filters.Chain
	active    int
	timings   *timing.Tracker

	starved   bool
	deferring bool
}

// New wires the window as the capture display and key source. opts.Display
// is replaced by win.
func New(cfg *config.Config, log logger.Logger, session string, win window.Window, source capture.Source, opts capture.Options) (*Cameo, error) {
	pipelines, err := buildPipelines(cfg.Filters)
	if err != nil {
		return nil, err
	}

	opts.Display = win
	opts.MirrorPreview = cfg.Capture.MirrorPreview
	if opts.Logger == nil {
		opts.Logger = log
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.Capture.PoolSize
	}

	mgr := capture.NewManager(source, opts)
	mgr.SetChannel(cfg.Capture.Channel)

	c := &Cameo{
		cfg:       cfg,
		log:       log,
		session:   session,
		window:    win,
		capture:   mgr,
		pipelines: pipelines,
		timings:   timing.NewTracker(timing.DefaultWindow),
	}
	win.SetKeyHandler(c.OnKeypress)

	log.Info("Cameo", "initialized", map[string]interface{}{
		"pipeline": c.Pipeline().Name(),
		"channel":  cfg.Capture.Channel,
		"mirror":   cfg.Capture.MirrorPreview,
	})
	return c, nil
}

func buildPipelines(cfg config.FiltersConfig) ([]*filters.Chain, error) {
	opts := filters.Options{BlurKsize: cfg.BlurKsize, EdgeKsize: cfg.EdgeKsize}

	pipelines := make([]*filters.Chain, 0, len(cfg.Pipelines))
	for _, spec := range cfg.Pipelines {
		chain, err := filters.Parse(spec, opts)
		if err != nil {
			return nil, fmt.Errorf("build filters: %w", err)
		}
		pipelines = append(pipelines, chain)
	}
	if len(pipelines) == 0 {
		pipelines = append(pipelines, filters.NewChain())
	}
	return pipelines, nil
}

// Pipeline is the filter chain applied to every frame.
func (c *Cameo) Pipeline() *filters.Chain {
	return c.pipelines[c.active]
}

func (c *Cameo) Capture() *capture.Manager {
	return c.capture
}

// Timings holds the filter durations keyed by pipeline name.
func (c *Cameo) Timings() *timing.Tracker {
	return c.timings
}

// Run loops until the window is destroyed or ctx is cancelled. Only a
// lifecycle misuse ends it with an error.
func (c *Cameo) Run(ctx context.Context) error {
	if err := c.window.Create(); err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	c.log.Info("Cameo", "window created", nil)

	for c.window.IsCreated() {
		if err := ctx.Err(); err != nil {
			c.log.Info("Cameo", "context cancelled, closing window", nil)
			if err := c.window.Destroy(); err != nil {
				c.log.Error("Cameo", err, nil)
			}
			break
		}

		if err := c.Step(); err != nil {
			return err
		}
		c.window.ProcessEvents()
	}

	c.log.Info("Cameo", "loop finished", map[string]interface{}{
		"frames": c.capture.FramesElapsed(),
	})
	return nil
}

// Step runs one enter/filter/exit cycle.
func (c *Cameo) Step() error {
	err := c.capture.EnterFrame()
	if errors.Is(err, capture.ErrAlreadyEntered) {
		return err
	}

	pipeline := c.Pipeline()
	if frame, ok := c.capture.Frame(); ok && pipeline.StepCount() > 0 {
		span := c.timings.Start(pipeline.Name())
		err := pipeline.Apply(*frame, frame)
		span.End()
		if err != nil {
			c.log.Error("Cameo", err, map[string]interface{}{
				"pipeline": pipeline.Name(),
			})
		}
	}

	report, err := c.capture.ExitFrame()
	switch {
	case errors.Is(err, capture.ErrNoFrame):
		if !c.starved {
			c.starved = true
			c.log.Warning("Cameo", "capture source produced no frame", nil)
		}
		return nil
	case err != nil:
		c.log.Error("Cameo", err, map[string]interface{}{"frame": report.Frame})
	}

	if c.starved {
		c.starved = false
		c.log.Info("Cameo", "capture source recovered", map[string]interface{}{"frame": report.Frame})
	}
	if report.Frame%timingReportEvery == 0 {
		c.logTimings()
	}
	deferred := report.Video == capture.VideoDeferred
	if deferred && !c.deferring {
		c.log.Debug("Cameo", "recording waits for a stable frame rate estimate", nil)
	}
	c.deferring = deferred
	return nil
}

func (c *Cameo) logTimings() {
	fields := map[string]interface{}{}
	if fps, ok := c.capture.FPSEstimate(); ok {
		fields["fps"] = fps
	}
	for _, op := range c.timings.Operations() {
		fields[op+"_ms"] = float64(c.timings.Average(op).Microseconds()) / 1000
		fields[op+"_frames"] = c.timings.Count(op)
	}
	c.log.Debug("Cameo", "filter timing", fields)
}

// Close releases the capture manager's buffers and any open recording.
func (c *Cameo) Close() error {
	return c.capture.Close()
}
