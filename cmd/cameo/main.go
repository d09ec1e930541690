package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"cameo/internal/app"
	"cameo/internal/capture"
	"cameo/internal/config"
	"cameo/internal/filters"
	"cameo/internal/logger"
	"cameo/internal/shutdown"
	"cameo/internal/window"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/google/uuid"
)

const (
	AppName    = "cameo"
	AppID      = "com.imageprocessing.cameo"
	AppVersion = "1.0.0"
)

type flags struct {
	configPath  string
	device      int
	source      string
	backend     string
	listFilters bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	flag.IntVar(&f.device, "device", -1, "camera device index (overrides config)")
	flag.StringVar(&f.source, "source", "", "video file or stream URL (overrides device)")
	flag.StringVar(&f.backend, "backend", "", "window backend: highgui or fyne")
	flag.BoolVar(&f.listFilters, "list-filters", false, "print the available filter names and exit")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	if f.listFilters {
		fmt.Println(strings.Join(filters.Names(), "\n"))
		return
	}

	cfg, err := loadConfig(f)
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}
	session := uuid.NewString()
	appLogger := logger.New(level, cfg.Log.JSON).With("session", session)

	appLogger.Info("Main", "application starting", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"backend":    cfg.Window.Backend,
		"log_level":  level.String(),
	})

	if err := run(cfg, appLogger, session); err != nil {
		appLogger.Error("Main", err, nil)
		os.Exit(1)
	}
	appLogger.Info("Main", "application terminated", nil)
}

// loadConfig layers flags over the config file and environment.
func loadConfig(f flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	if f.device >= 0 {
		cfg.Capture.Device = f.device
		cfg.Capture.Source = ""
	}
	if f.source != "" {
		cfg.Capture.Source = f.source
	}
	if f.backend != "" {
		cfg.Window.Backend = f.backend
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cfg *config.Config, appLogger *logger.ZerologAdapter, session string) error {
	shutdowns := shutdown.NewManager(appLogger)
	shutdowns.Listen()

	return withShutdown(shutdowns, func() error {
		return runBackend(shutdowns, cfg, appLogger, session)
	})
}

// withShutdown runs fn and then closes every registered component. Close
// failures, such as an unflushed recording, are joined to fn's error.
func withShutdown(shutdowns *shutdown.Manager, fn func() error) error {
	err := fn()
	if closeErr := shutdowns.Shutdown(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("shutdown: %w", closeErr))
	}
	return err
}

func runBackend(shutdowns *shutdown.Manager, cfg *config.Config, appLogger *logger.ZerologAdapter, session string) error {
	source, err := capture.OpenVideoSource(cfg.Capture.Device, cfg.Capture.Source)
	if err != nil {
		return err
	}
	shutdowns.Register("source", source)

	switch cfg.Window.Backend {
	case config.BackendFyne:
		return runFyne(shutdowns, cfg, appLogger, session, source)
	default:
		win := window.NewHighGUI(cfg.Window.Name, appLogger)
		cameo, err := app.New(cfg, appLogger, session, win, source, capture.Options{})
		if err != nil {
			return err
		}
		shutdowns.Register("cameo", cameo)
		shutdowns.Register("window", closerFunc(win.Destroy))
		return cameo.Run(shutdowns.Context())
	}
}

// runFyne runs the capture loop off the main goroutine, which fyne needs for
// its event loop. The app quits when the loop ends.
func runFyne(shutdowns *shutdown.Manager, cfg *config.Config, appLogger logger.Logger, session string, source capture.Source) error {
	fyneApp := fyneapp.NewWithID(AppID)
	fyneApp.SetMetadata(&fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})

	win := window.NewFyne(fyneApp, cfg.Window.Name)
	cameo, err := app.New(cfg, appLogger, session, win, source, capture.Options{})
	if err != nil {
		return err
	}
	shutdowns.Register("cameo", cameo)

	ctx, cancel := context.WithCancel(shutdowns.Context())
	defer cancel()

	// The result is sent before quitting so a Quit that races with the user
	// closing the window cannot lose it.
	result := make(chan error, 1)
	go func() {
		result <- cameo.Run(ctx)
		fyne.Do(fyneApp.Quit)
	}()

	fyneApp.Run()
	cancel()
	return <-result
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
